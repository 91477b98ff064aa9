package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/radiance/internal/assessment"
	"github.com/pavelanni/radiance/internal/export"
	"github.com/pavelanni/radiance/internal/handler"
	appI18n "github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
	"github.com/pavelanni/radiance/internal/store"
	"github.com/pavelanni/radiance/internal/tutor"
)

func main() {
	// Values from .env are visible to viper's AutomaticEnv; real environment
	// variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "radiance",
		Short: "JEE/NEET diagnostic quiz and study tutor",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), banksCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "radiance.db", "SQLite database path")
	f.String("kv-driver", "sqlite", "Session store backend (sqlite, redis, memory)")
	f.String("redis-url", "redis://localhost:6379/0", "Redis URL for the redis session store")
	f.String("redis-prefix", "radiance:", "Key prefix for the redis session store")
	f.Duration("redis-ttl", 0, "Expiry for redis keys (0 = never)")
	f.StringP("lang", "l", "en", "Fallback language (en, hi)")
	f.Duration("quiz-duration", assessment.DefaultDuration, "Time allowed for the diagnostic quiz")
	f.Int("max-chat-history", tutor.DefaultMaxHistory, "Tutor messages kept per student (0 = unbounded)")
	f.Duration("reply-min-delay", tutor.DefaultMinDelay, "Minimum simulated tutor latency")
	f.Duration("reply-max-delay", tutor.DefaultMaxDelay, "Maximum simulated tutor latency (0 = answer immediately)")
	f.StringSlice("allowed-origins", nil, "Browser origins allowed by CORS (repeatable)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.Bool("seed-demo", true, "Create the demo accounts when the database is empty")
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export student results as JSON or XLSX",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "radiance.db", "SQLite database path")
	f.String("kv-driver", "sqlite", "Session store backend (sqlite, redis)")
	f.String("redis-url", "redis://localhost:6379/0", "Redis URL for the redis session store")
	f.String("redis-prefix", "radiance:", "Key prefix for the redis session store")
	f.String("track", "", "Only export students of this track (JEE, NEET)")
	f.StringP("format", "f", "json", "Output format (json, xlsx)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func banksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List the diagnostic question banks",
		RunE:  runBanks,
	}
	cmd.Flags().String("track", "", "Only list this track (JEE, NEET)")
	cmd.Flags().Bool("answers", false, "Show the correct option for each question")
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("RADIANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("radiance")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/radiance")
	v.AddConfigPath("/etc/radiance")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openStore opens the database with the configured session store backend.
func openStore(ctx context.Context, v *viper.Viper) (*store.Store, error) {
	var opts []store.Option
	switch driver := strings.ToLower(v.GetString("kv-driver")); driver {
	case "", "sqlite":
	case "memory":
		opts = append(opts, store.WithKV(store.NewMemoryKV()))
	case "redis":
		kv, err := store.NewRedisKV(ctx, v.GetString("redis-url"), v.GetString("redis-prefix"), v.GetDuration("redis-ttl"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithKV(kv))
	default:
		return nil, fmt.Errorf("unknown kv driver %q", driver)
	}
	return store.New(v.GetString("db"), opts...)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, v)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if v.GetBool("seed-demo") {
		if err := seedDemoUsers(ctx, db); err != nil {
			return fmt.Errorf("seed demo users: %w", err)
		}
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	cfg := model.AppConfig{
		QuizDuration:   v.GetDuration("quiz-duration"),
		TickInterval:   assessment.DefaultTickInterval,
		SecureCookies:  v.GetBool("secure-cookies"),
		MaxChatHistory: v.GetInt("max-chat-history"),
		MinReplyDelay:  v.GetDuration("reply-min-delay"),
		MaxReplyDelay:  v.GetDuration("reply-max-delay"),
		AllowedOrigins: v.GetStringSlice("allowed-origins"),
	}

	h := handler.New(ctx, db, cfg)
	defer h.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept-Language", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	go cleanupSessions(ctx, db, time.Hour)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("starting server",
		"addr", addr,
		"kv_driver", v.GetString("kv-driver"),
		"lang", lang,
		"quiz_duration", cfg.QuizDuration,
		"max_chat_history", cfg.MaxChatHistory,
		"allowed_origins", cfg.AllowedOrigins,
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cleanupSessions removes expired auth sessions every interval until ctx is done.
func cleanupSessions(ctx context.Context, db *store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.CleanupExpiredSessions(ctx)
			if err != nil {
				slog.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("removed expired sessions", "count", n)
			}
		}
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	var track model.Track
	if s := v.GetString("track"); s != "" {
		t, err := assessment.ParseTrack(strings.ToUpper(s))
		if err != nil {
			return err
		}
		track = t
	}

	db, err := openStore(ctx, v)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.StudentResults(ctx, track)
	if err != nil {
		return fmt.Errorf("export results: %w", err)
	}
	exp := export.Build(track, results, time.Now())

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format := strings.ToLower(v.GetString("format")); format {
	case "json":
		err = export.WriteJSON(w, exp)
	case "xlsx":
		err = export.WriteXLSX(w, exp)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	slog.Info("exported results", "students", len(results), "track", track, "output", outPath)
	return nil
}

func runBanks(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	tracks := model.Tracks
	if s := v.GetString("track"); s != "" {
		t, err := assessment.ParseTrack(strings.ToUpper(s))
		if err != nil {
			return err
		}
		tracks = []model.Track{t}
	}

	out := cmd.OutOrStdout()
	for _, track := range tracks {
		bank, err := assessment.SelectQuestionBank(track)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%d questions)\n", track, len(bank))
		for i, q := range bank {
			fmt.Fprintf(out, "  %2d. [%s / %s] %s\n", i+1, q.Subject, q.Topic, q.Prompt)
			if v.GetBool("answers") {
				fmt.Fprintf(out, "      answer: %s\n", q.CorrectOption)
			}
		}
	}
	return nil
}
