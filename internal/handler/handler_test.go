package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/radiance/internal/assessment"
	appI18n "github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
	"github.com/pavelanni/radiance/internal/store"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const testPassword = "password"

type testEnv struct {
	t     *testing.T
	store *store.Store
	srv   *httptest.Server
}

func newTestEnv(t *testing.T, cfg model.AppConfig) *testEnv {
	t.Helper()
	s, err := store.New(":memory:", store.WithKV(store.NewMemoryKV()))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := New(ctx, s, cfg)

	r := chi.NewRouter()
	r.Use(appI18n.Middleware("en"))
	h.Routes(r)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		h.Close()
		cancel()
		s.Close()
	})
	return &testEnv{t: t, store: s, srv: srv}
}

func (e *testEnv) seedUser(name, email string, role model.UserRole, track model.Track) int64 {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		e.t.Fatalf("hash: %v", err)
	}
	id, err := e.store.CreateUser(context.Background(), model.User{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		Track:          track,
		IsFirstAttempt: true,
	})
	if err != nil {
		e.t.Fatalf("CreateUser: %v", err)
	}
	return id
}

type client struct {
	env  *testEnv
	http *http.Client
}

func (e *testEnv) client() *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("cookiejar: %v", err)
	}
	return &client{env: e, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, []byte) {
	c.env.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.env.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.env.srv.URL+path, rd)
	if err != nil {
		c.env.t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.env.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.env.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func (c *client) doJSON(method, path string, body any, wantStatus int, dst any) {
	c.env.t.Helper()
	status, data := c.do(method, path, body)
	if status != wantStatus {
		c.env.t.Fatalf("%s %s: status %d, want %d; body %s", method, path, status, wantStatus, data)
	}
	if dst != nil {
		if err := json.Unmarshal(data, dst); err != nil {
			c.env.t.Fatalf("%s %s: decode: %v; body %s", method, path, err, data)
		}
	}
}

func (c *client) login(email string) model.UserProfile {
	c.env.t.Helper()
	var p model.UserProfile
	c.doJSON(http.MethodPost, "/api/login", map[string]string{"email": email, "password": testPassword}, http.StatusOK, &p)
	return p
}

func noDelayConfig() model.AppConfig {
	return model.AppConfig{
		QuizDuration:   time.Hour,
		TickInterval:   time.Hour,
		MaxChatHistory: 200,
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	var body map[string]string
	env.client().doJSON(http.MethodGet, "/healthz", nil, http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantField  string
	}{
		{"password mismatch", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "secret1",
			"confirm_password": "secret2", "role": "student",
		}, http.StatusUnprocessableEntity, "confirm_password"},
		{"short password", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "abc",
			"confirm_password": "abc", "role": "student",
		}, http.StatusUnprocessableEntity, "password"},
		{"bad email", map[string]string{
			"name": "Asha", "email": "not-an-email", "password": "secret1",
			"confirm_password": "secret1", "role": "student",
		}, http.StatusUnprocessableEntity, "email"},
		{"teacher without track", map[string]string{
			"name": "Dr. Rao", "email": "rao@example.com", "password": "secret1",
			"confirm_password": "secret1", "role": "teacher",
		}, http.StatusUnprocessableEntity, "track"},
		{"unknown role", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "secret1",
			"confirm_password": "secret1", "role": "admin",
		}, http.StatusUnprocessableEntity, "role"},
		{"student without track", map[string]string{
			"name": "Asha", "email": "asha@example.com", "password": "secret1",
			"confirm_password": "secret1", "role": "student",
		}, http.StatusCreated, ""},
		{"duplicate email", map[string]string{
			"name": "Asha Two", "email": "ASHA@example.com", "password": "secret1",
			"confirm_password": "secret1", "role": "student",
		}, http.StatusConflict, ""},
		{"teacher with track", map[string]string{
			"name": "Dr. Rao", "email": "rao@example.com", "password": "secret1",
			"confirm_password": "secret1", "role": "teacher", "track": "NEET",
		}, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := env.client().do(http.MethodPost, "/api/signup", tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status %d, want %d; body %s", status, tt.wantStatus, data)
			}
			if tt.wantField != "" {
				var resp errorResponse
				if err := json.Unmarshal(data, &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if _, ok := resp.Fields[tt.wantField]; !ok {
					t.Errorf("expected error on %q, got %v", tt.wantField, resp.Fields)
				}
			}
		})
	}
}

func TestSignupLogsIn(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	c := env.client()

	var p model.UserProfile
	c.doJSON(http.MethodPost, "/api/signup", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "secret1",
		"confirm_password": "secret1", "role": "student",
	}, http.StatusCreated, &p)
	if !p.IsFirstAttempt || p.Track != "" {
		t.Errorf("unexpected profile %+v", p)
	}

	var me model.UserProfile
	c.doJSON(http.MethodGet, "/api/me", nil, http.StatusOK, &me)
	if me.Email != "asha@example.com" {
		t.Errorf("expected session for new user, got %+v", me)
	}
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("John Doe", "student@example.com", model.UserRoleStudent, model.TrackJEE)
	c := env.client()

	status, _ := c.do(http.MethodGet, "/api/me", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 before login, got %d", status)
	}

	status, _ = c.do(http.MethodPost, "/api/login", map[string]string{"email": "student@example.com", "password": "wrong"})
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", status)
	}
	status, _ = c.do(http.MethodPost, "/api/login", map[string]string{"email": "nobody@example.com", "password": testPassword})
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown email, got %d", status)
	}

	p := c.login("Student@Example.com")
	if p.Name != "John Doe" || p.Track != model.TrackJEE {
		t.Errorf("unexpected profile %+v", p)
	}

	var msg messageResponse
	c.doJSON(http.MethodPost, "/api/logout", nil, http.StatusOK, &msg)
	if msg.Message != "You have been logged out." {
		t.Errorf("unexpected logout message %q", msg.Message)
	}
	status, _ = c.do(http.MethodGet, "/api/me", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}

func TestProfileRebuiltWhenKVFlushed(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("John Doe", "student@example.com", model.UserRoleStudent, model.TrackJEE)
	c := env.client()
	c.login("student@example.com")

	tokens, err := env.store.AuthSessionTokens(context.Background(), 1)
	if err != nil || len(tokens) != 1 {
		t.Fatalf("AuthSessionTokens: %v %v", tokens, err)
	}
	if err := env.store.RemoveSessionProfile(context.Background(), tokens[0]); err != nil {
		t.Fatalf("RemoveSessionProfile: %v", err)
	}

	var me model.UserProfile
	c.doJSON(http.MethodGet, "/api/me", nil, http.StatusOK, &me)
	if me.Name != "John Doe" {
		t.Errorf("expected rebuilt profile, got %+v", me)
	}
}

func TestRoleChecks(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("John Doe", "student@example.com", model.UserRoleStudent, model.TrackJEE)
	env.seedUser("Dr. Smith", "teacher@example.com", model.UserRoleTeacher, model.TrackJEE)

	student := env.client()
	student.login("student@example.com")
	teacher := env.client()
	teacher.login("teacher@example.com")

	tests := []struct {
		name   string
		c      *client
		method string
		path   string
	}{
		{"student teacher dashboard", student, http.MethodGet, "/api/dashboard/teacher"},
		{"student export", student, http.MethodGet, "/api/teacher/export.xlsx"},
		{"teacher quiz", teacher, http.MethodPost, "/api/quiz/start"},
		{"teacher student dashboard", teacher, http.MethodGet, "/api/dashboard/student"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := tt.c.do(tt.method, tt.path, nil)
			if status != http.StatusForbidden {
				t.Errorf("expected 403, got %d", status)
			}
		})
	}
}

func TestQuizRequiresTrack(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("Asha", "asha@example.com", model.UserRoleStudent, "")
	c := env.client()
	c.login("asha@example.com")

	var resp errorResponse
	c.doJSON(http.MethodPost, "/api/quiz/start", nil, http.StatusBadRequest, &resp)
	if !strings.Contains(resp.Error, "select your track") {
		t.Errorf("unexpected error %q", resp.Error)
	}

	status, _ := c.do(http.MethodGet, "/api/quiz", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 without a quiz, got %d", status)
	}

	status, _ = c.do(http.MethodPost, "/api/track", map[string]string{"track": "CAT"})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown track, got %d", status)
	}

	var p model.UserProfile
	c.doJSON(http.MethodPost, "/api/track", map[string]string{"track": "NEET"}, http.StatusOK, &p)
	if p.Track != model.TrackNEET {
		t.Errorf("expected NEET, got %q", p.Track)
	}
	var me model.UserProfile
	c.doJSON(http.MethodGet, "/api/me", nil, http.StatusOK, &me)
	if me.Track != model.TrackNEET {
		t.Errorf("expected cached profile to have NEET, got %q", me.Track)
	}

	c.doJSON(http.MethodPost, "/api/quiz/start", nil, http.StatusCreated, nil)
}

func TestQuizFlow(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("John Doe", "student@example.com", model.UserRoleStudent, model.TrackJEE)
	c := env.client()
	c.login("student@example.com")

	status, _ := c.do(http.MethodGet, "/api/quiz/report", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 before any report, got %d", status)
	}

	status, raw := c.do(http.MethodPost, "/api/quiz/start", nil)
	if status != http.StatusCreated {
		t.Fatalf("start: status %d; body %s", status, raw)
	}
	if bytes.Contains(raw, []byte("correct_option")) {
		t.Error("quiz view must not expose the answer key")
	}
	var quiz quizResponse
	if err := json.Unmarshal(raw, &quiz); err != nil {
		t.Fatalf("decode quiz: %v", err)
	}
	if quiz.Total != 10 || len(quiz.Questions) != 10 || quiz.Summary != "10 questions" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if quiz.Questions[0].Label != "Question 1 of 10" {
		t.Errorf("unexpected label %q", quiz.Questions[0].Label)
	}

	var errResp errorResponse
	c.doJSON(http.MethodPost, "/api/quiz/next", nil, http.StatusUnprocessableEntity, &errResp)
	if errResp.Error != "Please select an answer before continuing." {
		t.Errorf("unexpected error %q", errResp.Error)
	}

	status, _ = c.do(http.MethodPost, "/api/quiz/answer", map[string]any{"question_index": 10, "option": "x"})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for out-of-range index, got %d", status)
	}
	status, _ = c.do(http.MethodPost, "/api/quiz/answer", map[string]any{"option": "x"})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for missing index, got %d", status)
	}

	bank, err := assessment.SelectQuestionBank(model.TrackJEE)
	if err != nil {
		t.Fatalf("SelectQuestionBank: %v", err)
	}
	var outcome assessment.Outcome
	for i, q := range bank {
		c.doJSON(http.MethodPost, "/api/quiz/answer", map[string]any{"question_index": i, "option": q.CorrectOption}, http.StatusOK, nil)
		c.doJSON(http.MethodPost, "/api/quiz/next", nil, http.StatusOK, &outcome)
		if i < len(bank)-1 && (outcome.Completed || outcome.NextIndex != i+1) {
			t.Fatalf("question %d: unexpected outcome %+v", i, outcome)
		}
	}
	if !outcome.Completed || outcome.Report == nil || outcome.Report.ScorePercent != 100 {
		t.Fatalf("expected completed with 100%%, got %+v", outcome)
	}

	status, _ = c.do(http.MethodPost, "/api/quiz/next", nil)
	if status != http.StatusConflict {
		t.Errorf("expected 409 after completion, got %d", status)
	}

	var report model.AssessmentReport
	c.doJSON(http.MethodGet, "/api/quiz/report", nil, http.StatusOK, &report)
	if report.ScorePercent != 100 || report.StudentName != "John Doe" || len(report.StrongTopics) != 10 {
		t.Errorf("unexpected report %+v", report)
	}

	var me model.UserProfile
	c.doJSON(http.MethodGet, "/api/me", nil, http.StatusOK, &me)
	if me.IsFirstAttempt || me.LastQuizScore == nil || *me.LastQuizScore != 100 {
		t.Errorf("expected profile updated after quiz, got %+v", me)
	}

	var dash struct {
		Attempts    int  `json:"attempts"`
		QuizPending bool `json:"quiz_pending"`
		LastScore   *int `json:"last_score"`
	}
	c.doJSON(http.MethodGet, "/api/dashboard/student", nil, http.StatusOK, &dash)
	if dash.Attempts != 1 || dash.QuizPending || dash.LastScore == nil || *dash.LastScore != 100 {
		t.Errorf("unexpected dashboard %+v", dash)
	}
}

func TestQuizPreviousQuestion(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("John Doe", "student@example.com", model.UserRoleStudent, model.TrackJEE)
	c := env.client()
	c.login("student@example.com")

	status, _ := c.do(http.MethodPost, "/api/quiz/prev", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 without a quiz, got %d", status)
	}

	c.doJSON(http.MethodPost, "/api/quiz/start", nil, http.StatusCreated, nil)

	var quiz quizResponse
	c.doJSON(http.MethodPost, "/api/quiz/prev", nil, http.StatusOK, &quiz)
	if quiz.QuestionIndex != 0 {
		t.Errorf("prev on the first question moved to %d", quiz.QuestionIndex)
	}

	c.doJSON(http.MethodPost, "/api/quiz/answer", map[string]any{"question_index": 0, "option": "2"}, http.StatusOK, nil)
	c.doJSON(http.MethodPost, "/api/quiz/next", nil, http.StatusOK, nil)

	c.doJSON(http.MethodPost, "/api/quiz/prev", nil, http.StatusOK, &quiz)
	if quiz.QuestionIndex != 0 || quiz.Answers[0] != "2" {
		t.Fatalf("expected to be back on question 0 with answer kept, got index %d answers %v", quiz.QuestionIndex, quiz.Answers)
	}

	c.doJSON(http.MethodPost, "/api/quiz/answer", map[string]any{"question_index": 0, "option": "3"}, http.StatusOK, nil)
	var outcome assessment.Outcome
	c.doJSON(http.MethodPost, "/api/quiz/next", nil, http.StatusOK, &outcome)
	if outcome.NextIndex != 1 || outcome.Completed {
		t.Errorf("unexpected outcome %+v", outcome)
	}
	c.doJSON(http.MethodGet, "/api/quiz", nil, http.StatusOK, &quiz)
	if quiz.Answers[0] != "3" {
		t.Errorf("expected changed answer, got %q", quiz.Answers[0])
	}

	// Switching track abandons the attempt without writing a report.
	c.doJSON(http.MethodPost, "/api/track", map[string]string{"track": "NEET"}, http.StatusOK, nil)
	status, _ = c.do(http.MethodGet, "/api/quiz", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 after track change, got %d", status)
	}
	status, _ = c.do(http.MethodGet, "/api/quiz/report", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected no report for an abandoned attempt, got %d", status)
	}
}

func TestQuizTimerExpiry(t *testing.T) {
	cfg := noDelayConfig()
	cfg.QuizDuration = 30 * time.Millisecond
	cfg.TickInterval = 10 * time.Millisecond
	env := newTestEnv(t, cfg)
	env.seedUser("Jane Smith", "neet.student@example.com", model.UserRoleStudent, model.TrackNEET)
	c := env.client()
	c.login("neet.student@example.com")

	bank, err := assessment.SelectQuestionBank(model.TrackNEET)
	if err != nil {
		t.Fatalf("SelectQuestionBank: %v", err)
	}
	c.doJSON(http.MethodPost, "/api/quiz/start", nil, http.StatusCreated, nil)
	c.do(http.MethodPost, "/api/quiz/answer", map[string]any{"question_index": 0, "option": bank[0].CorrectOption})

	deadline := time.Now().Add(2 * time.Second)
	for {
		status, data := c.do(http.MethodGet, "/api/quiz/report", nil)
		if status == http.StatusOK {
			var report model.AssessmentReport
			if err := json.Unmarshal(data, &report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if report.TotalQuestions != 10 {
				t.Errorf("expected 10 questions graded, got %d", report.TotalQuestions)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("quiz did not expire")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var quiz quizResponse
	c.doJSON(http.MethodGet, "/api/quiz", nil, http.StatusOK, &quiz)
	if quiz.State != assessment.StateCompleted || quiz.Report == nil {
		t.Errorf("expected completed quiz with report, got state %v", quiz.State)
	}
}

func TestTeacherDashboardAndExport(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	ctx := context.Background()
	rahul := env.seedUser("Rahul Sharma", "rahul@example.com", model.UserRoleStudent, model.TrackJEE)
	env.seedUser("Priya Patel", "priya@example.com", model.UserRoleStudent, model.TrackJEE)
	env.seedUser("Anjali Singh", "anjali@example.com", model.UserRoleStudent, model.TrackNEET)
	env.seedUser("Dr. Smith", "teacher@example.com", model.UserRoleTeacher, model.TrackJEE)

	report, err := assessment.ComputeReport(assessment.ReportInput{
		StudentName: "Rahul Sharma",
		Track:       model.TrackJEE,
		Answers:     make([]string, 10),
		CompletedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ComputeReport: %v", err)
	}
	if err := env.store.SaveReport(ctx, rahul, report); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	c := env.client()
	c.login("teacher@example.com")

	var dash struct {
		Stats struct {
			TotalStudents  int `json:"total_students"`
			ActiveStudents int `json:"active_students"`
		} `json:"stats"`
		NeedsAttention []struct {
			Name string `json:"name"`
		} `json:"needs_attention"`
	}
	c.doJSON(http.MethodGet, "/api/dashboard/teacher", nil, http.StatusOK, &dash)
	if dash.Stats.TotalStudents != 2 || dash.Stats.ActiveStudents != 1 {
		t.Errorf("unexpected stats %+v", dash.Stats)
	}
	if len(dash.NeedsAttention) != 1 || dash.NeedsAttention[0].Name != "Rahul Sharma" {
		t.Errorf("unexpected needs attention %+v", dash.NeedsAttention)
	}

	resp, err := c.http.Get(env.srv.URL + "/api/teacher/export.xlsx")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "radiance-JEE-") {
		t.Errorf("unexpected disposition %q", resp.Header.Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Reports")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected header + 2 students, got %d rows", len(rows))
	}

	var exp model.ReportExport
	c.doJSON(http.MethodGet, "/api/teacher/export.xlsx?format=json", nil, http.StatusOK, &exp)
	if exp.Track != model.TrackJEE || len(exp.Results) != 2 {
		t.Errorf("unexpected JSON export %+v", exp)
	}
}

func TestTutorMessages(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	env.seedUser("Jane Smith", "neet.student@example.com", model.UserRoleStudent, model.TrackNEET)
	env.seedUser("Asha", "asha@example.com", model.UserRoleStudent, "")
	c := env.client()
	c.login("neet.student@example.com")

	var history struct {
		Messages []model.ChatMessage `json:"messages"`
	}
	c.doJSON(http.MethodGet, "/api/tutor/messages", nil, http.StatusOK, &history)
	if history.Messages == nil || len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", history.Messages)
	}

	var sent sendResponse
	c.doJSON(http.MethodPost, "/api/tutor/messages", map[string]string{"content": "Biology tips please"}, http.StatusCreated, &sent)
	if sent.User.Role != model.RoleUser || sent.Assistant.Role != model.RoleAssistant {
		t.Errorf("unexpected roles %q/%q", sent.User.Role, sent.Assistant.Role)
	}
	if !strings.HasPrefix(sent.Assistant.Content, "Biology is crucial for NEET success!") {
		t.Errorf("unexpected reply %q", sent.Assistant.Content)
	}

	status, _ := c.do(http.MethodPost, "/api/tutor/messages", map[string]string{"content": "  "})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for blank message, got %d", status)
	}

	c.doJSON(http.MethodGet, "/api/tutor/messages", nil, http.StatusOK, &history)
	if len(history.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history.Messages))
	}

	var msg messageResponse
	c.doJSON(http.MethodDelete, "/api/tutor/messages", nil, http.StatusOK, &msg)
	if msg.Message != "Your chat history has been cleared." {
		t.Errorf("unexpected message %q", msg.Message)
	}
	c.doJSON(http.MethodGet, "/api/tutor/messages", nil, http.StatusOK, &history)
	if len(history.Messages) != 0 {
		t.Errorf("expected empty history after clear, got %d", len(history.Messages))
	}

	noTrack := env.client()
	noTrack.login("asha@example.com")
	status, _ = noTrack.do(http.MethodPost, "/api/tutor/messages", map[string]string{"content": "hello"})
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 without a track, got %d", status)
	}
}

func TestLocalizedErrors(t *testing.T) {
	env := newTestEnv(t, noDelayConfig())
	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/me", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Accept-Language", "hi-IN")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/me: %v", err)
	}
	defer resp.Body.Close()

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "जारी रखने के लिए कृपया लॉग इन करें।" {
		t.Errorf("unexpected error %q", body.Error)
	}
}
