package assessment

import (
	"slices"

	"github.com/pavelanni/radiance/internal/model"
)

// banks holds the diagnostic question set for every supported track.
var banks = map[model.Track][]model.Question{
	model.TrackJEE: {
		{
			Prompt:        "If the roots of the equation x² - 3x + 2 = 0 are α and β, then α + β equals:",
			Options:       []string{"2", "3", "-3", "1"},
			CorrectOption: "3",
			Subject:       "Mathematics",
			Topic:         "Quadratic Equations",
		},
		{
			Prompt:        "The SI unit of electric field intensity is:",
			Options:       []string{"N/C", "C/N", "J/C", "V/m"},
			CorrectOption: "N/C",
			Subject:       "Physics",
			Topic:         "Electric Field",
		},
		{
			Prompt: "Which of the following is an example of nucleophilic substitution reaction?",
			Options: []string{
				"CH₃Cl + OH⁻ → CH₃OH + Cl⁻",
				"C₂H₄ + Br₂ → C₂H₄Br₂",
				"CH₄ + Cl₂ → CH₃Cl + HCl",
				"C₆H₆ + NO₂⁺ → C₆H₅NO₂ + H⁺",
			},
			CorrectOption: "CH₃Cl + OH⁻ → CH₃OH + Cl⁻",
			Subject:       "Chemistry",
			Topic:         "Organic Chemistry",
		},
		{
			Prompt:        "The derivative of sin(x²) with respect to x is:",
			Options:       []string{"cos(x²)", "2x cos(x²)", "2x sin(x²)", "cos(2x)"},
			CorrectOption: "2x cos(x²)",
			Subject:       "Mathematics",
			Topic:         "Differentiation",
		},
		{
			Prompt:        "A body is thrown vertically upward with initial velocity 20 m/s. The maximum height reached is: (g = 10 m/s²)",
			Options:       []string{"10 m", "20 m", "40 m", "80 m"},
			CorrectOption: "20 m",
			Subject:       "Physics",
			Topic:         "Kinematics",
		},
		{
			Prompt:        "The hybridization of carbon in diamond is:",
			Options:       []string{"sp", "sp²", "sp³", "sp³d"},
			CorrectOption: "sp³",
			Subject:       "Chemistry",
			Topic:         "Chemical Bonding",
		},
		{
			Prompt:        "The sum of first n natural numbers is:",
			Options:       []string{"n(n+1)", "n(n+1)/2", "n(n-1)/2", "n²"},
			CorrectOption: "n(n+1)/2",
			Subject:       "Mathematics",
			Topic:         "Sequences and Series",
		},
		{
			Prompt:        "Ohm's law states that:",
			Options:       []string{"V = IR", "V = I/R", "I = VR", "R = VI"},
			CorrectOption: "V = IR",
			Subject:       "Physics",
			Topic:         "Current Electricity",
		},
		{
			Prompt:        "The IUPAC name of CH₃-CH(CH₃)-CH₂OH is:",
			Options:       []string{"2-methylpropanol", "2-methyl-1-propanol", "isobutanol", "Both B and C"},
			CorrectOption: "Both B and C",
			Subject:       "Chemistry",
			Topic:         "Organic Nomenclature",
		},
		{
			Prompt:        "If log₂ 8 = x, then x equals:",
			Options:       []string{"2", "3", "8", "16"},
			CorrectOption: "3",
			Subject:       "Mathematics",
			Topic:         "Logarithms",
		},
	},
	model.TrackNEET: {
		{
			Prompt:        "The powerhouse of the cell is:",
			Options:       []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi apparatus"},
			CorrectOption: "Mitochondria",
			Subject:       "Biology",
			Topic:         "Cell Biology",
		},
		{
			Prompt:        "The normal human body temperature is:",
			Options:       []string{"96.8°F", "97.8°F", "98.6°F", "99.6°F"},
			CorrectOption: "98.6°F",
			Subject:       "Biology",
			Topic:         "Human Physiology",
		},
		{
			Prompt:        "Which gas is released during photosynthesis?",
			Options:       []string{"Carbon dioxide", "Oxygen", "Nitrogen", "Hydrogen"},
			CorrectOption: "Oxygen",
			Subject:       "Biology",
			Topic:         "Plant Physiology",
		},
		{
			Prompt:        "The atomic number of carbon is:",
			Options:       []string{"4", "6", "8", "12"},
			CorrectOption: "6",
			Subject:       "Chemistry",
			Topic:         "Atomic Structure",
		},
		{
			Prompt:        "The SI unit of force is:",
			Options:       []string{"Joule", "Newton", "Watt", "Pascal"},
			CorrectOption: "Newton",
			Subject:       "Physics",
			Topic:         "Mechanics",
		},
		{
			Prompt:        "DNA replication occurs during which phase of cell cycle?",
			Options:       []string{"G1 phase", "S phase", "G2 phase", "M phase"},
			CorrectOption: "S phase",
			Subject:       "Biology",
			Topic:         "Cell Division",
		},
		{
			Prompt:        "The pH of pure water at 25°C is:",
			Options:       []string{"6", "7", "8", "14"},
			CorrectOption: "7",
			Subject:       "Chemistry",
			Topic:         "Acids and Bases",
		},
		{
			Prompt:        "The largest bone in human body is:",
			Options:       []string{"Humerus", "Tibia", "Femur", "Fibula"},
			CorrectOption: "Femur",
			Subject:       "Biology",
			Topic:         "Human Anatomy",
		},
		{
			Prompt:        "Which organelle is known as the 'suicidal bag' of the cell?",
			Options:       []string{"Lysosome", "Ribosome", "Mitochondria", "Nucleus"},
			CorrectOption: "Lysosome",
			Subject:       "Biology",
			Topic:         "Cell Biology",
		},
		{
			Prompt:        "The acceleration due to gravity on Earth is approximately:",
			Options:       []string{"9.8 m/s²", "10 m/s²", "8.9 m/s²", "11 m/s²"},
			CorrectOption: "9.8 m/s²",
			Subject:       "Physics",
			Topic:         "Gravitation",
		},
	},
}

// SelectQuestionBank returns a copy of the question set for a track.
func SelectQuestionBank(track model.Track) ([]model.Question, error) {
	bank, ok := banks[track]
	if !ok {
		return nil, &UnknownTrackError{Track: string(track)}
	}
	out := make([]model.Question, len(bank))
	for i, q := range bank {
		q.Options = slices.Clone(q.Options)
		out[i] = q
	}
	return out, nil
}

// ParseTrack converts user input into a supported track.
func ParseTrack(s string) (model.Track, error) {
	t := model.Track(s)
	if !t.Valid() {
		return "", &UnknownTrackError{Track: s}
	}
	return t, nil
}
