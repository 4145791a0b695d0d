package bot

import (
	"fmt"
	"strconv"
	"strings"

	"fitplan/internal/models"
)

// Profile wizard states
const (
	StateGender   = "gender"
	StateAge      = "age"
	StateHeight   = "height"
	StateWeight   = "weight"
	StateActivity = "activity"
	StateDiet     = "diet"
	StateConfirm  = "confirm"
)

const (
	confirmYes = "Yes, save it"
	confirmNo  = "No, start over"
)

var (
	genderOptions   = [][]string{{"Male", "Female"}}
	activityOptions = [][]string{{"sedentary", "light", "moderate"}, {"active", "very_active"}}
	dietOptions     = [][]string{{"mixed", "non-veg"}, {"vegetarian", "vegan"}}
	confirmOptions  = [][]string{{confirmYes, confirmNo}}
)

// userState is one user's progress through the profile wizard.
type userState struct {
	CurrentState string
	Draft        models.Profile
}

// stepResult is what the bot should do after a wizard answer. When done is
// set, profile holds the completed draft and reply is unused.
type stepResult struct {
	reply   string
	options [][]string
	done    bool
	profile *models.Profile
}

// advance applies one answer to the wizard. Invalid answers leave the state
// unchanged and re-ask the question.
func (s *userState) advance(text string) stepResult {
	text = strings.TrimSpace(text)

	switch s.CurrentState {
	case StateGender:
		gender := strings.ToLower(text)
		if gender != "male" && gender != "female" {
			return stepResult{reply: "Please choose your gender with the buttons below.", options: genderOptions}
		}
		s.Draft.Gender = models.String(gender)
		s.CurrentState = StateAge
		return stepResult{reply: "Thanks! How old are you? (e.g. 30)"}

	case StateAge:
		age, err := strconv.Atoi(text)
		if err != nil || age < 10 || age > 120 {
			return stepResult{reply: "Please enter a valid age in years (e.g. 30):"}
		}
		s.Draft.Age = models.Int(age)
		s.CurrentState = StateHeight
		return stepResult{reply: "Got it. Your height in centimetres? (e.g. 175)"}

	case StateHeight:
		height, err := parseMeasure(text)
		if err != nil || height < 50 || height > 250 {
			return stepResult{reply: "Please enter a valid height in centimetres (e.g. 175):"}
		}
		s.Draft.HeightCM = models.Float(height)
		s.CurrentState = StateWeight
		return stepResult{reply: "And your weight in kilograms? (e.g. 70)"}

	case StateWeight:
		weight, err := parseMeasure(text)
		if err != nil || weight < 30 || weight > 300 {
			return stepResult{reply: "Please enter a valid weight in kilograms (e.g. 70):"}
		}
		s.Draft.WeightKG = models.Float(weight)
		s.CurrentState = StateActivity
		return stepResult{reply: "How active are you?", options: activityOptions}

	case StateActivity:
		level := strings.ToLower(strings.ReplaceAll(text, " ", "_"))
		if !isOption(activityOptions, level) {
			return stepResult{reply: "Please choose an activity level with the buttons below.", options: activityOptions}
		}
		s.Draft.ActivityLevel = models.String(level)
		s.CurrentState = StateDiet
		return stepResult{reply: "Any dietary preference?", options: dietOptions}

	case StateDiet:
		pref := strings.ToLower(text)
		if !isOption(dietOptions, pref) {
			return stepResult{reply: "Please choose a dietary preference with the buttons below.", options: dietOptions}
		}
		s.Draft.DietaryPref = models.String(pref)
		s.CurrentState = StateConfirm
		return stepResult{
			reply:   "Let's check your details:\n\n" + formatProfile(&s.Draft) + "\n\nIs everything correct?",
			options: confirmOptions,
		}

	case StateConfirm:
		switch text {
		case confirmYes:
			return stepResult{done: true, profile: s.Draft.Clone()}
		case confirmNo:
			*s = userState{CurrentState: StateGender}
			return stepResult{reply: "Let's start again. Your gender:", options: genderOptions}
		default:
			return stepResult{reply: "Please confirm with the buttons below.", options: confirmOptions}
		}
	}

	*s = userState{CurrentState: StateGender}
	return stepResult{reply: "Something went wrong, let's start again. Your gender:", options: genderOptions}
}

// parseMeasure accepts a decimal comma as well as a point.
func parseMeasure(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return v, nil
}

func isOption(options [][]string, value string) bool {
	for _, row := range options {
		for _, o := range row {
			if o == value {
				return true
			}
		}
	}
	return false
}
