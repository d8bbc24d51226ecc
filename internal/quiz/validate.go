package quiz

import (
	"errors"
	"regexp"
)

// The exact grammar the API accepts for datetime_iso.
var isoDatetime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?Z?$`)

func ValidISODatetime(s string) bool { return isoDatetime.MatchString(s) }

func ValidCorrectOption(o string) bool {
	return o == "A" || o == "B" || o == "C" || o == "D"
}

// ValidateQuestion checks a question payload before it reaches a store.
// Stores themselves do not re-validate.
func ValidateQuestion(q Question) error {
	if q.ModuleID == "" || q.Type == "" || q.QuestionText == "" {
		return errors.New("Module ID, type, and question text are required")
	}
	if !ValidType(q.Type) {
		return errors.New(`Type must be "revision" or "mock"`)
	}
	if q.Type == TypeMock {
		if q.OptionA == nil || q.OptionB == nil || q.OptionC == nil || q.OptionD == nil || q.CorrectOption == nil {
			return errors.New("Mock questions require all options (A-D) and correct option")
		}
		if !ValidCorrectOption(*q.CorrectOption) {
			return errors.New("Correct option must be A, B, C, or D")
		}
	}
	return nil
}

// NormalizeQuestion applies storage invariants: revision questions persist
// null options and correct_option no matter what was supplied, and
// difficulty defaults to medium.
func NormalizeQuestion(q Question) Question {
	if q.Type == TypeRevision {
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption = nil, nil, nil, nil, nil
	}
	if q.Difficulty == "" {
		q.Difficulty = "medium"
	}
	return q
}
