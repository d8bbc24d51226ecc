package quiz

// RecordID is the string form of a backend identifier (uuid text for SQL
// backends, ObjectID hex for Mongo). Conversion to a native identifier
// happens only inside store implementations, never in business logic.
type RecordID string

func (id RecordID) String() string { return string(id) }

const (
	TypeRevision = "revision"
	TypeMock     = "mock"
)

// ValidType reports whether t is one of the two question/attempt types.
func ValidType(t string) bool { return t == TypeRevision || t == TypeMock }

type Module struct {
	ID   RecordID `json:"id"`
	Name string   `json:"name"`
	Slug string   `json:"slug"`
}

type User struct {
	ID       RecordID `json:"id"`
	Username string   `json:"username"`
}

// Question is a quiz/flashcard item. Mock questions carry all four options
// and a correct option; revision questions carry nulls there. The list
// projection (ListQuestions) leaves ModuleID and Type empty so they are
// omitted from the JSON the client sees.
type Question struct {
	ID            RecordID `json:"id"`
	ModuleID      RecordID `json:"module_id,omitempty"`
	Type          string   `json:"type,omitempty"`
	QuestionText  string   `json:"question_text"`
	OptionA       *string  `json:"option_a"`
	OptionB       *string  `json:"option_b"`
	OptionC       *string  `json:"option_c"`
	OptionD       *string  `json:"option_d"`
	CorrectOption *string  `json:"correct_option"`
	AnswerText    *string  `json:"answer_text"`
	Difficulty    string   `json:"difficulty"`
}

// Attempt is one completed revision or mock session. Details holds an opaque
// JSON document serialized to a string in both backends.
type Attempt struct {
	ID               RecordID `json:"id"`
	Username         string   `json:"username"`
	ModuleID         RecordID `json:"module_id"`
	Type             string   `json:"type"`
	DatetimeISO      string   `json:"datetime_iso"`
	Score            *float64 `json:"score"`
	TimeTakenSeconds *int     `json:"time_taken_seconds"`
	Details          string   `json:"details"`
}
