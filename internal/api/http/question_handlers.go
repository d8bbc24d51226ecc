package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

type questionPayload struct {
	ModuleID      string  `json:"module_id"`
	Type          string  `json:"type"`
	QuestionText  string  `json:"question_text"`
	OptionA       *string `json:"option_a"`
	OptionB       *string `json:"option_b"`
	OptionC       *string `json:"option_c"`
	OptionD       *string `json:"option_d"`
	CorrectOption *string `json:"correct_option"`
	AnswerText    *string `json:"answer_text"`
	Difficulty    string  `json:"difficulty"`
}

func (p questionPayload) question() quiz.Question {
	return quiz.Question{
		ModuleID:      quiz.RecordID(p.ModuleID),
		Type:          p.Type,
		QuestionText:  p.QuestionText,
		OptionA:       blankToNil(p.OptionA),
		OptionB:       blankToNil(p.OptionB),
		OptionC:       blankToNil(p.OptionC),
		OptionD:       blankToNil(p.OptionD),
		CorrectOption: blankToNil(p.CorrectOption),
		AnswerText:    blankToNil(p.AnswerText),
		Difficulty:    p.Difficulty,
	}
}

func blankToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

// GET /api/questions/{moduleID}/{qtype}
func ListQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := quiz.RecordID(chi.URLParam(r, "moduleID"))
		qtype := chi.URLParam(r, "qtype")
		if !quiz.ValidType(qtype) {
			writeError(w, http.StatusBadRequest, `Invalid question type. Must be "revision" or "mock"`)
			return
		}
		questions, err := store.ListQuestions(r.Context(), moduleID, qtype)
		if err != nil {
			logger.Log.Error("list questions", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch questions")
			return
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

// GET /api/questions/{questionID}
func GetQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := quiz.RecordID(chi.URLParam(r, "questionID"))
		q, err := store.GetQuestion(r.Context(), id)
		if errors.Is(err, quiz.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		if err != nil {
			logger.Log.Error("get question", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch question")
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /api/questions
func CreateQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p questionPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		q := p.question()
		if err := quiz.ValidateQuestion(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := store.CreateQuestion(r.Context(), quiz.NormalizeQuestion(q))
		if errors.Is(err, quiz.ErrInvalidID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			logger.Log.Error("create question", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to create question")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}
