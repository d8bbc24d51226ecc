package quiz

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ErrBadCSV wraps CSV syntax errors so callers can distinguish a malformed
// upload from a backend failure.
var ErrBadCSV = errors.New("bad csv")

// ImportCSV reads question rows and creates modules and questions through the
// store. Two header schemas are accepted: the full one
// (module,type,question,answer,difficulty,option_a..option_d,correct_option)
// and a simplified one (Serial Number,Question,Answer) that defaults to the
// trigonometry module with revision questions. Rows without question text or
// failing validation are skipped, not fatal.
func ImportCSV(ctx context.Context, store Store, r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrBadCSV, err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	field := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}
	_, simplified := col["Serial Number"]
	if _, ok := col["Question"]; ok {
		simplified = true
	}

	var res ImportResult
	moduleCache := map[string]Module{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrBadCSV, err)
		}

		questionText := field(row, "question", "Question")
		if questionText == "" {
			res.Skipped++
			continue
		}
		moduleName := field(row, "module")
		qtype := field(row, "type")
		if simplified {
			if moduleName == "" {
				moduleName = "trigonometry"
			}
			if qtype == "" {
				qtype = TypeRevision
			}
		}
		if moduleName == "" || !ValidType(qtype) {
			res.Skipped++
			continue
		}

		slug := Slugify(moduleName)
		mod, ok := moduleCache[slug]
		if !ok {
			mod, err = store.CreateModule(ctx, moduleName, slug)
			if err != nil {
				return res, fmt.Errorf("create module %q: %w", moduleName, err)
			}
			moduleCache[slug] = mod
		}

		q := NormalizeQuestion(Question{
			ModuleID:      mod.ID,
			Type:          qtype,
			QuestionText:  questionText,
			OptionA:       optField(row, field, "option_a", "Option A"),
			OptionB:       optField(row, field, "option_b", "Option B"),
			OptionC:       optField(row, field, "option_c", "Option C"),
			OptionD:       optField(row, field, "option_d", "Option D"),
			CorrectOption: optField(row, field, "correct_option", "Correct Option"),
			AnswerText:    optField(row, field, "answer", "Answer"),
			Difficulty:    field(row, "difficulty", "Difficulty"),
		})
		if err := ValidateQuestion(q); err != nil {
			res.Skipped++
			continue
		}
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			return res, fmt.Errorf("create question: %w", err)
		}
		res.Imported++
	}
	return res, nil
}

func optField(row []string, field func([]string, ...string) string, names ...string) *string {
	if v := field(row, names...); v != "" {
		return &v
	}
	return nil
}
