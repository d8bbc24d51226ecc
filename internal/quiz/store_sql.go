package quiz

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// SQLStore serves both the sqlite and postgres backends with one
// implementation. $N placeholders work on both drivers.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateModule(ctx context.Context, name, slug string) (Module, error) {
	if m, err := s.GetModuleBySlug(ctx, slug); err == nil {
		return m, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Module{}, err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id,name,slug) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
		id, name, slug)
	if err != nil {
		return Module{}, err
	}
	m, err := s.GetModuleBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		// Lost to a concurrent insert of the same name under another slug.
		return s.getModuleByName(ctx, name)
	}
	return m, err
}

func (s *SQLStore) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,slug FROM modules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Module{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Slug); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetModuleBySlug(ctx context.Context, slug string) (Module, error) {
	return s.scanModule(s.db.QueryRowContext(ctx,
		`SELECT id,name,slug FROM modules WHERE slug=$1`, slug))
}

func (s *SQLStore) GetModuleByID(ctx context.Context, id RecordID) (Module, error) {
	return s.scanModule(s.db.QueryRowContext(ctx,
		`SELECT id,name,slug FROM modules WHERE id=$1`, string(id)))
}

func (s *SQLStore) getModuleByName(ctx context.Context, name string) (Module, error) {
	return s.scanModule(s.db.QueryRowContext(ctx,
		`SELECT id,name,slug FROM modules WHERE name=$1`, name))
}

func (s *SQLStore) scanModule(row *sql.Row) (Module, error) {
	var m Module
	if err := row.Scan(&m.ID, &m.Name, &m.Slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Module{}, ErrNotFound
		}
		return Module{}, err
	}
	return m, nil
}

func (s *SQLStore) UpsertUser(ctx context.Context, username string) (User, error) {
	if u, err := s.GetUser(ctx, username); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,username) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		id, username)
	if err != nil {
		return User{}, err
	}
	return s.GetUser(ctx, username)
}

func (s *SQLStore) GetUser(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id,username FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,username FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	q.ID = RecordID(uuid.NewString())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions
		 (id,module_id,type,question_text,option_a,option_b,option_c,option_d,correct_option,answer_text,difficulty)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		string(q.ID), string(q.ModuleID), q.Type, q.QuestionText,
		nullStr(q.OptionA), nullStr(q.OptionB), nullStr(q.OptionC), nullStr(q.OptionD),
		nullStr(q.CorrectOption), nullStr(q.AnswerText), q.Difficulty)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, moduleID RecordID, qtype string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,question_text,option_a,option_b,option_c,option_d,correct_option,answer_text,difficulty
		 FROM questions WHERE module_id=$1 AND type=$2`,
		string(moduleID), qtype)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		var a, b, c, d, correct, answer sql.NullString
		if err := rows.Scan(&q.ID, &q.QuestionText, &a, &b, &c, &d, &correct, &answer, &q.Difficulty); err != nil {
			return nil, err
		}
		q.OptionA, q.OptionB, q.OptionC, q.OptionD = strPtr(a), strPtr(b), strPtr(c), strPtr(d)
		q.CorrectOption, q.AnswerText = strPtr(correct), strPtr(answer)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuestion(ctx context.Context, id RecordID) (Question, error) {
	var q Question
	var a, b, c, d, correct, answer sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id,module_id,type,question_text,option_a,option_b,option_c,option_d,correct_option,answer_text,difficulty
		 FROM questions WHERE id=$1`, string(id)).
		Scan(&q.ID, &q.ModuleID, &q.Type, &q.QuestionText, &a, &b, &c, &d, &correct, &answer, &q.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	if err != nil {
		return Question{}, err
	}
	q.OptionA, q.OptionB, q.OptionC, q.OptionD = strPtr(a), strPtr(b), strPtr(c), strPtr(d)
	q.CorrectOption, q.AnswerText = strPtr(correct), strPtr(answer)
	return q, nil
}

func (s *SQLStore) CountQuestions(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	a.ID = RecordID(uuid.NewString())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts
		 (id,username,module_id,type,datetime_iso,score,time_taken_seconds,details)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		string(a.ID), a.Username, string(a.ModuleID), a.Type, a.DatetimeISO,
		nullFloat(a.Score), nullInt(a.TimeTakenSeconds), a.Details)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context) ([]Attempt, error) {
	return s.queryAttempts(ctx,
		`SELECT id,username,module_id,type,datetime_iso,score,time_taken_seconds,details
		 FROM attempts ORDER BY datetime_iso DESC`)
}

func (s *SQLStore) ListAttemptsByUser(ctx context.Context, username string) ([]Attempt, error) {
	return s.queryAttempts(ctx,
		`SELECT id,username,module_id,type,datetime_iso,score,time_taken_seconds,details
		 FROM attempts WHERE username=$1 ORDER BY datetime_iso DESC`, username)
}

func (s *SQLStore) ListAttemptsByModule(ctx context.Context, moduleID RecordID) ([]Attempt, error) {
	return s.queryAttempts(ctx,
		`SELECT id,username,module_id,type,datetime_iso,score,time_taken_seconds,details
		 FROM attempts WHERE module_id=$1 ORDER BY datetime_iso DESC`, string(moduleID))
}

func (s *SQLStore) queryAttempts(ctx context.Context, query string, args ...any) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var score sql.NullFloat64
		var taken sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Username, &a.ModuleID, &a.Type, &a.DatetimeISO, &score, &taken, &a.Details); err != nil {
			return nil, err
		}
		if score.Valid {
			v := score.Float64
			a.Score = &v
		}
		if taken.Valid {
			v := int(taken.Int64)
			a.TimeTakenSeconds = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
