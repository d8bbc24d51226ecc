package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a mongo database. ObjectID parsing and
// formatting is confined to this file: lookups with an unparseable id report
// absence, writes report ErrInvalidID.
type MongoStore struct {
	modules   *mongo.Collection
	users     *mongo.Collection
	questions *mongo.Collection
	attempts  *mongo.Collection
}

// NewMongoStore wires the four collections and ensures unique indexes on
// modules.name, modules.slug and users.username.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		modules:   db.Collection("modules"),
		users:     db.Collection("users"),
		questions: db.Collection("questions"),
		attempts:  db.Collection("attempts"),
	}
	unique := options.Index().SetUnique(true)
	_, err := s.modules.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
	})
	if err != nil {
		return nil, err
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}}, Options: unique,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

type moduleDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

func (d moduleDoc) model() Module {
	return Module{ID: RecordID(d.ID.Hex()), Name: d.Name, Slug: d.Slug}
}

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type questionDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ModuleID      primitive.ObjectID `bson:"module_id"`
	Type          string             `bson:"type"`
	QuestionText  string             `bson:"question_text"`
	OptionA       *string            `bson:"option_a"`
	OptionB       *string            `bson:"option_b"`
	OptionC       *string            `bson:"option_c"`
	OptionD       *string            `bson:"option_d"`
	CorrectOption *string            `bson:"correct_option"`
	AnswerText    *string            `bson:"answer_text"`
	Difficulty    string             `bson:"difficulty"`
}

type attemptDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	ModuleID         string             `bson:"module_id"`
	Type             string             `bson:"type"`
	DatetimeISO      string             `bson:"datetime_iso"`
	Score            *float64           `bson:"score"`
	TimeTakenSeconds *int               `bson:"time_taken_seconds"`
	Details          string             `bson:"details"`
}

func (d attemptDoc) model() Attempt {
	return Attempt{
		ID:               RecordID(d.ID.Hex()),
		Username:         d.Username,
		ModuleID:         RecordID(d.ModuleID),
		Type:             d.Type,
		DatetimeISO:      d.DatetimeISO,
		Score:            d.Score,
		TimeTakenSeconds: d.TimeTakenSeconds,
		Details:          d.Details,
	}
}

func (s *MongoStore) CreateModule(ctx context.Context, name, slug string) (Module, error) {
	if m, err := s.GetModuleBySlug(ctx, slug); err == nil {
		return m, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Module{}, err
	}
	res, err := s.modules.InsertOne(ctx, moduleDoc{Name: name, Slug: slug})
	if mongo.IsDuplicateKeyError(err) {
		if m, ferr := s.GetModuleBySlug(ctx, slug); ferr == nil {
			return m, nil
		}
		// Same name already stored under a different slug.
		var d moduleDoc
		if ferr := s.modules.FindOne(ctx, bson.M{"name": name}).Decode(&d); ferr == nil {
			return d.model(), nil
		}
		return Module{}, err
	}
	if err != nil {
		return Module{}, err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return Module{ID: RecordID(oid.Hex()), Name: name, Slug: slug}, nil
}

func (s *MongoStore) ListModules(ctx context.Context) ([]Module, error) {
	cur, err := s.modules.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Module{}
	for cur.Next(ctx) {
		var d moduleDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.model())
	}
	return out, cur.Err()
}

func (s *MongoStore) GetModuleBySlug(ctx context.Context, slug string) (Module, error) {
	var d moduleDoc
	err := s.modules.FindOne(ctx, bson.M{"slug": slug}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Module{}, ErrNotFound
	}
	if err != nil {
		return Module{}, err
	}
	return d.model(), nil
}

func (s *MongoStore) GetModuleByID(ctx context.Context, id RecordID) (Module, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return Module{}, ErrNotFound
	}
	var d moduleDoc
	err = s.modules.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Module{}, ErrNotFound
	}
	if err != nil {
		return Module{}, err
	}
	return d.model(), nil
}

func (s *MongoStore) UpsertUser(ctx context.Context, username string) (User, error) {
	if u, err := s.GetUser(ctx, username); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	res, err := s.users.InsertOne(ctx, userDoc{Username: username})
	if mongo.IsDuplicateKeyError(err) {
		return s.GetUser(ctx, username)
	}
	if err != nil {
		return User{}, err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return User{ID: RecordID(oid.Hex()), Username: username}, nil
}

func (s *MongoStore) GetUser(ctx context.Context, username string) (User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return User{ID: RecordID(d.ID.Hex()), Username: d.Username}, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]User, error) {
	cur, err := s.users.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []User{}
	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, User{ID: RecordID(d.ID.Hex()), Username: d.Username})
	}
	return out, cur.Err()
}

func (s *MongoStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	oid, err := primitive.ObjectIDFromHex(string(q.ModuleID))
	if err != nil {
		return Question{}, fmt.Errorf("%w: invalid module_id %q", ErrInvalidID, q.ModuleID)
	}
	res, err := s.questions.InsertOne(ctx, questionDoc{
		ModuleID:      oid,
		Type:          q.Type,
		QuestionText:  q.QuestionText,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectOption: q.CorrectOption,
		AnswerText:    q.AnswerText,
		Difficulty:    q.Difficulty,
	})
	if err != nil {
		return Question{}, err
	}
	q.ID = RecordID(res.InsertedID.(primitive.ObjectID).Hex())
	return q, nil
}

func (s *MongoStore) ListQuestions(ctx context.Context, moduleID RecordID, qtype string) ([]Question, error) {
	oid, err := primitive.ObjectIDFromHex(string(moduleID))
	if err != nil {
		// Unparseable module id matches nothing.
		return []Question{}, nil
	}
	cur, err := s.questions.Find(ctx, bson.M{"module_id": oid, "type": qtype})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Question{}
	for cur.Next(ctx) {
		var d questionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, Question{
			ID:            RecordID(d.ID.Hex()),
			QuestionText:  d.QuestionText,
			OptionA:       d.OptionA,
			OptionB:       d.OptionB,
			OptionC:       d.OptionC,
			OptionD:       d.OptionD,
			CorrectOption: d.CorrectOption,
			AnswerText:    d.AnswerText,
			Difficulty:    d.Difficulty,
		})
	}
	return out, cur.Err()
}

func (s *MongoStore) GetQuestion(ctx context.Context, id RecordID) (Question, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return Question{}, ErrNotFound
	}
	var d questionDoc
	err = s.questions.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Question{}, ErrNotFound
	}
	if err != nil {
		return Question{}, err
	}
	return Question{
		ID:            RecordID(d.ID.Hex()),
		ModuleID:      RecordID(d.ModuleID.Hex()),
		Type:          d.Type,
		QuestionText:  d.QuestionText,
		OptionA:       d.OptionA,
		OptionB:       d.OptionB,
		OptionC:       d.OptionC,
		OptionD:       d.OptionD,
		CorrectOption: d.CorrectOption,
		AnswerText:    d.AnswerText,
		Difficulty:    d.Difficulty,
	}, nil
}

func (s *MongoStore) CountQuestions(ctx context.Context) (int64, error) {
	return s.questions.CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	res, err := s.attempts.InsertOne(ctx, attemptDoc{
		Username:         a.Username,
		ModuleID:         string(a.ModuleID),
		Type:             a.Type,
		DatetimeISO:      a.DatetimeISO,
		Score:            a.Score,
		TimeTakenSeconds: a.TimeTakenSeconds,
		Details:          a.Details,
	})
	if err != nil {
		return Attempt{}, err
	}
	a.ID = RecordID(res.InsertedID.(primitive.ObjectID).Hex())
	return a, nil
}

func (s *MongoStore) ListAttempts(ctx context.Context) ([]Attempt, error) {
	return s.findAttempts(ctx, bson.M{})
}

func (s *MongoStore) ListAttemptsByUser(ctx context.Context, username string) ([]Attempt, error) {
	return s.findAttempts(ctx, bson.M{"username": username})
}

func (s *MongoStore) ListAttemptsByModule(ctx context.Context, moduleID RecordID) ([]Attempt, error) {
	return s.findAttempts(ctx, bson.M{"module_id": string(moduleID)})
}

func (s *MongoStore) findAttempts(ctx context.Context, filter bson.M) ([]Attempt, error) {
	cur, err := s.attempts.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "datetime_iso", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Attempt{}
	for cur.Next(ctx) {
		var d attemptDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.model())
	}
	return out, cur.Err()
}
