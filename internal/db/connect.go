package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMongo    Kind = "mongodb"
)

var ErrNotConnected = errors.New("database not connected")

// Options selects the backend. A non-empty MongoURI wins; otherwise Driver
// picks a SQL backend, with per-driver default DSNs.
type Options struct {
	MongoURI    string
	MongoDBName string
	Driver      string // sqlite|postgres
	DSN         string
}

// DB is the explicitly owned connection handle, constructed once at startup
// and injected into the store. Close releases it.
type DB struct {
	kind   Kind
	sqlDB  *sql.DB
	client *mongo.Client
	mongo  *mongo.Database
}

// Connect opens the selected backend and, for SQL backends, ensures the
// schema exists.
func Connect(ctx context.Context, opts Options) (*DB, error) {
	if opts.MongoURI != "" {
		return connectMongo(ctx, opts)
	}
	return connectSQL(ctx, opts)
}

func connectSQL(ctx context.Context, opts Options) (*DB, error) {
	var drvName string
	kind := Kind(opts.Driver)
	dsn := opts.DSN
	switch kind {
	case KindSQLite, "":
		kind = KindSQLite
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:mathathon.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case KindPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/mathathon?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", opts.Driver)
	}

	sqlDB, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, sqlDB, kind); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &DB{kind: kind, sqlDB: sqlDB}, nil
}

func connectMongo(ctx context.Context, opts Options) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	name := opts.MongoDBName
	if name == "" {
		name = "mathathon"
	}
	return &DB{kind: KindMongo, client: client, mongo: client.Database(name)}, nil
}

func (d *DB) Kind() Kind {
	if d == nil {
		return ""
	}
	return d.kind
}

// SQL returns the *sql.DB handle for sqlite/postgres backends.
func (d *DB) SQL() (*sql.DB, error) {
	if d == nil || d.sqlDB == nil {
		return nil, ErrNotConnected
	}
	return d.sqlDB, nil
}

// Mongo returns the database handle for the mongodb backend.
func (d *DB) Mongo() (*mongo.Database, error) {
	if d == nil || d.mongo == nil {
		return nil, ErrNotConnected
	}
	return d.mongo, nil
}

func (d *DB) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	if d.sqlDB != nil {
		return d.sqlDB.Close()
	}
	if d.client != nil {
		return d.client.Disconnect(ctx)
	}
	return nil
}

func ensureSchema(ctx context.Context, sqlDB *sql.DB, kind Kind) error {
	var schema string
	switch kind {
	case KindSQLite:
		schema = schemaSQLite
	case KindPostgres:
		schema = schemaPostgres
	}
	_, err := sqlDB.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS modules (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL REFERENCES modules(id),
  type TEXT NOT NULL,
  question_text TEXT NOT NULL,
  option_a TEXT,
  option_b TEXT,
  option_c TEXT,
  option_d TEXT,
  correct_option TEXT,
  answer_text TEXT,
  difficulty TEXT NOT NULL DEFAULT 'medium'
);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  module_id TEXT NOT NULL,
  type TEXT NOT NULL,
  datetime_iso TEXT NOT NULL,
  score REAL,
  time_taken_seconds INTEGER,
  details TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_module_type ON questions(module_id, type);
CREATE INDEX IF NOT EXISTS idx_attempts_username ON attempts(username);
CREATE INDEX IF NOT EXISTS idx_attempts_module ON attempts(module_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS modules (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL REFERENCES modules(id),
  type TEXT NOT NULL,
  question_text TEXT NOT NULL,
  option_a TEXT,
  option_b TEXT,
  option_c TEXT,
  option_d TEXT,
  correct_option TEXT,
  answer_text TEXT,
  difficulty TEXT NOT NULL DEFAULT 'medium'
);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  module_id TEXT NOT NULL,
  type TEXT NOT NULL,
  datetime_iso TEXT NOT NULL,
  score DOUBLE PRECISION,
  time_taken_seconds INTEGER,
  details TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_module_type ON questions(module_id, type);
CREATE INDEX IF NOT EXISTS idx_attempts_username ON attempts(username);
CREATE INDEX IF NOT EXISTS idx_attempts_module ON attempts(module_id);
`
