// Seeds modules and questions from a CSV file through the same repository
// paths the API uses.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mathathon/mathathon-server/internal/config"
	"github.com/mathathon/mathathon-server/internal/db"
	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

func main() {
	csvPath := flag.String("csv", "data/questions.csv", "path to the CSV file to import")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Log.Fatal("load config", zap.Error(err))
	}
	logger.Init(cfg.Production())

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Log.Fatal("open csv", zap.String("path", *csvPath), zap.Error(err))
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbh, err := db.Connect(ctx, db.Options{
		MongoURI:    cfg.MongoURI,
		MongoDBName: cfg.MongoDBName,
		Driver:      cfg.DBDriver,
		DSN:         cfg.DBDSN,
	})
	if err != nil {
		logger.Log.Fatal("db connect failed", zap.Error(err))
	}
	defer dbh.Close(ctx)

	var store quiz.Store
	if dbh.Kind() == db.KindMongo {
		m, err := dbh.Mongo()
		if err != nil {
			logger.Log.Fatal("mongo handle", zap.Error(err))
		}
		store, err = quiz.NewMongoStore(ctx, m)
		if err != nil {
			logger.Log.Fatal("mongo store", zap.Error(err))
		}
	} else {
		s, err := dbh.SQL()
		if err != nil {
			logger.Log.Fatal("sql handle", zap.Error(err))
		}
		store = quiz.NewSQLStore(s)
	}

	res, err := quiz.ImportCSV(ctx, store, f)
	if err != nil {
		logger.Log.Fatal("import failed", zap.Error(err))
	}
	logger.Log.Info("seed complete",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.String("database", string(dbh.Kind())))
}
