package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "github.com/mathathon/mathathon-server/internal/api/http"
	"github.com/mathathon/mathathon-server/internal/auth"
	"github.com/mathathon/mathathon-server/internal/config"
	"github.com/mathathon/mathathon-server/internal/db"
	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Log.Fatal("load config", zap.Error(err))
	}
	logger.Init(cfg.Production())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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

	store, err := newStore(ctx, dbh)
	if err != nil {
		logger.Log.Fatal("store init failed", zap.Error(err))
	}

	sessions := auth.NewSessionService(cfg.SessionSecret, cfg.Production())

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Store:         store,
			Sessions:      sessions,
			AdminPassword: cfg.AdminPassword,
			DatabaseKind:  string(dbh.Kind()),
			CORSOrigins:   cfg.Origins(),
		}),
	}

	go func() {
		logger.Log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.Env),
			zap.String("database", string(dbh.Kind())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown", zap.Error(err))
	}
	if err := dbh.Close(shutdownCtx); err != nil {
		logger.Log.Error("db close", zap.Error(err))
	}
}

func newStore(ctx context.Context, dbh *db.DB) (quiz.Store, error) {
	if dbh.Kind() == db.KindMongo {
		m, err := dbh.Mongo()
		if err != nil {
			return nil, err
		}
		return quiz.NewMongoStore(ctx, m)
	}
	s, err := dbh.SQL()
	if err != nil {
		return nil, err
	}
	return quiz.NewSQLStore(s), nil
}
