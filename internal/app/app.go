// Package app wires configuration into a ready session engine. Both bot
// processes share it.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/config"
	"github.com/PoluyanbIch/GoQuizBot/internal/service"
	"github.com/PoluyanbIch/GoQuizBot/internal/session"
	"github.com/PoluyanbIch/GoQuizBot/internal/storage/memory"
	"github.com/PoluyanbIch/GoQuizBot/internal/storage/redis"
	"github.com/PoluyanbIch/GoQuizBot/internal/storage/sqlite"
)

type Runtime struct {
	Engine *session.Engine
	Bank   *service.Bank

	closers []func() error
}

func (r *Runtime) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build loads the question corpus, opens the configured store and returns
// the engine. An empty corpus or an unreachable store is an error.
func Build(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Runtime, error) {
	questions, err := service.LoadQuizQuestions(cfg.QuestionsPath, cfg.QuestionsEncoding)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	bank, err := service.NewBank(questions)
	if err != nil {
		return nil, err
	}
	logger.WithField("questions", bank.Len()).Info("question corpus loaded")

	rt := &Runtime{Bank: bank}
	store, leaderboard, err := rt.openStore(ctx, cfg, logger)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	var selector session.Selector = session.UniformSelector{}
	if cfg.Dedup {
		selector = session.SeenSetSelector{}
	}

	engine, err := session.NewEngine(session.Config{
		Store:       store,
		Questions:   bank,
		Leaderboard: leaderboard,
		Selector:    selector,
		Logger:      logger,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Engine = engine
	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (session.Store, service.LeaderboardService, error) {
	log := logger.WithField("backend", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(redis.Options{
			Addr:          cfg.Redis.Addr(),
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			Timeout:       cfg.Redis.Timeout,
			RetryAttempts: cfg.Redis.Retry,
			KeyPrefix:     cfg.Redis.KeyPrefix,
			Logger:        logger,
		})
		rt.closers = append(rt.closers, client.Close)
		if err := client.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr(), err)
		}
		log.WithField("addr", cfg.Redis.Addr()).Info("session store ready")
		return redis.NewSessionStore(client), redis.NewLeaderboard(client), nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, cfg.Redis.Retry)
		if err != nil {
			return nil, nil, err
		}
		rt.closers = append(rt.closers, store.Close)
		log.WithField("path", cfg.SQLitePath).Info("session store ready")
		return store, service.NewMemoryLeaderboardService(), nil

	default:
		log.Warn("sessions are kept in memory and lost on restart")
		return memory.NewStore(), service.NewMemoryLeaderboardService(), nil
	}
}
