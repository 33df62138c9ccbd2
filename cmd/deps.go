package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/store"
)

// deps holds the storage opened for one command.
type deps struct {
	store   *store.Store
	redis   *redis.Client
	results store.ResultRepo
}

// openDeps opens the SQLite store and, when a Redis address is configured,
// mirrors results to Redis.
func openDeps(ctx context.Context) (*deps, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "path", dbPath)

	d := &deps{store: st, results: st.ResultRepo()}
	if !cfg.RedisEnabled() {
		return d, nil
	}

	d.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := d.redis.Ping(ctx).Err(); err != nil {
		d.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Debug("redis mirror enabled", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "password", cfg.RedisPassword)

	d.results = &store.Mirror{
		Primary:   st.ResultRepo(),
		Secondary: store.NewRedisRepo(d.redis, store.DefaultRedisHistory),
	}
	return d, nil
}

func (d *deps) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warn("close redis", "error", err)
		}
	}
	if err := d.store.Close(); err != nil {
		log.Warn("close store", "error", err)
	}
}

// listResults lists stored results. Unreadable records are left out with a
// warning instead of failing the command.
func (d *deps) listResults(ctx context.Context, opts store.QueryOpts) ([]*record.Record, error) {
	recs, err := d.results.List(ctx, opts)
	if errors.Is(err, record.ErrMalformed) {
		log.Warn("stored results unreadable", "error", err)
		return recs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return recs, nil
}

// resolveDBPath returns the database path from --db or LEXISCREEN_DB, then
// the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	}
	return store.DefaultDBPath()
}
