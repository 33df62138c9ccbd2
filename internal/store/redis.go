package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/redis/go-redis/v9"
)

// Redis keys. KeyLatest always holds the most recent result as a bare record
// so other tools can read it without knowing the history layout.
const (
	KeyLatest     = "testResults"
	keyHistory    = "testResults:history"
	keySequence   = "testResults:seq"
	keyTestPrefix = "testResults:test:"
)

// DefaultRedisHistory is how many results RedisRepo keeps by default.
const DefaultRedisHistory = 500

// historyEntry wraps a record with its sequence number in the history list.
type historyEntry struct {
	Sequence int64           `json:"sequence"`
	Record   json.RawMessage `json:"record"`
}

// RedisRepo implements ResultRepo on Redis. Results are kept newest first in
// a capped list, with the latest result per test under its own key.
type RedisRepo struct {
	client     *redis.Client
	maxHistory int64
}

// NewRedisRepo creates a RedisRepo that keeps at most maxHistory results
// (DefaultRedisHistory when maxHistory <= 0).
func NewRedisRepo(client *redis.Client, maxHistory int) *RedisRepo {
	if maxHistory <= 0 {
		maxHistory = DefaultRedisHistory
	}
	return &RedisRepo{client: client, maxHistory: int64(maxHistory)}
}

func (r *RedisRepo) Save(ctx context.Context, rec *record.Record) error {
	data, err := record.Encode(rec)
	if err != nil {
		return err
	}

	seq, err := r.client.Incr(ctx, keySequence).Result()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	entry, err := json.Marshal(historyEntry{Sequence: seq, Record: data})
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, KeyLatest, data, 0)
		pipe.Set(ctx, keyTestPrefix+rec.Test, data, 0)
		pipe.LPush(ctx, keyHistory, entry)
		pipe.LTrim(ctx, keyHistory, 0, r.maxHistory-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *RedisRepo) Latest(ctx context.Context, test string) (*record.Record, error) {
	key := KeyLatest
	if test != "" {
		key = keyTestPrefix + test
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return record.Decode(data)
}

func (r *RedisRepo) List(ctx context.Context, opts QueryOpts) ([]*record.Record, error) {
	raw, err := r.client.LRange(ctx, keyHistory, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var (
		out []*record.Record
		bad skipped
	)
	for _, item := range raw {
		var entry historyEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			bad.add(fmt.Errorf("%w: history entry: %v", record.ErrMalformed, err))
			continue
		}
		if opts.After > 0 && entry.Sequence <= opts.After {
			continue
		}
		rec, err := record.Decode(entry.Record)
		if err != nil {
			bad.add(err)
			continue
		}
		if !matches(rec, opts) {
			continue
		}
		out = append(out, rec)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, bad.err()
}

func (r *RedisRepo) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		// LTRIM with stop -1 would keep the whole list.
		_, err := r.Clear(ctx)
		return err
	}
	if err := r.client.LTrim(ctx, keyHistory, 0, int64(keep)-1).Err(); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

func (r *RedisRepo) Clear(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, keyHistory).Result()
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}

	keys := []string{KeyLatest, keyHistory}
	iter := r.client.Scan(ctx, 0, keyTestPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan result keys: %w", err)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	return n, nil
}

// matches applies the test and time filters of opts.
func matches(rec *record.Record, opts QueryOpts) bool {
	if opts.Test != "" && rec.Test != opts.Test {
		return false
	}
	if !opts.From.IsZero() && rec.TakenAt.Before(opts.From) {
		return false
	}
	if !opts.To.IsZero() && rec.TakenAt.After(opts.To) {
		return false
	}
	return true
}
