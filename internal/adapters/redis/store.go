package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"listing_seeder/internal/domain"
)

// historyLen bounds the per-database list of past run summaries.
const historyLen = 50

// Store keeps the seeder's run lock and its published run summaries.
type Store struct {
	c       *redis.Client
	lockTTL time.Duration
}

func New(addr, pass string, db int, lockTTL time.Duration) *Store {
	if lockTTL <= 0 {
		lockTTL = 15 * time.Minute
	}
	return &Store{
		c:       redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		lockTTL: lockTTL,
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *Store) Close() error { return s.c.Close() }

// ---- domain.RunLock ----

func (s *Store) Acquire(ctx context.Context, key, owner string) (bool, error) {
	return s.c.SetNX(ctx, key, owner, s.lockTTL).Result()
}

// releaseScript deletes the lock only while it still belongs to owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *Store) Release(ctx context.Context, key, owner string) error {
	return releaseScript.Run(ctx, s.c, []string{key}, owner).Err()
}

// ---- domain.ReportSink ----

func lastKey(databaseID string) string    { return fmt.Sprintf("seed:last_report:%s", databaseID) }
func historyKey(databaseID string) string { return fmt.Sprintf("seed:runs:%s", databaseID) }

func (s *Store) Publish(ctx context.Context, r domain.RunReport) error {
	b, err := json.Marshal(r.Summary())
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	_, err = s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, lastKey(r.DatabaseID), b, 0)
		p.LPush(ctx, historyKey(r.DatabaseID), b)
		p.LTrim(ctx, historyKey(r.DatabaseID), 0, historyLen-1)
		return nil
	})
	return err
}

// LastReport returns the most recently published summary for databaseID.
func (s *Store) LastReport(ctx context.Context, databaseID string) (domain.RunSummary, bool, error) {
	var out domain.RunSummary
	b, err := s.c.Get(ctx, lastKey(databaseID)).Bytes()
	if err == redis.Nil {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	return out, true, json.Unmarshal(b, &out)
}

// History returns up to limit past summaries, newest first.
func (s *Store) History(ctx context.Context, databaseID string, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 || limit > historyLen {
		limit = historyLen
	}
	raw, err := s.c.LRange(ctx, historyKey(databaseID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.RunSummary, 0, len(raw))
	for _, item := range raw {
		var rs domain.RunSummary
		if err := json.Unmarshal([]byte(item), &rs); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}
