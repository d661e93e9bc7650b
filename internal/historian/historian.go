// internal/historian/historian.go is an asynchronous historian that pops battle
// records from a Redis queue and archives every round through a Sink.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/war/internal/cache"
	"github.com/jason-s-yu/war/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists archived rounds. *database.Store implements it.
type Sink interface {
	InsertRounds(ctx context.Context, rounds []database.ArchivedRound) error
}

// Options tune the service. Zero values fall back to the defaults below.
type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	// PollTimeout bounds each BLPop so shutdown is noticed. Redis rounds it up
	// to whole seconds.
	PollTimeout time.Duration
}

// Service drains the battle queue into the Sink.
type Service struct {
	rdb    *redis.Client
	sink   Sink
	logger *logrus.Logger
	opts   Options

	batchMu sync.Mutex
	batch   []database.ArchivedRound
}

func NewService(rdb *redis.Client, sink Sink, logger *logrus.Logger, opts Options) *Service {
	if opts.Queue == "" {
		opts.Queue = cache.DefaultQueueName
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 3 * time.Second
	}
	return &Service{
		rdb:    rdb,
		sink:   sink,
		logger: logger,
		opts:   opts,
		batch:  make([]database.ArchivedRound, 0, opts.BatchSize),
	}
}

// Run reads the queue until ctx is canceled, then flushes what is pending.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()

	s.logger.WithField("queue", s.opts.Queue).Info("war-historian started")
	defer func() {
		s.Flush(context.Background())
		s.logger.Info("war-historian stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		default:
			res, err := s.rdb.BLPop(ctx, s.opts.PollTimeout, s.opts.Queue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					s.logger.Errorf("BLPop: %v", err)
					time.Sleep(100 * time.Millisecond)
				}
				continue
			}
			// res[0] is the queue name and res[1] the payload.
			if len(res) < 2 {
				continue
			}
			if s.add(res[1]) >= s.opts.BatchSize {
				s.Flush(ctx)
			}
		}
	}
}

// add decodes one payload into the batch and returns the batch length.
// Malformed payloads are dropped.
func (s *Service) add(payload string) int {
	var rec cache.BattleRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		s.logger.Warnf("dropping invalid battle record: %v", err)
		s.batchMu.Lock()
		defer s.batchMu.Unlock()
		return len(s.batch)
	}

	recordedAt := time.UnixMilli(rec.Timestamp).UTC()
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	for i, r := range rec.Rounds {
		s.batch = append(s.batch, database.ArchivedRound{
			GameID:      rec.GameID,
			BattleIndex: rec.BattleIndex,
			RoundIndex:  i,
			UserCard:    r.UserCard,
			BotCard:     r.BotCard,
			Result:      r.Result,
			RecordedAt:  recordedAt,
		})
	}
	return len(s.batch)
}

// Flush writes the pending rounds. On failure they stay queued for the next
// flush; the sink ignores rounds it already holds.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]database.ArchivedRound, 0, s.opts.BatchSize)
	s.batchMu.Unlock()

	if err := s.sink.InsertRounds(ctx, pending); err != nil {
		s.logger.Errorf("flush of %d rounds failed: %v", len(pending), err)
		s.batchMu.Lock()
		s.batch = append(pending, s.batch...)
		s.batchMu.Unlock()
		return
	}
	s.logger.Debugf("flushed %d rounds", len(pending))
}

// Pending reports how many rounds wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}
