package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// EvictSpec runs at second zero of every minute.
const EvictSpec = "0 * * * * *"

// PruneSpec runs every five minutes, offset from the eviction sweep.
const PruneSpec = "30 */5 * * * *"

// SessionEvicter flushes and drops idle editing sessions.
type SessionEvicter interface {
	EvictIdle(ctx context.Context, ttl time.Duration) int
}

// LimiterPruner forgets rate-limit buckets not used within ttl.
type LimiterPruner interface {
	Prune(ttl time.Duration) int
}

type Scheduler struct {
	cron     *cron.Cron
	sessions SessionEvicter
	limiter  LimiterPruner
	idleTTL  time.Duration
	log      *zap.Logger
}

func NewScheduler(sessions SessionEvicter, idleTTL time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.L()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		idleTTL:  idleTTL,
		log:      log,
	}
}

// PruneLimiter adds a job that drops idle rate-limit buckets.
func (s *Scheduler) PruneLimiter(l LimiterPruner) {
	s.limiter = l
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(EvictSpec, s.evictIdleSessions); err != nil {
		s.log.Error("failed to create cron job", zap.Error(err))
		return err
	}
	if s.limiter != nil {
		if _, err := s.cron.AddFunc(PruneSpec, s.pruneLimiter); err != nil {
			s.log.Error("failed to create cron job", zap.Error(err))
			return err
		}
	}

	s.log.Info("cron scheduler started", zap.String("evict_spec", EvictSpec), zap.Duration("idle_ttl", s.idleTTL))
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) evictIdleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	started := time.Now()
	n := s.sessions.EvictIdle(ctx, s.idleTTL)
	s.log.Debug("idle session sweep", zap.Int("evicted", n), zap.Duration("took", time.Since(started)))
}

func (s *Scheduler) pruneLimiter() {
	n := s.limiter.Prune(s.idleTTL)
	if n > 0 {
		s.log.Debug("rate limit buckets pruned", zap.Int("pruned", n))
	}
}
