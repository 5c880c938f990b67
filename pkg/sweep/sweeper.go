package sweep

import (
	"context"
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/renovapanel/renova/pkg/faults"
	"github.com/renovapanel/renova/pkg/observability"
)

// SessionPurger removes expired sessions. Satisfied by the auth service.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Sweeper owns the cron schedule for periodic maintenance
type Sweeper struct {
	db       *sql.DB
	sessions SessionPurger
	logger   *observability.Logger
	metrics  *observability.Metrics
	schedule string
	cron     *cron.Cron
	timeout  time.Duration
}

// NewSweeper creates a new Sweeper. sessions may be nil to skip session
// purging.
func NewSweeper(db *sql.DB, sessions SessionPurger, logger *observability.Logger, metrics *observability.Metrics, schedule string) *Sweeper {
	return &Sweeper{
		db:       db,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

// Start begins the schedule. Returns an error if the cron expression is
// invalid.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return faults.InvalidInput("invalid sweep schedule %q: %v", s.schedule, err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("expiry sweep started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	expired, err := s.SweepExpired(ctx)
	if err != nil {
		s.logger.WithError(err).Error("expiry sweep failed")
	} else if expired > 0 {
		s.logger.WithField("clients", expired).Info("expiry sweep flipped lapsed clients")
	}

	if s.sessions == nil {
		return
	}
	purged, err := s.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session purge failed")
	} else if purged > 0 {
		s.logger.WithField("sessions", purged).Info("purged expired sessions")
	}
}

// SweepExpired flips every ativo client whose expiration date has
// passed to vencido and returns how many rows changed. Clients marked
// cancelado are untouched.
func (s *Sweeper) SweepExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET status = 'vencido', updated_at = NOW()
		WHERE status = 'ativo' AND data_vencimento < CURRENT_DATE`)
	if err != nil {
		s.metrics.RecordStorageError("sweep_expired")
		return 0, faults.Storage(err, "failed to sweep expired clients")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.metrics.RecordStorageError("sweep_expired")
		return 0, faults.Storage(err, "failed to get rows affected")
	}

	if affected > 0 {
		s.metrics.SweepTransitionsTotal.Add(float64(affected))
	}
	return affected, nil
}
