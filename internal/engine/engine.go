// Package engine implements the reminder scheduling core: a due-reminder
// poller, the completion transition for recurring chains, and a
// chain-recovery auditor that repairs recurrence chains broken by downtime.
//
// The store is the sole source of truth. The poller and auditor run as
// periodic tasks on one loop; every mutation is a single-record write, and
// the auditor is the compensating action for the non-atomic
// successor-then-complete pair in the completion transition.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/remindkit/reminderd/internal/metrics"
	"github.com/remindkit/reminderd/internal/models"
	"github.com/remindkit/reminderd/internal/notify"
	"github.com/remindkit/reminderd/internal/recurrence"
)

// Store is the persistent reminder table. Implemented by
// repository.ReminderRepository.
type Store interface {
	Save(ctx context.Context, r *models.Reminder) error
	Due(ctx context.Context, from, to time.Time) ([]*models.Reminder, error)
	CompletedRecurring(ctx context.Context, since time.Time) ([]*models.Reminder, error)
	ActiveInChain(ctx context.Context, userID uuid.UUID, title string, rt models.RepeatType) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// UserDirectory resolves reminder owners for notification routing.
// Implemented by repository.UserRepository.
type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Config struct {
	PollInterval    time.Duration // poll cadence, also the forward due window
	LookBack        time.Duration // how far behind now the due window reaches
	AuditEvery      time.Duration // minimum gap between auditor passes
	AuditLookBack   time.Duration // how far back the auditor scans completions
	DispatchTimeout time.Duration
	DedupTTL        time.Duration
}

func (c *Config) withDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Minute
	}
	if c.LookBack <= 0 {
		c.LookBack = time.Hour
	}
	if c.AuditEvery <= 0 {
		c.AuditEvery = time.Hour
	}
	if c.AuditLookBack <= 0 {
		c.AuditLookBack = 32 * 24 * time.Hour // covers monthly chains
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = 30 * time.Second
	}
	if c.DedupTTL <= 0 {
		c.DedupTTL = time.Hour
	}
}

type Engine struct {
	store    Store
	users    UserDirectory
	notifier notify.Notifier
	cfg      Config
	log      zerolog.Logger

	dedup    *dedupGuard
	notifyCh chan struct{}
	now      func() time.Time

	mu    sync.Mutex
	state engineState
}

type engineState struct {
	running   bool
	nextPoll  time.Time
	lastAudit time.Time
}

func New(store Store, users UserDirectory, notifier notify.Notifier, cfg Config, log zerolog.Logger) *Engine {
	cfg.withDefaults()
	return &Engine{
		store:    store,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		dedup:    newDedupGuard(cfg.DedupTTL),
		notifyCh: make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (e *Engine) Notify() {
	select {
	case e.notifyCh <- struct{}{}:
	default:
	}
}

// Start runs the poll loop until ctx is cancelled. In-flight dispatches get
// their own timeout, so a stuck send delays at most the current tick.
func (e *Engine) Start(ctx context.Context) {
	e.log.Info().
		Dur("poll_interval", e.cfg.PollInterval).
		Dur("look_back", e.cfg.LookBack).
		Msg("engine started")

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	e.setRunning(true)
	defer e.setRunning(false)

	e.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("engine stopped")
			return
		case <-ticker.C:
			e.tick(ctx)
		case <-e.notifyCh:
			e.log.Debug().Msg("engine triggered by notification")
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	now := e.now()
	e.setNextPoll(now.Add(e.cfg.PollInterval))

	// Failsafe first, so a recovered chain due right now is picked up by
	// the poll that follows.
	e.maybeAudit(ctx, now)
	e.poll(ctx, now)
	e.dedup.prune(now)
}

// poll processes every reminder due in [now-LookBack, now+PollInterval].
// Failures are contained per record; one bad reminder never aborts the batch.
func (e *Engine) poll(ctx context.Context, now time.Time) {
	due, err := e.store.Due(ctx, now.Add(-e.cfg.LookBack), now.Add(e.cfg.PollInterval))
	if err != nil {
		e.log.Error().Err(err).Msg("failed to query due reminders")
		return
	}
	if len(due) == 0 {
		return
	}

	e.log.Info().Int("count", len(due)).Msg("found due reminders")

	for _, reminder := range due {
		if err := e.processDue(ctx, reminder, now); err != nil {
			e.log.Error().Err(err).
				Str("reminder_id", reminder.ID.String()).
				Msg("failed to process due reminder")
		}
	}
}

func (e *Engine) processDue(ctx context.Context, reminder *models.Reminder, now time.Time) error {
	key := occurrenceKey(reminder.ID, reminder.TriggerTime)
	if e.dedup.contains(key) {
		metrics.DedupSkips.Inc()
		e.log.Debug().Str("key", key).Msg("skipping already-sent occurrence")
		return nil
	}

	// Left pending on failure so a later tick can retry once the data is
	// consistent.
	user, err := e.users.Get(ctx, reminder.UserID)
	if err != nil {
		return fmt.Errorf("look up owner %s: %w", reminder.UserID, err)
	}

	text := formatMessage(reminder, now)

	dispatchCtx, cancel := context.WithTimeout(ctx, e.cfg.DispatchTimeout)
	err = e.notifier.Send(dispatchCtx, user, text)
	cancel()
	if err != nil {
		metrics.DispatchFailures.Inc()
		return fmt.Errorf("dispatch: %w", err)
	}

	metrics.RemindersSent.Inc()
	e.dedup.add(key, now)
	e.log.Info().
		Str("reminder_id", reminder.ID.String()).
		Str("user_id", user.ID.String()).
		Str("title", reminder.Title).
		Msg("reminder notification sent")

	e.complete(ctx, reminder, now)
	return nil
}

// complete performs the completion transition for a reminder that was just
// successfully sent. For recurring reminders still inside repeat_until, the
// successor is written first and the current record completed second; if the
// process dies between the two writes the auditor recreates the successor.
func (e *Engine) complete(ctx context.Context, reminder *models.Reminder, now time.Time) {
	if reminder.IsRecurring() {
		next, ok := recurrence.NextTrigger(reminder.TriggerTime, reminder.RepeatType)
		if ok && (reminder.RepeatUntil == nil || !next.After(*reminder.RepeatUntil)) {
			successor := reminder.Successor(next, now)
			if err := e.store.Save(ctx, successor); err != nil {
				// Completing anyway leaves a broken chain, which is
				// exactly the state the auditor repairs. Not completing
				// would re-send this occurrence on the next tick.
				e.log.Error().Err(err).
					Str("reminder_id", reminder.ID.String()).
					Msg("failed to create next occurrence, auditor will recover the chain")
			} else {
				e.log.Info().
					Str("reminder_id", reminder.ID.String()).
					Str("successor_id", successor.ID.String()).
					Time("next_trigger", next).
					Msg("created next occurrence")
			}
		} else {
			e.log.Info().
				Str("reminder_id", reminder.ID.String()).
				Msg("recurring reminder reached its end, chain terminates")
		}
	}

	if err := e.store.Complete(ctx, reminder.ID, now); err != nil {
		e.log.Error().Err(err).
			Str("reminder_id", reminder.ID.String()).
			Msg("failed to mark reminder completed")
	}
}

// maybeAudit runs the chain-recovery pass at most once per AuditEvery.
func (e *Engine) maybeAudit(ctx context.Context, now time.Time) {
	if last := e.lastAudit(); !last.IsZero() && now.Sub(last) < e.cfg.AuditEvery {
		return
	}
	e.audit(ctx, now)
	e.setLastAudit(now)
}

// audit scans recently completed recurring reminders and, for each chain
// with no active continuation, creates exactly one recovery reminder. Missed
// cycles are never backfilled; only the single next occurrence is recreated.
func (e *Engine) audit(ctx context.Context, now time.Time) {
	completed, err := e.store.CompletedRecurring(ctx, now.Add(-e.cfg.AuditLookBack))
	if err != nil {
		e.log.Error().Err(err).Msg("failed to query completed recurring reminders")
		return
	}

	recovered := 0
	for _, reminder := range completed {
		created, err := e.auditChain(ctx, reminder, now)
		if err != nil {
			e.log.Error().Err(err).
				Str("reminder_id", reminder.ID.String()).
				Msg("failed to audit recurrence chain")
			continue
		}
		if created {
			recovered++
		}
	}

	if recovered > 0 {
		e.log.Warn().Int("count", recovered).Msg("recovered broken recurrence chains")
	}
}

func (e *Engine) auditChain(ctx context.Context, reminder *models.Reminder, now time.Time) (bool, error) {
	expected, ok := recurrence.NextTrigger(reminder.TriggerTime, reminder.RepeatType)
	if !ok {
		return false, nil
	}
	if reminder.RepeatUntil != nil && expected.After(*reminder.RepeatUntil) {
		// Chain ended on schedule.
		return false, nil
	}

	active, err := e.store.ActiveInChain(ctx, reminder.UserID, reminder.Title, reminder.RepeatType)
	if err != nil {
		return false, fmt.Errorf("check chain continuation: %w", err)
	}
	if active {
		return false, nil
	}

	trigger := expected
	if !expected.After(now) {
		// One or more cycles fully elapsed while the process was down;
		// skip to the next future occurrence on the original schedule.
		trigger, ok = recurrence.NextAppropriateTrigger(reminder.TriggerTime, reminder.RepeatType, now)
		if !ok {
			return false, nil
		}
	}
	if reminder.RepeatUntil != nil && trigger.After(*reminder.RepeatUntil) {
		return false, nil
	}

	recovery := reminder.Successor(trigger, now)
	if err := e.store.Save(ctx, recovery); err != nil {
		return false, fmt.Errorf("save recovery reminder: %w", err)
	}

	metrics.RecoveriesCreated.Inc()
	e.log.Warn().
		Str("reminder_id", reminder.ID.String()).
		Str("recovery_id", recovery.ID.String()).
		Str("title", reminder.Title).
		Time("trigger_time", trigger).
		Msg("created recovery reminder to continue chain")
	return true, nil
}
