package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"renewradar/internal/types"
)

// DispatcherConfig holds the tuning knobs of a dispatch run.
type DispatcherConfig struct {
	// Offsets are the day offsets scanned each run (due date minus as-of).
	Offsets []int

	// Concurrency bounds the number of obligations processed in parallel.
	Concurrency int

	// SendTimeout caps each individual provider call.
	SendTimeout time.Duration

	// RunBudget caps the wall clock of the whole run. When exceeded the run
	// stops claiming new work and reports a partial result.
	RunBudget time.Duration

	// CivicTimezone is the IANA timezone whose calendar day is reported as
	// the run's as-of date. Eligibility itself is computed per obligation
	// city: each city is scanned on its own civic "today".
	CivicTimezone string
}

// Deps bundles the collaborators of a Dispatcher. Metrics, Clock, and Logger
// are optional; nil values get no-op defaults.
type Deps struct {
	Source   ObligationSource
	Resolver *PreferenceResolver
	Ledger   Ledger
	Composer MessageComposer
	Email    EmailSender
	SMS      SMSSender
	Voice    VoiceSender
	Metrics  RunMetrics
	Clock    types.Clock
	Logger   types.Logger
}

// Dispatcher coordinates one notification run: find due obligations, resolve
// preferences, classify urgency, claim the idempotency key, compose, send.
// The claim happens before the send, so a crash mid-run can lose a message
// but never duplicate one.
type Dispatcher struct {
	cfg      DispatcherConfig
	source   ObligationSource
	resolver *PreferenceResolver
	ledger   Ledger
	composer MessageComposer
	email    EmailSender
	sms      SMSSender
	voice    VoiceSender
	metrics  RunMetrics
	clock    types.Clock
	logger   types.Logger
}

// NewDispatcher creates a Dispatcher. Concurrency below 1 is raised to 1.
func NewDispatcher(cfg DispatcherConfig, deps Deps) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if deps.Metrics == nil {
		deps.Metrics = NoopMetrics{}
	}
	if deps.Clock == nil {
		deps.Clock = types.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = types.NopLogger{}
	}
	return &Dispatcher{
		cfg:      cfg,
		source:   deps.Source,
		resolver: deps.Resolver,
		ledger:   deps.Ledger,
		composer: deps.Composer,
		email:    deps.Email,
		sms:      deps.SMS,
		voice:    deps.Voice,
		metrics:  deps.Metrics,
		clock:    deps.Clock,
		logger:   deps.Logger,
	}
}

// Run executes a dispatch run for "today". Each city is scanned on its own
// civic calendar day, so a run started in the window where Chicago has
// rolled over but San Francisco has not still targets the correct date for
// both. The reported as-of date is today in the configured civic timezone.
func (d *Dispatcher) Run(ctx context.Context) (*RunResult, error) {
	loc, err := time.LoadLocation(d.cfg.CivicTimezone)
	if err != nil {
		d.logger.Warn("unknown civic timezone, falling back to UTC", "timezone", d.cfg.CivicTimezone)
		loc = time.UTC
	}
	now := d.clock.Now().In(loc)
	reported := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	asOfByCity := make(map[types.City]time.Time, len(types.AllCities))
	for _, city := range types.AllCities {
		asOfByCity[city] = types.CivicToday(d.clock, city)
	}
	return d.run(ctx, reported, asOfByCity)
}

// RunAsOf executes a dispatch run for an explicit as-of calendar date
// (midnight UTC), applied to every city. Used by the manual trigger and for
// replaying a missed day.
func (d *Dispatcher) RunAsOf(ctx context.Context, asOf time.Time) (*RunResult, error) {
	asOfByCity := make(map[types.City]time.Time, len(types.AllCities))
	for _, city := range types.AllCities {
		asOfByCity[city] = asOf
	}
	return d.run(ctx, asOf, asOfByCity)
}

// run executes one dispatch pass over every city.
//
// The returned error is non-nil only when the obligation source is
// unavailable; per-obligation failures are reported inside the RunResult.
func (d *Dispatcher) run(ctx context.Context, reported time.Time, asOfByCity map[types.City]time.Time) (*RunResult, error) {
	start := d.clock.Now()
	res := newRunResult(reported, d.cfg.Offsets)

	runCtx := ctx
	if d.cfg.RunBudget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.cfg.RunBudget)
		defer cancel()
	}

	d.logger.Info("starting notification run",
		"as_of", reported.Format(types.DateLayout),
		"offsets", d.cfg.Offsets,
		"concurrency", d.cfg.Concurrency)

	// Gather the full work set before sending anything, so a broken source
	// aborts the run without partial deliveries. Each city is scanned against
	// its own as-of date.
	type task struct {
		ob     types.Obligation
		asOf   time.Time
		offset int
	}
	var tasks []task
	for _, city := range types.AllCities {
		cityAsOf := asOfByCity[city]
		for _, offset := range d.cfg.Offsets {
			obs, err := d.source.ListDue(runCtx, city, cityAsOf, offset)
			if err != nil {
				return res, types.NewAppError(types.ErrCodeSourceUnavailable,
					fmt.Sprintf("listing %s obligations at offset %d failed", city, offset), err)
			}
			for _, ob := range obs {
				tasks = append(tasks, task{ob: ob, asOf: cityAsOf, offset: offset})
			}
		}
	}

	userIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		userIDs = append(userIDs, t.ob.UserID)
	}
	prefs, err := d.resolver.ResolveAll(runCtx, userIDs)
	if err != nil {
		// The run survives, but with no preferences nothing can be dispatched
		// safely, so everything in the work set counts as failed.
		res.Processed = len(tasks)
		res.Failed = len(tasks)
		res.Errors = append(res.Errors, fmt.Sprintf("resolving preferences: %v", err))
		d.logger.Error("preference resolution failed, run degraded", "error", err)
		d.metrics.RunCompleted(ctx, res, d.clock.Now().Sub(start))
		return res, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(d.cfg.Concurrency)
	for _, t := range tasks {
		g.Go(func() error {
			d.processObligation(runCtx, t.asOf, t.ob, t.offset, prefs[t.ob.UserID], res, &mu)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures accumulate in res

	if runCtx.Err() != nil {
		res.Partial = true
	}

	duration := d.clock.Now().Sub(start)
	d.metrics.RunCompleted(ctx, res, duration)
	d.logger.Info("notification run complete",
		"as_of", reported.Format(types.DateLayout),
		"duration_ms", duration.Milliseconds(),
		"processed", res.Processed,
		"sent", res.Sent,
		"already_sent", res.AlreadySent,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"escalations", res.Escalations,
		"partial", res.Partial)
	return res, nil
}

// attempt is one planned delivery on one channel.
type attempt struct {
	channel types.ChannelType
	to      string
}

// planAttempts decides which channels to try for an obligation at this
// offset. Regular attempts require the channel enabled, an endpoint on file,
// and the offset present in the user's reminder schedule. At critical
// urgency, a phone on file forces an SMS even when SMS is disabled or the
// offset is not in the schedule; the second return reports that escalation.
func planAttempts(pref types.NotificationPreference, offsetDays int, tier types.UrgencyTier) ([]attempt, bool) {
	var attempts []attempt
	smsPlanned := false

	if pref.WantsOffset(offsetDays) {
		for _, ch := range types.AllChannels {
			if !pref.ChannelEnabled(ch) {
				continue
			}
			to, ok := pref.Endpoint(ch)
			if !ok {
				continue
			}
			if ch == types.ChannelSMS {
				smsPlanned = true
			}
			attempts = append(attempts, attempt{channel: ch, to: to})
		}
	}

	if tier == types.TierCritical && !smsPlanned {
		if to, ok := pref.Endpoint(types.ChannelSMS); ok {
			return append(attempts, attempt{channel: types.ChannelSMS, to: to}), true
		}
	}
	return attempts, false
}

func (d *Dispatcher) processObligation(ctx context.Context, asOf time.Time, ob types.Obligation,
	offsetDays int, pref types.NotificationPreference, res *RunResult, mu *sync.Mutex) {

	tier := ClassifyUrgency(types.DaysUntil(asOf, ob.DueDate))
	attempts, escalated := planAttempts(pref, offsetDays, tier)

	mu.Lock()
	res.Processed++
	if escalated {
		res.Escalations++
	}
	if len(attempts) == 0 {
		res.Skipped++
	}
	mu.Unlock()

	failed := false
	for _, at := range attempts {
		// Budget exhausted: stop claiming so unclaimed keys stay eligible for
		// the next run.
		if ctx.Err() != nil {
			mu.Lock()
			res.Partial = true
			mu.Unlock()
			break
		}

		key := types.LedgerKey{
			UserID:         ob.UserID,
			ObligationType: ob.Type,
			DueDate:        ob.DueDate,
			Channel:        at.channel,
			OffsetDays:     offsetDays,
		}

		outcome, err := d.ledger.Claim(ctx, key)
		if err != nil {
			failed = true
			mu.Lock()
			res.FailedByChannel[at.channel]++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: claim failed: %v", key, err))
			mu.Unlock()
			d.logger.Error("ledger claim failed", "key", key.String(), "error", err)
			continue
		}
		if outcome == types.ClaimAlreadyRecorded {
			mu.Lock()
			res.AlreadySent++
			mu.Unlock()
			d.metrics.DeliveryAttempt(ctx, at.channel, ResultDuplicate)
			continue
		}

		sendStart := d.clock.Now()
		providerID, err := d.send(ctx, at, ob, tier)
		d.metrics.SendLatency(ctx, at.channel, d.clock.Now().Sub(sendStart))
		if err != nil {
			failed = true
			mu.Lock()
			res.FailedByChannel[at.channel]++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", key, err))
			mu.Unlock()
			d.metrics.DeliveryAttempt(ctx, at.channel, ResultFailure)
			d.logger.Error("delivery failed", "key", key.String(), "channel", string(at.channel), "error", err)
			continue
		}

		mu.Lock()
		res.Sent++
		res.SentByChannel[at.channel]++
		mu.Unlock()
		d.metrics.DeliveryAttempt(ctx, at.channel, ResultSuccess)
		d.logger.Info("notification sent",
			"key", key.String(),
			"channel", string(at.channel),
			"tier", string(tier),
			"provider_id", providerID)
	}

	if failed {
		mu.Lock()
		res.Failed++
		mu.Unlock()
	}
}

// send composes and delivers one message on one channel, bounded by the
// per-send timeout.
func (d *Dispatcher) send(ctx context.Context, at attempt, ob types.Obligation, tier types.UrgencyTier) (string, error) {
	sendCtx := ctx
	if d.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.cfg.SendTimeout)
		defer cancel()
	}

	switch at.channel {
	case types.ChannelEmail:
		msg, err := d.composer.Email(ob.Type, tier, ob.DueDate)
		if err != nil {
			return "", err
		}
		return d.email.Send(sendCtx, at.to, msg.Subject, msg.HTMLBody, msg.TextBody)
	case types.ChannelSMS:
		body, err := d.composer.SMS(ob.Type, tier, ob.DueDate)
		if err != nil {
			return "", err
		}
		return d.sms.Send(sendCtx, at.to, body)
	case types.ChannelVoice:
		script, err := d.composer.Voice(ob.Type, tier, ob.DueDate)
		if err != nil {
			return "", err
		}
		return d.voice.Call(sendCtx, at.to, script)
	default:
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"unknown channel "+string(at.channel), nil)
	}
}
