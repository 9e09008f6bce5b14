// Package schedule drives the recurring weekly delivery batch. The
// scheduler owns one background timer; each firing loads the subscriber
// snapshot and walks it once, isolating failures per subscriber so one bad
// record or flaky upstream cannot starve the rest of the batch.
// Implements: prd006-scheduling (R1-R6);
//
//	docs/ARCHITECTURE § Scheduling.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/brief-engine/internal/compose"
	"github.com/pdiddy/brief-engine/internal/deliver"
	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var logger = logging.New("schedule")

// DefaultInterval is the batch cadence when none is configured. There is
// no jitter and no catch-up for fires missed while the process was down;
// a restart resets the countdown.
const DefaultInterval = 7 * 24 * time.Hour

// SubscriptionSource loads the full subscriber snapshot for one run.
type SubscriptionSource interface {
	Load() ([]types.Subscription, error)
}

// InsightSource renders recent-trend bullets for one topic. The string is
// fail-soft: error text is a valid return.
type InsightSource interface {
	Insights(ctx context.Context, domain, role string, count int) string
}

// ReportGenerator runs one prompt through the generation engine.
type ReportGenerator interface {
	Generate(ctx context.Context, prompt string) generate.Result
}

// DeliveryChannel sends one email, reporting success as a boolean.
type DeliveryChannel interface {
	Send(to, subject, htmlBody string) bool
}

// Deps carries the scheduler's injected collaborators and tuning.
type Deps struct {
	Subscriptions SubscriptionSource
	Insights      InsightSource
	Generator     ReportGenerator
	Channel       DeliveryChannel

	// Interval between batch runs; DefaultInterval when zero.
	Interval time.Duration

	// ArticleCount bounds the trend articles per digest; the insight
	// source applies its own default when zero.
	ArticleCount int
}

// Summary tallies one batch run.
type Summary struct {
	Sent    int
	Skipped int
	Failed  int
}

// Total returns the number of records the run looked at.
func (s Summary) Total() int { return s.Sent + s.Skipped + s.Failed }

// Scheduler runs the weekly batch on its own timer. Batches never overlap:
// a single goroutine runs them back to back off one ticker.
type Scheduler struct {
	deps Deps

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a stopped Scheduler around deps.
func New(deps Deps) *Scheduler {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Scheduler{deps: deps}
}

// Start launches the recurring loop and returns immediately. The first
// batch fires one full interval after Start, not at Start.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)
	logger.WithField("interval", s.deps.Interval).Info("weekly scheduler started")
}

// Stop cancels the recurring loop. It does not wait for an in-flight
// batch, so process exit is never blocked on a slow generation.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		logger.Info("weekly scheduler stopped")
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes one batch over the current store snapshot and reports
// the tally. An unreadable store makes the whole run a logged no-op.
func (s *Scheduler) RunOnce(ctx context.Context) Summary {
	logger.Info("running weekly email batch")

	subs, err := s.deps.Subscriptions.Load()
	if err != nil {
		logger.WithError(err).Error("loading subscriptions")
		return Summary{}
	}
	if len(subs) == 0 {
		logger.Info("no subscriptions found")
		return Summary{}
	}

	var sum Summary
	for _, sub := range subs {
		if !sub.Deliverable() {
			sum.Skipped++
			continue
		}
		if s.deliverTo(ctx, sub) {
			sum.Sent++
		} else {
			sum.Failed++
		}
	}

	logger.WithFields(logrus.Fields{
		"sent":    sum.Sent,
		"skipped": sum.Skipped,
		"failed":  sum.Failed,
	}).Info("weekly email batch finished")
	return sum
}

// deliverTo builds and sends one subscriber's digest. A panic anywhere in
// the pipeline is contained to this subscriber.
func (s *Scheduler) deliverTo(ctx context.Context, sub types.Subscription) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{"email": sub.Email, "panic": r}).Error("subscriber delivery panicked")
			sent = false
		}
	}()

	logger.WithFields(logrus.Fields{
		"email":  sub.Email,
		"domain": sub.Domain,
		"role":   sub.Role,
	}).Info("generating weekly report")

	trendText := s.deps.Insights.Insights(ctx, sub.Domain, sub.Role, s.deps.ArticleCount)
	prompt := compose.Compose(sub.Domain, sub.Role, trendText, compose.Weekly)
	res := s.deps.Generator.Generate(ctx, prompt)

	report := res.Report()
	if report == "" {
		logger.WithField("email", sub.Email).Warn("engine produced no report, skipping delivery")
		return false
	}

	body := deliver.RenderWeekly(sub.Domain, sub.Role, report)
	return s.deps.Channel.Send(sub.Email, deliver.WeeklySubject(sub.Domain, sub.Role), body)
}
