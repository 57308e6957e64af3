// Package poller drives the fetch, decode, aggregate and publish cycle
package poller

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"escrutinio/internal/models"
	"escrutinio/internal/parser"
	"escrutinio/internal/storage"
)

// DefaultInterval is the poll cadence
const DefaultInterval = 60 * time.Second

var errNoRegions = errors.New("payload contains no known regions")

// Source fetches the raw payloads of a contest
type Source interface {
	Dispatch(ctx context.Context) (string, error)
	Payload(ctx context.Context, dispatch string) (string, error)
	Baseline(ctx context.Context) (string, bool, error)
	Turnout(ctx context.Context, dispatch string) (string, bool, error)
}

// Builder aggregates decoded rows into regions
type Builder interface {
	Build(ctx context.Context, contest *models.Contest, rows iter.Seq[parser.Row]) (models.Regions, error)
}

// Config holds poller configuration.
type Config struct {
	Contest  models.Contest
	Interval time.Duration
	Source   Source
	Builder  Builder
	Store    *storage.SnapshotStore
	Logger   *zap.Logger
	Now      func() time.Time
}

// Poller publishes a fresh snapshot of one contest every interval.
// A failed cycle leaves the previous snapshot in place.
type Poller struct {
	contest  models.Contest
	interval time.Duration
	source   Source
	builder  Builder
	store    *storage.SnapshotStore
	logger   *zap.Logger
	now      func() time.Time

	// cycleMu serializes cycles; baseline is only touched while holding it
	cycleMu  sync.Mutex
	baseline string

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a poller
func New(cfg Config) (*Poller, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("poller %s: source is required", cfg.Contest.ID)
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("poller %s: builder is required", cfg.Contest.ID)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewSnapshotStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Poller{
		contest:  cfg.Contest,
		interval: cfg.Interval,
		source:   cfg.Source,
		builder:  cfg.Builder,
		store:    cfg.Store,
		logger:   cfg.Logger.Named("poller").With(zap.String("contest", cfg.Contest.ID)),
		now:      cfg.Now,
	}, nil
}

// Contest returns the contest this poller serves
func (p *Poller) Contest() *models.Contest {
	return &p.contest
}

// Snapshots returns the store the poller publishes to
func (p *Poller) Snapshots() *storage.SnapshotStore {
	return p.store
}

// RunOnce executes one full cycle and publishes its snapshot.
// On error nothing is published.
func (p *Poller) RunOnce(ctx context.Context) (*models.Snapshot, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	log := p.logger.With(zap.String("cycle", uuid.NewString()))

	dispatch, err := p.source.Dispatch(ctx)
	if err != nil {
		return nil, parser.NewParseError(parser.StageDispatch, err)
	}
	log = log.With(zap.String("dispatch", dispatch))

	payload, err := p.source.Payload(ctx, dispatch)
	if err != nil {
		return nil, parser.NewParseError(parser.StagePayload, err)
	}

	current, err := p.build(ctx, payload)
	if err != nil {
		return nil, err
	}

	var turnout []models.TurnoutCheckpoint
	text, ok, err := p.source.Turnout(ctx, dispatch)
	if err != nil {
		return nil, parser.NewParseError(parser.StageTurnout, err)
	}
	if ok {
		if turnout, err = parser.DecodeTurnout(strings.NewReader(text), p.contest.TurnoutLabels); err != nil {
			return nil, parser.NewParseError(parser.StageTurnout, err)
		}
	}

	snap := &models.Snapshot{
		Contest:   p.contest.ID,
		Dispatch:  dispatch,
		FetchedAt: p.now(),
		Current:   current,
		Baseline:  p.loadBaseline(ctx, log),
		Turnout:   turnout,
	}
	p.store.Publish(snap)

	log.Info("snapshot published",
		zap.Int("regions", len(current)),
		zap.Bool("baseline", snap.HasBaseline()),
		zap.Int("turnout", len(turnout)))
	return snap, nil
}

// build decodes payload and aggregates it. A read error or a payload
// without known regions fails at the decode stage.
func (p *Poller) build(ctx context.Context, payload string) (models.Regions, error) {
	dec := parser.NewDecoder(strings.NewReader(payload))
	regions, err := p.builder.Build(ctx, &p.contest, dec.Rows())
	if err != nil {
		return nil, parser.NewParseError(parser.StageAggregate, err)
	}
	if err := dec.Err(); err != nil {
		return nil, parser.NewParseError(parser.StageDecode, err)
	}
	if len(regions) == 0 {
		return nil, parser.NewParseError(parser.StageDecode, errNoRegions)
	}
	return regions, nil
}

// loadBaseline returns the comparison regions. The payload is fetched until
// one attempt decodes, then kept; regions are rebuilt every cycle so party
// metadata follows the resolver. Failures only cost this cycle its second ring.
func (p *Poller) loadBaseline(ctx context.Context, log *zap.Logger) models.Regions {
	text := p.baseline
	if text == "" {
		var ok bool
		var err error
		text, ok, err = p.source.Baseline(ctx)
		if err != nil {
			log.Warn("baseline unavailable", zap.Error(err))
			return nil
		}
		if !ok {
			return nil
		}
	}

	regions, err := p.build(ctx, text)
	if err != nil {
		log.Warn("baseline could not be built", zap.Error(err))
		p.baseline = ""
		return nil
	}
	p.baseline = text
	return regions
}

// Start runs a cycle immediately and then every interval. Ticks that arrive
// while a cycle is still running are skipped.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	logger := cronLogger{p.logger.Sugar()}
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).
		Then(cron.FuncJob(func() { p.tick(ctx) }))

	p.cron = cron.New(cron.WithLogger(logger))
	p.cron.Schedule(cron.Every(p.interval), job)
	p.cron.Start()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		job.Run()
	}()

	p.started = true
	p.logger.Info("poller started", zap.Duration("interval", p.interval))
}

// Stop halts scheduling, cancels the running cycle and waits for it
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.cancel()
	<-p.cron.Stop().Done()
	p.wg.Wait()
	p.started = false
	p.logger.Info("poller stopped")
}

func (p *Poller) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	if _, err := p.RunOnce(ctx); err != nil {
		p.logger.Error("poll cycle failed, keeping previous snapshot", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
