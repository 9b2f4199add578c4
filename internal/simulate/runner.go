package simulate

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/rng"
	"github.com/okian/tierlist/pkg/logger"
)

// Run checks the service is healthy, then drives cfg.Sessions sessions with
// cfg.Workers in flight. It returns ErrFailed when any session failed.
func Run(ctx context.Context, cfg Config) (Report, error) {
	cfg = withDefaults(cfg)
	log := logger.Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout, stats)

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Int("comparisons", cfg.Comparisons),
		logger.Int64("seed", cfg.Seed))

	if err := c.health(ctx); err != nil {
		return Report{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for n := range cfg.Sessions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			stats.SessionsStarted.Add(1)
			err := drive(gctx, c, cfg, n, stats)
			if err != nil {
				stats.SessionsFailed.Add(1)
				log.Error(gctx, "session failed", logger.Int("session", n), logger.Error(err))
				// only a cancelled run stops the group
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			stats.SessionsVerified.Add(1)
			if cfg.Verbose {
				log.Debug(gctx, "session verified", logger.Int("session", n))
			}
			return nil
		})
	}
	groupErr := g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	rep := stats.report()
	displayFinalStats(ctx, log, rep)

	if groupErr != nil {
		return rep, groupErr
	}
	if rep.SessionsFailed > 0 {
		return rep, fmt.Errorf("%w: %d of %d", ErrFailed, rep.SessionsFailed, rep.SessionsStarted)
	}
	log.Info(ctx, "simulation completed successfully")
	return rep, nil
}

func withDefaults(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Sessions <= 0 {
		cfg.Sessions = DefaultSessions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	if cfg.Comparisons < 0 {
		cfg.Comparisons = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// drive runs one session through randomize, replay, undo, head-to-head,
// finish and undo, checking conservation after every step.
func drive(ctx context.Context, c *client, cfg Config, n int, stats *Stats) error {
	var src rng.Source
	var seed int64
	if cfg.Seed != 0 {
		seed = cfg.Seed + int64(n)
		src = rng.NewLehmer(seed)
	} else {
		src = rng.System()
	}

	st, err := c.create(ctx, cfg.Group, seed)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	id := st.ID
	defer func() {
		// best effort, the session is only needed for the run
		_ = c.remove(context.WithoutCancel(ctx), id)
	}()

	want := ids(st)
	check := func(step string, st state) error {
		if err := conserved(st, want); err != nil {
			stats.ConservationFails.Add(1)
			return fmt.Errorf("%s: %w", step, err)
		}
		return nil
	}

	st, err = c.action(ctx, id, "randomize", "randomize")
	if err != nil {
		return fmt.Errorf("randomize: %w", err)
	}
	if err := check("randomize", st); err != nil {
		return err
	}
	if st.UnrankedRemaining != 0 {
		return fmt.Errorf("randomize: %w: %d left unranked", ErrConservation, st.UnrankedRemaining)
	}

	replay, err := c.action(ctx, id, "randomize", "randomize")
	if err != nil {
		return fmt.Errorf("randomize replay: %w", err)
	}
	if !replay.Duplicate {
		return fmt.Errorf("randomize replay: %w", ErrNoReplay)
	}
	stats.DuplicateReplays.Add(1)
	if err := check("randomize replay", replay); err != nil {
		return err
	}

	st, err = c.action(ctx, id, "undo", "")
	if err != nil {
		return fmt.Errorf("undo randomize: %w", err)
	}
	if err := check("undo randomize", st); err != nil {
		return err
	}
	if st.UnrankedRemaining != len(want) {
		return fmt.Errorf("undo randomize: %w: %d unranked, want %d", ErrConservation, st.UnrankedRemaining, len(want))
	}

	h, err := c.h2h(ctx, id, "start", "", nil)
	if err != nil {
		return fmt.Errorf("h2h start: %w", err)
	}
	for i := 0; i < cfg.Comparisons && h.Pair != nil; i++ {
		winner := h.Pair.Left.ID
		if rng.Index(src, 2) == 1 {
			winner = h.Pair.Right.ID
		}
		h, err = c.choose(ctx, id, fmt.Sprintf("choose-%d", i), winner)
		if err != nil {
			return fmt.Errorf("h2h choose %d: %w", i, err)
		}
		stats.Comparisons.Add(1)
	}

	st, err = c.action(ctx, id, "h2h/finish", "")
	if err != nil {
		return fmt.Errorf("h2h finish: %w", err)
	}
	if err := check("h2h finish", st); err != nil {
		return err
	}

	st, err = c.action(ctx, id, "undo", "")
	if err != nil {
		return fmt.Errorf("undo finish: %w", err)
	}
	if err := check("undo finish", st); err != nil {
		return err
	}

	st, err = c.session(ctx, id)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	return check("final", st)
}

func ids(st state) map[string]struct{} {
	out := make(map[string]struct{}, st.Tiers.Count())
	for _, list := range st.Tiers {
		for _, c := range list {
			out[c.ID] = struct{}{}
		}
	}
	return out
}

// conserved reports whether st holds exactly the contestants in want, each
// once, in known buckets.
func conserved(st state, want map[string]struct{}) error {
	known := make(map[string]struct{}, len(st.Buckets)+1)
	known[model.Unranked] = struct{}{}
	for _, b := range st.Buckets {
		known[b] = struct{}{}
	}

	seen := make(map[string]struct{}, len(want))
	for bucket, list := range st.Tiers {
		if _, ok := known[bucket]; !ok && len(list) > 0 {
			return fmt.Errorf("%w: contestants in unknown bucket %q", ErrConservation, bucket)
		}
		for _, c := range list {
			if _, ok := seen[c.ID]; ok {
				return fmt.Errorf("%w: %s appears twice", ErrConservation, c.ID)
			}
			if _, ok := want[c.ID]; !ok {
				return fmt.Errorf("%w: unexpected contestant %s", ErrConservation, c.ID)
			}
			seen[c.ID] = struct{}{}
		}
	}
	if len(seen) != len(want) {
		return fmt.Errorf("%w: have %d contestants, want %d", ErrConservation, len(seen), len(want))
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, rep Report) {
	var successRate, requestsPerSecond float64
	if rep.SessionsStarted > 0 {
		successRate = float64(rep.SessionsVerified) / float64(rep.SessionsStarted) * PercentageMultiplier
	}
	if rep.Duration > 0 {
		requestsPerSecond = float64(rep.Requests) / rep.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int64("sessionsStarted", rep.SessionsStarted),
		logger.Int64("sessionsVerified", rep.SessionsVerified),
		logger.Int64("sessionsFailed", rep.SessionsFailed),
		logger.Int64("requests", rep.Requests),
		logger.Int64("comparisons", rep.Comparisons),
		logger.Int64("duplicateReplays", rep.DuplicateReplays),
		logger.Int64("conservationFails", rep.ConservationFails),
		logger.String("duration", rep.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
