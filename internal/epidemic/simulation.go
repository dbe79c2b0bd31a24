// Package epidemic advances the whole simulation one generation at a time.
//
// A generation is always move, then infect, then recover: the movement
// resolver settles every agent, the infection engine reads the new
// adjacency, and the recovery calendar promotes agents that have been sick
// for longer than the horizon. Observers read state only between
// generations, through Stats and Snapshot.
package epidemic

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shaigundersen/CoronaSimulator/internal/config"
	"github.com/shaigundersen/CoronaSimulator/internal/grid"
	"github.com/shaigundersen/CoronaSimulator/internal/infection"
	"github.com/shaigundersen/CoronaSimulator/internal/logging"
	"github.com/shaigundersen/CoronaSimulator/internal/models"
	"github.com/shaigundersen/CoronaSimulator/internal/movement"
	"github.com/shaigundersen/CoronaSimulator/internal/recovery"
)

// Simulation owns the grid, the population and the recovery calendar.
// It is not safe for concurrent use.
type Simulation struct {
	cfg config.SimConfig

	grid     *grid.Grid
	agents   []models.Agent
	calendar *recovery.Calendar

	resolver  *movement.Resolver
	infection *infection.Engine

	generation int
	infected   int
	last       Stats

	logger *slog.Logger
	events *logging.EventLogger
}

// Option customizes a Simulation at construction.
type Option func(*options)

type options struct {
	selector  movement.Selector
	logger    *slog.Logger
	events    *logging.EventLogger
	placement []Seed
}

// WithSelector replaces the uniform random movement strategy.
func WithSelector(sel movement.Selector) Option {
	return func(o *options) { o.selector = sel }
}

// WithLogger sets the operational logger. Per-generation summaries go out
// at debug level, single transmissions at trace level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventLogger sets the JSONL event trace. A nil logger disables it.
func WithEventLogger(el *logging.EventLogger) Option {
	return func(o *options) { o.events = el }
}

// WithPlacement seeds the population explicitly instead of drawing it from
// the configured fractions. Creatures, SickFraction and FastFraction are
// ignored when set.
func WithPlacement(seeds []Seed) Option {
	return func(o *options) { o.placement = seeds }
}

// NewRand returns a random source for seed, or a time-based one for 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// New validates cfg, builds the grid and seeds the population. rng drives
// every random decision of the run; nil falls back to NewRand(cfg.Seed).
func New(cfg config.SimConfig, rng *rand.Rand, opts ...Option) (*Simulation, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	if o.placement != nil {
		cfg.Creatures = len(o.placement)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := grid.New(cfg.Dimension)
	if err != nil {
		return nil, err
	}

	var agents []models.Agent
	if o.placement != nil {
		agents, err = placeSeeds(g, o.placement)
	} else {
		agents, err = seedRandom(g, &cfg, rng)
	}
	if err != nil {
		return nil, err
	}

	cal := recovery.New(len(agents), cfg.RecoveryHorizon)
	infected := 0
	for i := range agents {
		if agents[i].IsInfected() {
			cal.Add(i, agents[i].InfectedSince)
			infected++
		}
	}

	if o.selector == nil {
		o.selector = movement.NewUniformSelector(rng)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	s := &Simulation{
		cfg:      cfg,
		grid:     g,
		agents:   agents,
		calendar: cal,
		resolver: movement.NewResolver(o.selector),
		infection: infection.NewEngine(infection.Config{
			LowProb:   cfg.LowInfectionProb,
			HighProb:  cfg.HighInfectionProb,
			Threshold: cfg.DensityThreshold,
		}, rng),
		infected: infected,
		logger:   o.logger,
		events:   o.events,
	}
	s.last = s.stats()

	s.logger.Debug("simulation seeded",
		"dimension", cfg.Dimension,
		"creatures", len(agents),
		"infected", infected,
		"horizon", cfg.RecoveryHorizon,
		"max_retries", s.resolver.MaxRetries())

	return s, nil
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() config.SimConfig {
	return s.cfg
}

// Generation returns the number of completed generations.
func (s *Simulation) Generation() int {
	return s.generation
}

// Population returns the number of agents.
func (s *Simulation) Population() int {
	return len(s.agents)
}

// InfectedFraction returns the share of the population currently infected.
func (s *Simulation) InfectedFraction() float64 {
	if len(s.agents) == 0 {
		return 0
	}
	return float64(s.infected) / float64(len(s.agents))
}

// Done reports whether no agent is infected. The simulation never stops on
// its own; drivers poll this.
func (s *Simulation) Done() bool {
	return s.infected == 0
}

// Agent returns a copy of agent id.
func (s *Simulation) Agent(id int) models.Agent {
	return s.agents[id]
}

// Last returns the stats of the most recent generation.
func (s *Simulation) Last() Stats {
	return s.last
}

// Tick runs one generation: move, infect, recover.
func (s *Simulation) Tick() Stats {
	s.generation++
	gen := s.generation

	moves := s.resolver.Resolve(s.grid, s.agents)

	transmissions := s.infection.Spread(s.grid, s.agents, s.calendar, gen)
	s.infected += len(transmissions)
	for _, tr := range transmissions {
		s.events.Transmission(gen, tr.From, tr.To, tr.Pos.Row, tr.Pos.Col, tr.Prob)
		if s.logger.Enabled(context.Background(), logging.LevelTrace) {
			s.logger.Log(context.Background(), logging.LevelTrace, "transmission",
				"generation", gen, "from", tr.From, "to", tr.To, "pos", tr.Pos.String(), "prob", tr.Prob)
		}
	}

	recovered := s.calendar.Advance(gen)
	for _, id := range recovered {
		s.agents[id].Recover()
		s.events.Recovery(gen, id)
	}
	s.infected -= len(recovered)

	st := s.stats()
	st.Moved = moves.Moved
	st.Collisions = moves.Collisions
	st.Fallbacks = moves.Fallbacks
	st.NewInfections = len(transmissions)
	st.Recovered = len(recovered)
	s.last = st

	s.events.Generation(gen, st.Susceptible, st.Infected, st.Immune, st.InfectedFraction)
	s.logger.Debug("generation complete",
		"generation", gen,
		"moved", st.Moved,
		"collisions", st.Collisions,
		"new_infections", st.NewInfections,
		"recovered", st.Recovered,
		"infected_fraction", st.InfectedFraction)

	return st
}

// Run ticks until Done, until limit generations have completed (0 means no
// limit), or until ctx is cancelled. ctx is only checked between
// generations. fn, if non-nil, sees every generation's stats; a non-nil
// error from it stops the run and is returned.
func (s *Simulation) Run(ctx context.Context, limit int, fn func(Stats) error) error {
	for !s.Done() && (limit == 0 || s.generation < limit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		st := s.Tick()
		if fn == nil {
			continue
		}
		if err := fn(st); err != nil {
			return err
		}
	}
	return nil
}
