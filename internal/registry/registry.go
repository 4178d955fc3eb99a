// Package registry owns the directory of live games: creation under a
// concurrency cap, lookup by id, explicit teardown, and garbage
// collection of finished games after a grace period so clients can
// still fetch the final standings.
package registry

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/feltlabs/holdemd/internal/engine"
	"github.com/feltlabs/holdemd/internal/gameid"
	"github.com/feltlabs/holdemd/internal/holdem"
	"github.com/feltlabs/holdemd/internal/llm"
	"github.com/feltlabs/holdemd/internal/metrics"
	"github.com/feltlabs/holdemd/internal/session"
)

const (
	// DefaultMaxGames caps concurrent sessions.
	DefaultMaxGames = 100

	// DefaultGracePeriod keeps a finished game queryable before it is
	// reaped.
	DefaultGracePeriod = 60 * time.Second
)

// ErrClosed rejects operations on a registry that is shutting down.
var ErrClosed = errors.New("registry closed")

// EngineFactory builds the rules engine for one game.
type EngineFactory func(players, buyin, smallBlind, bigBlind int, seed int64) engine.Engine

// Options configure a registry. Zero values take the defaults; Gateway
// may stay nil when no LLM seats will be configured.
type Options struct {
	MaxGames    int
	GracePeriod time.Duration
	Gateway     llm.Gateway
	Clock       quartz.Clock
	Logger      *log.Logger
	Metrics     *metrics.Metrics
	Engine      EngineFactory
	BusBuffer   int

	// LLMTimeout and HumanTimeout override the per-decision defaults
	// for games that do not set their own.
	LLMTimeout   time.Duration
	HumanTimeout time.Duration
}

// Registry is the live-game directory. Safe for concurrent use.
type Registry struct {
	opts   Options
	logger *log.Logger

	mu     sync.Mutex
	games  map[string]*session.Session
	reaps  map[string]*quartz.Timer
	closed bool
}

// New builds a registry. The default engine is the built-in hold'em
// table.
func New(opts Options) *Registry {
	if opts.MaxGames <= 0 {
		opts.MaxGames = DefaultMaxGames
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Engine == nil {
		opts.Engine = func(players, buyin, smallBlind, bigBlind int, seed int64) engine.Engine {
			return holdem.NewTable(players, buyin, smallBlind, bigBlind, seed)
		}
	}
	return &Registry{
		opts:   opts,
		logger: opts.Logger.WithPrefix("registry"),
		games:  make(map[string]*session.Session),
		reaps:  make(map[string]*quartz.Timer),
	}
}

// HasGateway reports whether LLM seats can be served.
func (r *Registry) HasGateway() bool { return r.opts.Gateway != nil }

// Create validates the config, mints an id and launches the session.
func (r *Registry) Create(cfg session.Config) (*session.Session, error) {
	if cfg.LLMTimeout == 0 {
		cfg.LLMTimeout = r.opts.LLMTimeout
	}
	if cfg.HumanTimeout == 0 {
		cfg.HumanTimeout = r.opts.HumanTimeout
	}
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = randomSeed()
	}

	id := gameid.New()
	eng := r.opts.Engine(cfg.MaxPlayers, cfg.Buyin, cfg.SmallBlind, cfg.BigBlind, cfg.Seed)
	sess, err := session.New(id, cfg, session.Deps{
		Engine:    eng,
		Gateway:   r.opts.Gateway,
		Clock:     r.opts.Clock,
		Logger:    r.opts.Logger,
		BusBuffer: r.opts.BusBuffer,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if len(r.games) >= r.opts.MaxGames {
		r.mu.Unlock()
		return nil, session.ErrOverloaded
	}
	r.games[id] = sess
	active := len(r.games)
	r.mu.Unlock()

	r.opts.Metrics.GamesCreated.Inc()
	r.opts.Metrics.GamesActive.Set(float64(active))
	r.logger.Info("game created", "game", id, "players", cfg.MaxPlayers, "max_hands", cfg.MaxHands)

	// Subscribe before the driver starts so the watcher sees the whole
	// event history.
	sub, err := sess.Subscribe()
	if err != nil {
		return nil, err
	}
	sess.Start()
	go r.watch(sess, sub)
	return sess, nil
}

// Get looks a live or recently finished game up.
func (r *Registry) Get(id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.games[id]
	if !ok {
		return nil, session.ErrGameNotFound
	}
	return sess, nil
}

// Delete ends a game and removes it immediately, skipping the grace
// period.
func (r *Registry) Delete(id string) ([]session.Ranking, error) {
	sess, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	rankings := sess.End()
	r.remove(id)
	r.logger.Info("game deleted", "game", id)
	return rankings, nil
}

// List returns the live sessions in id order.
func (r *Registry) List() []*session.Session {
	r.mu.Lock()
	out := make([]*session.Session, 0, len(r.games))
	for _, sess := range r.games {
		out = append(out, sess)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len reports the number of games counted against the cap.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

// Close ends every game and rejects further creation.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := make([]*session.Session, 0, len(r.games))
	for _, sess := range r.games {
		sessions = append(sessions, sess)
	}
	timers := make([]*quartz.Timer, 0, len(r.reaps))
	for _, tm := range r.reaps {
		timers = append(timers, tm)
	}
	r.games = make(map[string]*session.Session)
	r.reaps = make(map[string]*quartz.Timer)
	r.mu.Unlock()

	for _, tm := range timers {
		tm.Stop()
	}
	for _, sess := range sessions {
		sess.End()
	}
	r.opts.Metrics.GamesActive.Set(0)
	r.logger.Info("registry closed", "games_ended", len(sessions))
}

// watch follows one session's event stream, feeding the counters, and
// schedules the reap once the stream ends.
func (r *Registry) watch(sess *session.Session, sub *session.Subscription) {
	lastHand := 0
	for ev := range sub.C() {
		switch ev.Kind {
		case session.EventStateUpdate:
			if hn := ev.State.HandNumber; hn > lastHand {
				r.opts.Metrics.HandsPlayed.Add(float64(hn - lastHand))
				lastHand = hn
			}
		case session.EventActionApplied:
			r.opts.Metrics.ActionsApplied.WithLabelValues(ev.Action.Kind).Inc()
		case session.EventError:
			r.opts.Metrics.Diagnostics.WithLabelValues(ev.ErrKind).Inc()
		}
	}

	if sess.Status() == session.StatusError {
		r.opts.Metrics.GamesFailed.Inc()
	}
	if n := sess.DroppedEvents(); n > 0 {
		r.opts.Metrics.EventsDropped.Add(float64(n))
	}

	id := sess.ID()
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if _, live := r.games[id]; !live {
		// Explicitly deleted while we were draining.
		r.mu.Unlock()
		return
	}
	r.reaps[id] = r.opts.Clock.AfterFunc(r.opts.GracePeriod, func() {
		r.remove(id)
		r.logger.Info("game reaped", "game", id)
	})
	r.mu.Unlock()
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	if tm, ok := r.reaps[id]; ok {
		tm.Stop()
		delete(r.reaps, id)
	}
	delete(r.games, id)
	active := len(r.games)
	r.mu.Unlock()
	r.opts.Metrics.GamesActive.Set(float64(active))
}

func randomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("registry: reading entropy: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
