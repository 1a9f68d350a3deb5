package server

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/withoutx/internal/game"
	"github.com/lox/withoutx/internal/randutil"
	"github.com/lox/withoutx/internal/roomcode"
)

// Registry maps room codes to running room actors.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*RoomActor

	rng         *rand.Rand
	codes       *roomcode.Generator
	clock       quartz.Clock
	idleTimeout time.Duration
	logger      *log.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSeed makes every room deal reproducibly from seed.
func WithSeed(seed int64) RegistryOption {
	return func(r *Registry) {
		r.rng = randutil.New(seed)
	}
}

// WithRegistryClock sets the clock used for idle tracking.
func WithRegistryClock(clock quartz.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithIdleTimeout evicts rooms that had no live connection for d. Zero
// keeps rooms forever.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idleTimeout = d
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:  make(map[string]*RoomActor),
		clock:  quartz.NewReal(),
		logger: logger.WithPrefix("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = randutil.NewFromTime()
	}
	r.codes = roomcode.NewGenerator(randutil.Derive(r.rng))
	return r
}

// GetOrCreate returns the actor for code, starting a new room when the code
// is unseen. created reports which happened.
func (r *Registry) GetOrCreate(code string) (actor *RoomActor, created bool, err error) {
	code = roomcode.Normalize(code)
	if err := roomcode.Validate(code); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidRoom, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.rooms[code]; ok {
		return a, false, nil
	}
	return r.createLocked(code), true, nil
}

// Create starts a room under a fresh generated code.
func (r *Registry) Create() *RoomActor {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		code := r.codes.Generate()
		if _, taken := r.rooms[code]; !taken {
			return r.createLocked(code)
		}
	}
}

func (r *Registry) createLocked(code string) *RoomActor {
	room := game.NewRoom(code,
		game.WithLogger(r.logger),
		game.WithRand(randutil.Derive(r.rng)),
	)
	a := NewRoomActor(room, r.clock, r.logger)
	r.rooms[code] = a
	r.logger.Info("Room created", "room", code, "rooms", len(r.rooms))
	return a
}

// Get looks a room up without creating it.
func (r *Registry) Get(code string) (*RoomActor, error) {
	code = roomcode.Normalize(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return a, nil
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *Registry) actors() []*RoomActor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*RoomActor, 0, len(r.rooms))
	for _, a := range r.rooms {
		out = append(out, a)
	}
	return out
}

// List returns a summary of every room, ordered by code.
func (r *Registry) List(ctx context.Context) ([]game.Summary, error) {
	actors := r.actors()
	out := make([]game.Summary, 0, len(actors))
	for _, a := range actors {
		s, err := a.Summary(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Sweep evicts rooms idle for at least the idle timeout and returns how
// many it removed.
func (r *Registry) Sweep() int {
	if r.idleTimeout <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for code, a := range r.rooms {
		if idle := a.IdleFor(); idle >= r.idleTimeout {
			a.Stop()
			delete(r.rooms, code)
			removed++
			r.logger.Info("Room evicted", "room", code, "idle", idle)
		}
	}
	return removed
}

// RunSweeper sweeps idle rooms until ctx is cancelled. It returns
// immediately when eviction is disabled.
func (r *Registry) RunSweeper(ctx context.Context) error {
	if r.idleTimeout <= 0 {
		return nil
	}

	interval := r.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := r.clock.NewTicker(interval, "registry", "sweep")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops every room.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, a := range r.rooms {
		a.Stop()
		delete(r.rooms, code)
	}
}
