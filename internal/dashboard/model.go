// Package dashboard is the role-scoped view model behind every dashboard
// screen.
//
// The Model tracks the active view for the signed-in role and the three
// collections the views render (complaints, workers, stats). Selecting a
// view runs that view's fetch plan; each selection opens a new generation
// and cancels the previous one, and results that arrive for a superseded
// generation are dropped. Mutations (status update, assignment) refresh
// complaints and stats exactly once on success.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"roadfix/internal/complaint"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/notify"
	"roadfix/internal/role"
)

// ErrViewNotPermitted is returned when a view does not belong to the
// signed-in role, or nobody is signed in.
var ErrViewNotPermitted = errors.New("view not permitted for role")

// ErrActionNotPermitted is returned when a role may not perform a mutation.
var ErrActionNotPermitted = errors.New("action not permitted for role")

// API is the part of the API client the view model uses.
type API interface {
	ListComplaints(ctx context.Context) ([]complaint.Complaint, error)
	ListWorkers(ctx context.Context) ([]complaint.Worker, error)
	GetStats(ctx context.Context) (*complaint.Stats, error)
	UpdateComplaintStatus(ctx context.Context, id complaint.ID, status complaint.Status) error
	AssignComplaint(ctx context.Context, id, workerID complaint.ID) error
}

// Notifier surfaces mutation outcomes.
type Notifier interface {
	Success(message string) notify.ID
	Error(message string) notify.ID
}

// Recorder receives the outcome of every fetch plan (the status bar's
// sync monitor).
type Recorder interface {
	RecordSuccess()
	RecordFailure(err error)
}

// Slice is one fetched collection with its load state.
type Slice[T any] struct {
	Data      T
	Loading   bool
	Err       error
	FetchedAt time.Time
}

// Snapshot is an immutable copy of the model for rendering.
type Snapshot struct {
	Role       role.Role
	View       role.View
	Complaints Slice[[]complaint.Complaint]
	Workers    Slice[[]complaint.Worker]
	Stats      Slice[*complaint.Stats]
}

// Model is the dashboard view model.
//
// Thread-safety:
//   - All methods are safe for concurrent use; fetches run on their own
//     goroutines and write back under the model lock
type Model struct {
	api      API
	notes    Notifier
	recorder Recorder
	debounce time.Duration
	now      func() time.Time

	mu         sync.Mutex
	role       role.Role
	view       role.View
	gen        uint64
	cancel     context.CancelFunc
	lastBegin  time.Time
	complaints Slice[[]complaint.Complaint]
	workers    Slice[[]complaint.Worker]
	stats      Slice[*complaint.Stats]
}

// Option configures a Model.
type Option func(*Model)

// WithDebounce coalesces repeated selections of the active view made
// within d of each other.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// WithRecorder reports fetch outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(m *Model) { m.recorder = r }
}

// New creates a model with no role. Call Reset after login.
func New(api API, notes Notifier, opts ...Option) *Model {
	m := &Model{api: api, notes: notes, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reset switches the model to r (nil on logout): in-flight fetches are
// cancelled, collections cleared and the view set to r's default.
func (m *Model) Reset(r role.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	m.role = r
	m.view = nil
	if r != nil {
		m.view = r.DefaultView()
	}
	m.lastBegin = time.Time{}
	m.complaints = Slice[[]complaint.Complaint]{}
	m.workers = Slice[[]complaint.Worker]{}
	m.stats = Slice[*complaint.Stats]{}
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Role:       m.role,
		View:       m.view,
		Complaints: m.complaints,
		Workers:    m.workers,
		Stats:      m.stats,
	}
}

// View returns the active view.
func (m *Model) View() role.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Filtered returns the complaints the active view lists.
func (m *Model) Filtered() []complaint.Complaint {
	return m.Snapshot().Visible()
}

// Fetch is a started view selection whose requests have not run yet.
type Fetch struct {
	m      *Model
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	plan   Plan
	view   role.View

	// Coalesced is true when the selection repeated the active view
	// inside the debounce window and nothing will be fetched.
	Coalesced bool
}

// Plan returns what Run will load.
func (f *Fetch) Plan() Plan {
	return f.plan
}

// Begin activates v and prepares its fetch plan.
//
// The view switch is visible to Snapshot immediately; Run performs the
// requests. Calling Begin again before Run finishes cancels this fetch.
//
// Returns ErrViewNotPermitted (wrapped) if v is not one of the role's
// views; the active view is then unchanged.
func (m *Model) Begin(ctx context.Context, v role.View) (*Fetch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !role.Permits(m.role, v) {
		kind := "anonymous"
		if m.role != nil {
			kind = string(m.role.Kind())
		}
		tag := "<nil>"
		if v != nil {
			tag = string(v.Owner()) + "/" + v.Tag()
		}
		return nil, fmt.Errorf("%w: %s cannot open %s", ErrViewNotPermitted, kind, tag)
	}

	now := m.now()
	if m.debounce > 0 && v == m.view && !m.lastBegin.IsZero() && now.Sub(m.lastBegin) < m.debounce {
		log.Printf("  ↷ Coalescing repeated %s fetch\n", v.Tag())
		return &Fetch{m: m, ctx: ctx, cancel: func() {}, gen: m.gen, view: v, Coalesced: true}, nil
	}

	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	m.view = v
	m.lastBegin = now

	fctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	plan := PlanFor(v)
	m.complaints.Loading = plan.Has(FetchComplaints)
	m.workers.Loading = plan.Has(FetchWorkers)
	m.stats.Loading = plan.Has(FetchStats)

	return &Fetch{m: m, ctx: fctx, cancel: cancel, gen: m.gen, plan: plan, view: v}, nil
}

// Run performs the fetch plan, requests in parallel.
//
// Failures are logged and stored on the affected collection. Run only
// returns an error when the server rejected the session token
// (*errors.SessionExpiredError); a superseded fetch returns nil.
func (f *Fetch) Run() error {
	defer f.cancel()
	if f.plan.Empty() {
		return nil
	}
	log.Printf("  → Loading %s for %s view\n", f.plan, f.view.Tag())
	return f.m.load(f.ctx, f.gen, f.plan)
}

// SelectView activates v and loads its data. It blocks until the fetch
// plan completes; the TUI splits it into Begin and Run instead.
func (m *Model) SelectView(ctx context.Context, v role.View) error {
	f, err := m.Begin(ctx, v)
	if err != nil {
		return err
	}
	return f.Run()
}

// Refresh reloads the active view's collections without starting a new
// generation.
func (m *Model) Refresh(ctx context.Context) error {
	m.mu.Lock()
	gen, view := m.gen, m.view
	m.mu.Unlock()
	if view == nil {
		return nil
	}
	return m.load(ctx, gen, PlanFor(view))
}

// load runs plan for generation gen and applies results that are still
// current.
func (m *Model) load(ctx context.Context, gen uint64, plan Plan) error {
	var g errgroup.Group
	var failed error
	var failMu sync.Mutex

	record := func(what string, err error) error {
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("  ✗ Failed to load %s: %v\n", what, err)
		failMu.Lock()
		if failed == nil {
			failed = err
		}
		failMu.Unlock()
		if apperrors.IsUnauthorized(err) {
			return apperrors.NewSessionExpiredError(err.Error())
		}
		return nil
	}

	if plan.Has(FetchComplaints) {
		g.Go(func() error {
			list, err := m.api.ListComplaints(ctx)
			m.apply(ctx, gen, func() {
				m.complaints = settle(m.complaints, list, err, m.now())
			})
			return record("complaints", err)
		})
	}
	if plan.Has(FetchWorkers) {
		g.Go(func() error {
			workers, err := m.api.ListWorkers(ctx)
			m.apply(ctx, gen, func() {
				m.workers = settle(m.workers, workers, err, m.now())
			})
			return record("workers", err)
		})
	}
	if plan.Has(FetchStats) {
		g.Go(func() error {
			stats, err := m.api.GetStats(ctx)
			m.apply(ctx, gen, func() {
				m.stats = settle(m.stats, stats, err, m.now())
			})
			return record("stats", err)
		})
	}

	err := g.Wait()

	if ctx.Err() == nil && m.current(gen) && m.recorder != nil {
		if failed != nil {
			m.recorder.RecordFailure(failed)
		} else {
			m.recorder.RecordSuccess()
		}
	}
	return err
}

// apply runs fn under the lock if the fetch was not cancelled and gen is
// still current.
func (m *Model) apply(ctx context.Context, gen uint64, fn func()) {
	if ctx.Err() != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		log.Printf("  ↷ Discarding stale result (generation %d, current %d)\n", gen, m.gen)
		return
	}
	fn()
}

func (m *Model) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen
}

// settle folds a fetch result into a slice. A failed fetch keeps the
// previous data so the screen does not go blank.
func settle[T any](s Slice[T], data T, err error, now time.Time) Slice[T] {
	s.Loading = false
	if err != nil {
		s.Err = err
		return s
	}
	s.Data = data
	s.Err = nil
	s.FetchedAt = now
	return s
}
