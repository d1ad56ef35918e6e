package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/domain"
	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/repository"
)

// ---- Fakes ----

type memFactRepo struct {
	mu      sync.Mutex
	records map[string]*model.FactCheck

	errFind error
	errMark error
}

func newMemFactRepo() *memFactRepo {
	return &memFactRepo{records: map[string]*model.FactCheck{}}
}

func (m *memFactRepo) Find(ctx context.Context, tx repository.Tx, url string) (*model.FactCheck, error) {
	if m.errFind != nil {
		return nil, m.errFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fc, ok := m.records[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *fc
	cp.Facts = append([]model.CheckedFact(nil), fc.Facts...)
	if fc.Facts == nil {
		cp.Facts = nil
	}
	return &cp, nil
}

func (m *memFactRepo) MarkPending(ctx context.Context, tx repository.Tx, url string) (bool, error) {
	if m.errMark != nil {
		return false, m.errMark
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[url]; exists {
		return false, nil
	}
	m.records[url] = &model.FactCheck{
		URL:       url,
		Status:    model.FactCheckStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return true, nil
}

func (m *memFactRepo) SaveResults(ctx context.Context, tx repository.Tx, url string, facts []model.CheckedFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fc, ok := m.records[url]
	if !ok {
		return domain.ErrNoRecord
	}
	if facts == nil {
		facts = []model.CheckedFact{}
	}
	fc.Status = model.FactCheckStatusDone
	fc.Facts = facts
	fc.UpdatedAt = time.Now()
	return nil
}

// fakeRunner emulates the pipeline: it writes a terminal result for every
// run, like the real runner guarantees.
type fakeRunner struct {
	mu    sync.Mutex
	runs  []string
	repo  *memFactRepo
	facts []model.CheckedFact
	fail  bool
}

func (f *fakeRunner) Run(ctx context.Context, url string) {
	f.mu.Lock()
	f.runs = append(f.runs, url)
	f.mu.Unlock()
	facts := f.facts
	if f.fail {
		facts = []model.CheckedFact{}
	}
	_ = f.repo.SaveResults(ctx, nil, url, facts)
}

func (f *fakeRunner) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

// manualDispatcher queues tasks so tests control when the pipeline "runs".
type manualDispatcher struct {
	mu    sync.Mutex
	tasks []func(ctx context.Context)
}

func (d *manualDispatcher) Dispatch(task func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
}

func (d *manualDispatcher) drain() {
	d.mu.Lock()
	tasks := d.tasks
	d.tasks = nil
	d.mu.Unlock()
	for _, task := range tasks {
		task(context.Background())
	}
}

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func newUC(repo *memFactRepo, runner *fakeRunner, disp Dispatcher) *factCheckUC {
	return NewFactCheckUseCase(repo, nil, runner, disp, newLogger())
}

const pageURL = "https://a.example.com/article"

var sampleFacts = []model.CheckedFact{
	{
		Text:         "X",
		Truthfulness: model.VerdictTrue,
		Summary:      "well supported",
		Sources:      []model.Source{},
	},
}

// ---- Tests ----

func TestSubmit_FreshURLStartsPipeline(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	uc := newUC(repo, runner, disp)

	out, err := uc.Submit(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Status != StatusStarted {
		t.Fatalf("want started, got %s", out.Status)
	}

	// Record is pending with no results yet.
	fc, err := repo.Find(context.Background(), nil, pageURL)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if fc.Done() || fc.Facts != nil {
		t.Fatalf("record should be pending without facts: %+v", fc)
	}
}

func TestSubmit_DuplicateWhilePendingIsNoOp(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	uc := newUC(repo, runner, disp)

	if _, err := uc.Submit(context.Background(), pageURL); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	for i := 0; i < 3; i++ {
		out, err := uc.Submit(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("repeat submit: %v", err)
		}
		if out.Status != StatusInProgress {
			t.Fatalf("want in_progress, got %s", out.Status)
		}
	}

	disp.drain()
	if got := runner.runCount(); got != 1 {
		t.Fatalf("pipeline dispatched %d times, want 1", got)
	}
}

func TestSubmit_CompletedURLReturnsStoredResult(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	uc := newUC(repo, runner, disp)

	if _, err := uc.Submit(context.Background(), pageURL); err != nil {
		t.Fatalf("submit: %v", err)
	}
	disp.drain()

	for i := 0; i < 3; i++ {
		out, err := uc.Submit(context.Background(), pageURL)
		if err != nil {
			t.Fatalf("submit after done: %v", err)
		}
		if out.Status != StatusComplete {
			t.Fatalf("want complete, got %s", out.Status)
		}
		if len(out.Facts) != 1 || out.Facts[0].Text != "X" || out.Facts[0].Truthfulness != model.VerdictTrue {
			t.Fatalf("stored facts mismatch: %+v", out.Facts)
		}
	}
	// Completion never re-runs the pipeline.
	disp.drain()
	if got := runner.runCount(); got != 1 {
		t.Fatalf("pipeline ran %d times, want 1", got)
	}
}

func TestSubmit_FailedPipelineStillTerminatesWithEmptyResult(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, fail: true}
	uc := newUC(repo, runner, disp)

	if _, err := uc.Submit(context.Background(), pageURL); err != nil {
		t.Fatalf("submit: %v", err)
	}
	disp.drain()

	out, err := uc.Submit(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("submit after failure: %v", err)
	}
	if out.Status != StatusComplete {
		t.Fatalf("want complete, got %s", out.Status)
	}
	if out.Facts == nil || len(out.Facts) != 0 {
		t.Fatalf("want empty (non-nil) facts, got %#v", out.Facts)
	}
}

func TestSubmit_InvalidURLs(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo}
	uc := newUC(repo, runner, disp)

	for _, bad := range []string{"", "   ", "notaurl", "ftp://example.com/x", "/relative/path"} {
		if _, err := uc.Submit(context.Background(), bad); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Submit(%q): want ErrInvalidArgument, got %v", bad, err)
		}
	}
	if got := runner.runCount(); got != 0 {
		t.Fatalf("pipeline ran for invalid input")
	}
}

func TestSubmit_StoreFailurePropagates(t *testing.T) {
	repo := newMemFactRepo()
	repo.errFind = errors.New("connection refused")
	disp := &manualDispatcher{}
	uc := newUC(repo, &fakeRunner{repo: repo}, disp)

	if _, err := uc.Submit(context.Background(), pageURL); err == nil {
		t.Fatal("want store error, got nil")
	}
	if len(disp.tasks) != 0 {
		t.Fatal("nothing should be dispatched when the store is down")
	}
}

func TestSubmit_MarkPendingFailureReleasesReservation(t *testing.T) {
	repo := newMemFactRepo()
	repo.errMark = errors.New("write failed")
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	uc := newUC(repo, runner, disp)

	if _, err := uc.Submit(context.Background(), pageURL); err == nil {
		t.Fatal("want error from MarkPending")
	}

	// After the store recovers, the same URL can be claimed again.
	repo.errMark = nil
	out, err := uc.Submit(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("recovered submit: %v", err)
	}
	if out.Status != StatusStarted {
		t.Fatalf("want started after recovery, got %s", out.Status)
	}
}

func TestSubmit_ConcurrentSubmissionsDispatchOnce(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	uc := newUC(repo, runner, disp)

	var wg sync.WaitGroup
	started := make(chan SubmitStatus, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := uc.Submit(context.Background(), pageURL)
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			started <- out.Status
		}()
	}
	wg.Wait()
	close(started)

	var startedCount int
	for st := range started {
		if st == StatusStarted {
			startedCount++
		}
	}
	if startedCount != 1 {
		t.Fatalf("%d callers saw 'started', want exactly 1", startedCount)
	}
	disp.drain()
	if got := runner.runCount(); got != 1 {
		t.Fatalf("pipeline ran %d times, want 1", got)
	}
}

func TestGet_NeverDispatches(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	uc := newUC(repo, runner, disp)

	if _, err := uc.Get(context.Background(), pageURL); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("want ErrNotFound for unsubmitted URL")
	}
	if len(disp.tasks) != 0 || runner.runCount() != 0 {
		t.Fatal("Get must not dispatch work")
	}

	if _, err := uc.Submit(context.Background(), pageURL); err != nil {
		t.Fatalf("submit: %v", err)
	}
	out, err := uc.Get(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Status != StatusInProgress {
		t.Fatalf("want in_progress, got %s", out.Status)
	}

	disp.drain()
	out, err = uc.Get(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("get after done: %v", err)
	}
	if out.Status != StatusComplete || len(out.Facts) != 1 {
		t.Fatalf("want complete with one fact, got %+v", out)
	}
}

// fakeCache records lookups so cache short-circuiting is observable.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]model.CheckedFact
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, url string) ([]model.CheckedFact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	facts, ok := c.store[url]
	if ok {
		c.hits++
	}
	return facts, ok
}

func (c *fakeCache) Set(ctx context.Context, url string, facts []model.CheckedFact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[url] = facts
}

func TestSubmit_ResultCacheShortCircuitsStore(t *testing.T) {
	repo := newMemFactRepo()
	disp := &manualDispatcher{}
	runner := &fakeRunner{repo: repo, facts: sampleFacts}
	cache := &fakeCache{store: map[string][]model.CheckedFact{}}
	uc := NewFactCheckUseCase(repo, cache, runner, disp, newLogger())

	if _, err := uc.Submit(context.Background(), pageURL); err != nil {
		t.Fatalf("submit: %v", err)
	}
	disp.drain()

	// First post-completion submit populates the cache from the store.
	if _, err := uc.Submit(context.Background(), pageURL); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Break the store; the cached copy must still answer.
	repo.errFind = errors.New("store down")
	out, err := uc.Submit(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("cached submit: %v", err)
	}
	if out.Status != StatusComplete || len(out.Facts) != 1 {
		t.Fatalf("cached outcome mismatch: %+v", out)
	}
	if cache.hits == 0 {
		t.Fatal("expected at least one cache hit")
	}
}
