package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
)

// ─── Users ──────────────────────────────────────────────────────────

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[int]*model.User
	nextID  int
	erased  []int
	deleted []int
	logins  map[int]time.Time
	calls   int
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int]*model.User), logins: make(map[int]time.Time), nextID: 1}
	for _, u := range users {
		f.byID[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins[id] = at
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) Erase(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	f.erased = append(f.erased, id)
	return nil
}

func (f *fakeUsers) ListWithStats(_ context.Context, limit, offset int) ([]model.UserWithStats, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []model.UserWithStats{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, model.UserWithStats{User: *f.byID[ids[i]]})
	}
	return out, len(ids), nil
}

func (f *fakeUsers) storeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ─── Modules ────────────────────────────────────────────────────────

type fakeModules struct {
	mu   sync.Mutex
	byID map[int]*model.Module
}

func newFakeModules(modules ...*model.Module) *fakeModules {
	f := &fakeModules{byID: make(map[int]*model.Module)}
	for _, m := range modules {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeModules) GetByID(_ context.Context, id int) (*model.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeModules) GetActiveByID(ctx context.Context, id int) (*model.Module, error) {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeModules) ListActiveWithProgress(_ context.Context, _ int) ([]model.ModuleWithProgress, error) {
	return nil, nil
}

func (f *fakeModules) ListWithStats(_ context.Context) ([]model.ModuleWithStats, error) {
	return nil, nil
}

func (f *fakeModules) Create(_ context.Context, m *model.Module) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = len(f.byID) + 1
	m.IsActive = true
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeModules) Update(_ context.Context, m *model.Module) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[m.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeModules) Deactivate(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsActive = false
	return nil
}

// ─── Question bank ──────────────────────────────────────────────────

type fakeQuizzes struct {
	mu     sync.Mutex
	quiz   map[int]*model.Quiz
	nextID int
	lists  int
}

func newFakeQuizzes(quizzes ...model.Quiz) *fakeQuizzes {
	f := &fakeQuizzes{quiz: make(map[int]*model.Quiz), nextID: 1}
	for i := range quizzes {
		q := quizzes[i]
		f.quiz[q.ID] = &q
		if q.ID >= f.nextID {
			f.nextID = q.ID + 1
		}
	}
	return f
}

func (f *fakeQuizzes) ListByModule(_ context.Context, moduleID int) ([]model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := []model.Quiz{}
	for _, q := range f.quiz {
		if q.ModuleID == moduleID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuizzes) GetByID(_ context.Context, id int) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quiz[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuizzes) Create(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = f.nextID
	f.nextID++
	cp := *q
	f.quiz[q.ID] = &cp
	return nil
}

func (f *fakeQuizzes) Update(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.quiz[q.ID]
	if !ok || existing.ModuleID != q.ModuleID {
		return repository.ErrNotFound
	}
	cp := *q
	f.quiz[q.ID] = &cp
	return nil
}

func (f *fakeQuizzes) Delete(_ context.Context, moduleID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.quiz[id]
	if !ok || existing.ModuleID != moduleID {
		return repository.ErrNotFound
	}
	delete(f.quiz, id)
	return nil
}

func (f *fakeQuizzes) BulkCreate(ctx context.Context, quizzes []model.Quiz) error {
	for i := range quizzes {
		if err := f.Create(ctx, &quizzes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuizzes) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// ─── Results ────────────────────────────────────────────────────────

type resultKey struct{ user, module int }

// fakeResults applies the same compare-and-write rule as the SQL upsert,
// under a mutex so it is atomic per call.
type fakeResults struct {
	mu     sync.Mutex
	rows   map[resultKey]*model.Result
	nextID int
}

func newFakeResults(results ...*model.Result) *fakeResults {
	f := &fakeResults{rows: make(map[resultKey]*model.Result), nextID: 1}
	for _, r := range results {
		f.rows[resultKey{r.UserID, r.ModuleID}] = r
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}
	return f
}

func (f *fakeResults) UpsertBest(_ context.Context, res *model.Result) (*model.Result, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := resultKey{res.UserID, res.ModuleID}
	stored, ok := f.rows[k]
	if !ok {
		cp := *res
		cp.ID = f.nextID
		f.nextID++
		f.rows[k] = &cp
		out := cp
		return &out, true, nil
	}
	if stored.Score < res.Score {
		stored.Score = res.Score
		stored.TotalQuestions = res.TotalQuestions
		stored.CorrectAnswers = res.CorrectAnswers
		stored.Passed = res.Passed
		stored.TimeSpentMinutes = res.TimeSpentMinutes
		stored.CompletedAt = res.CompletedAt
		out := *stored
		return &out, true, nil
	}
	out := *stored
	return &out, false, nil
}

func (f *fakeResults) GetByUserAndModule(_ context.Context, userID, moduleID int) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[resultKey{userID, moduleID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResults) MarkCertificateGenerated(_ context.Context, userID, moduleID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[resultKey{userID, moduleID}]
	if !ok || !r.Passed || r.CertificateGenerated {
		return false, nil
	}
	r.CertificateGenerated = true
	return true, nil
}

func (f *fakeResults) ListCertificates(_ context.Context, userID int) ([]model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Certificate{}
	for k, r := range f.rows {
		if k.user == userID && r.Passed {
			out = append(out, model.Certificate{ModuleID: r.ModuleID, Score: r.Score, CompletedAt: r.CompletedAt})
		}
	}
	return out, nil
}

func (f *fakeResults) ListByUser(_ context.Context, userID int) ([]model.ResultWithModule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ResultWithModule{}
	for k, r := range f.rows {
		if k.user == userID {
			out = append(out, model.ResultWithModule{Result: *r})
		}
	}
	return out, nil
}

func (f *fakeResults) Progress(_ context.Context, _ int) (*model.UserProgress, error) {
	return &model.UserProgress{}, nil
}

func (f *fakeResults) get(userID, moduleID int) *model.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[resultKey{userID, moduleID}]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// ─── Audit ──────────────────────────────────────────────────────────

type fakeAudits struct {
	mu        sync.Mutex
	entries   []model.AuditEntry
	insertErr error
	cutoff    time.Time
}

func (f *fakeAudits) Insert(_ context.Context, e *model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudits) BulkInsert(ctx context.Context, batch []*model.AuditEntry) error {
	for _, e := range batch {
		if err := f.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAudits) List(_ context.Context, limit, offset int) ([]model.AuditLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.AuditLog{}
	for i := offset; i < len(f.entries) && i < offset+limit; i++ {
		out = append(out, model.AuditLog{ID: int64(i + 1), AuditEntry: f.entries[i]})
	}
	return out, len(f.entries), nil
}

func (f *fakeAudits) ListByUser(_ context.Context, userID, limit int) ([]model.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.AuditLog{}
	for i, e := range f.entries {
		if e.UserID != nil && *e.UserID == userID && len(out) < limit {
			out = append(out, model.AuditLog{ID: int64(i + 1), AuditEntry: e})
		}
	}
	return out, nil
}

func (f *fakeAudits) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = cutoff
	kept := f.entries[:0]
	var n int64
	for _, e := range f.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

func (f *fakeAudits) snapshot() []model.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AuditEntry(nil), f.entries...)
}

// ─── Renderer ───────────────────────────────────────────────────────

type stubRenderer struct {
	mu   sync.Mutex
	last *model.CertificateData
}

func (r *stubRenderer) Render(w io.Writer, data *model.CertificateData) error {
	r.mu.Lock()
	r.last = data
	r.mu.Unlock()
	_, err := io.WriteString(w, "%PDF-stub "+data.CertificateID)
	return err
}

func (r *stubRenderer) ContentType() string { return "application/pdf" }
func (r *stubRenderer) Extension() string   { return "pdf" }

// ─── Helpers ────────────────────────────────────────────────────────

func intPtr(v int) *int { return &v }

func answer(quizID, selected int) model.SubmittedAnswer {
	return model.SubmittedAnswer{QuizID: quizID, SelectedOption: intPtr(selected)}
}
