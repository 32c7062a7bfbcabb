package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/assistant"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/auth"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/editor"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/generator"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm/llmtest"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

const testOwner = "owner-1"

// memStorage is an in-memory editor.Storage seeded with one project.
type memStorage struct {
	mu        sync.Mutex
	projects  map[string]domain.Project
	sections  map[string][]domain.Section
	writes    map[string]string
	updateErr error
	nextID    int
}

func newMemStorage() *memStorage {
	return &memStorage{
		projects: map[string]domain.Project{
			"rsch-1": {ID: "rsch-1", OwnerID: testOwner, Title: "Checkout Study", Industry: "E-commerce", ProblemStatement: "Cart abandonment"},
		},
		sections: map[string][]domain.Section{
			"rsch-1": {
				{ID: "s1", ProjectID: "rsch-1", Title: "Problem Statement", Content: "<p>Cart abandonment</p>", OrderIndex: 0, IsVisible: true},
				{ID: "s2", ProjectID: "rsch-1", Title: "Key Findings", Content: "<p>Shipping costs</p>", OrderIndex: 1, IsVisible: true},
			},
		},
		writes: map[string]string{},
	}
}

func (m *memStorage) Get(_ context.Context, ownerID, projectID string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memStorage) ListByProject(_ context.Context, _, projectID string) ([]domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Section(nil), m.sections[projectID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memStorage) Create(_ context.Context, _, projectID string, in domain.NewSection) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := domain.Section{
		ID:         "added-" + strconv.Itoa(m.nextID),
		ProjectID:  projectID,
		Title:      in.Title,
		Content:    in.Content,
		OrderIndex: in.OrderIndex,
		IsVisible:  true,
	}
	m.sections[projectID] = append(m.sections[projectID], s)
	return &s, nil
}

func (m *memStorage) UpdateContent(_ context.Context, _, sectionID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.writes[sectionID] = content
	return nil
}

func (m *memStorage) Delete(_ context.Context, _, sectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pid, secs := range m.sections {
		for i, s := range secs {
			if s.ID == sectionID {
				m.sections[pid] = append(secs[:i], secs[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (m *memStorage) Reorder(_ context.Context, _, projectID string, updates []domain.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		for i := range m.sections[projectID] {
			if m.sections[projectID][i].ID == u.ID {
				m.sections[projectID][i].OrderIndex = u.OrderIndex
			}
		}
	}
	return nil
}

func (m *memStorage) written(sectionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.writes[sectionID]
	return v, ok
}

// projectRows is the service.ProjectStore view of memStorage.
type projectRows struct{ store *memStorage }

func (r projectRows) CreateWithSections(context.Context, string, domain.NewProject, []domain.NewSection) (*domain.Project, []domain.Section, error) {
	return nil, nil, errors.New("create goes through fakeProjects")
}

func (r projectRows) Get(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	return r.store.Get(ctx, ownerID, id)
}

func (r projectRows) List(_ context.Context, ownerID string) ([]domain.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []domain.Project{}
	for _, p := range r.store.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r projectRows) Rename(ctx context.Context, ownerID, id, title string) (*domain.Project, error) {
	p, err := r.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	p.Title = title
	r.store.mu.Lock()
	r.store.projects[id] = *p
	r.store.mu.Unlock()
	return p, nil
}

func (r projectRows) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.store.Get(ctx, ownerID, id); err != nil {
		return err
	}
	r.store.mu.Lock()
	delete(r.store.projects, id)
	r.store.mu.Unlock()
	return nil
}

// fakeProjects stubs creation so tests control the outcome without a
// language model. Everything else runs through the real service.
type fakeProjects struct {
	*service.ProjectService
	store *memStorage
	err   error
	last  service.CreateInput
}

func (f *fakeProjects) Create(_ context.Context, ownerID string, in service.CreateInput) (*domain.Project, []domain.Section, error) {
	f.last = in
	if f.err != nil {
		return nil, nil, f.err
	}
	p := domain.Project{ID: "rsch-new", OwnerID: ownerID, Title: in.Title, ProblemStatement: in.ProblemStatement, Industry: in.Industry}
	secs := []domain.Section{{ID: "n1", ProjectID: p.ID, Title: "Problem Statement", Content: in.ProblemStatement, IsVisible: true}}

	f.store.mu.Lock()
	f.store.projects[p.ID] = p
	f.store.sections[p.ID] = secs
	f.store.mu.Unlock()
	return &p, secs, nil
}

type fakeArchive struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeArchive) Put(_ context.Context, ownerID, projectID, filename, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	key := ownerID + "/" + projectID + "/" + filename
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

type harness struct {
	router   *gin.Engine
	storage  *memStorage
	projects *fakeProjects
	sessions *editor.Registry
	llm      *llmtest.Fake
	archive  *fakeArchive
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage := newMemStorage()
	fake := &llmtest.Fake{}
	reg := templates.Default()
	// A long debounce keeps writes pending until an explicit flush.
	sessions := editor.NewRegistry(storage, editor.Options{Debounce: time.Hour})
	projects := &fakeProjects{
		ProjectService: service.NewProjectService(projectRows{storage}, generator.New(fake, reg, 0, nil), sessions),
		store:          storage,
	}
	archive := &fakeArchive{}
	t.Cleanup(func() { _ = sessions.FlushAll(context.Background()) })

	h := New(Deps{
		Projects:  projects,
		Sessions:  sessions,
		Analyzer:  documents.NewAnalyzer(fake, reg),
		Assistant: assistant.New(fake, 0),
		Templates: reg,
		Archive:   archive,
	})

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserDBID, testOwner)
		c.Next()
	})
	h.Register(api)

	return &harness{router: r, storage: storage, projects: projects, sessions: sessions, llm: fake, archive: archive}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
