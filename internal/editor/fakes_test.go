package editor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

// manualClock fires timers synchronously from Advance.
type manualClock struct {
	mu     sync.Mutex
	start  time.Time
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func newManualClock() *manualClock {
	return &manualClock{start: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(c.now)
}

// AdvanceTo moves the clock to offset and runs every due timer in order.
func (c *manualClock) AdvanceTo(offset time.Duration) {
	for {
		c.mu.Lock()
		var due []*manualTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= offset {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = offset
			c.mu.Unlock()
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

type write struct {
	ID      string
	Content string
	At      time.Duration
}

// memStorage is an in-memory Storage that records content writes.
type memStorage struct {
	mu         sync.Mutex
	clock      *manualClock
	project    domain.Project
	sections   []domain.Section
	writes     []write
	updateErr  error
	reorderErr error
	reorders   [][]domain.OrderUpdate
	nextID     int
}

func newMemStorage(clock *manualClock, titles ...string) *memStorage {
	m := &memStorage{clock: clock, project: domain.Project{ID: "rsch-1", OwnerID: "owner-1", Title: "Study"}}
	for i, title := range titles {
		m.sections = append(m.sections, domain.Section{
			ID: string(rune('a' + i)), ProjectID: "rsch-1", Title: title,
			Content: "<p>" + title + "</p>", OrderIndex: i, IsVisible: true,
		})
	}
	return m
}

func (m *memStorage) Get(_ context.Context, ownerID, projectID string) (*domain.Project, error) {
	if ownerID != m.project.OwnerID || projectID != m.project.ID {
		return nil, domain.ErrNotFound
	}
	p := m.project
	return &p, nil
}

func (m *memStorage) ListByProject(context.Context, string, string) ([]domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Section, len(m.sections))
	copy(out, m.sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memStorage) Create(_ context.Context, _, projectID string, in domain.NewSection) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := domain.Section{ID: "new-" + string(rune('0'+m.nextID)), ProjectID: projectID, Title: in.Title, Content: in.Content, OrderIndex: in.OrderIndex, IsVisible: true}
	m.sections = append(m.sections, s)
	return &s, nil
}

func (m *memStorage) UpdateContent(_ context.Context, _, sectionID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.writes = append(m.writes, write{ID: sectionID, Content: content, At: m.clock.now})
	for i := range m.sections {
		if m.sections[i].ID == sectionID {
			m.sections[i].Content = content
		}
	}
	return nil
}

func (m *memStorage) Delete(_ context.Context, _, sectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sections {
		if m.sections[i].ID == sectionID {
			m.sections = append(m.sections[:i], m.sections[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStorage) Reorder(_ context.Context, _, _ string, updates []domain.OrderUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reorderErr != nil {
		return m.reorderErr
	}
	m.reorders = append(m.reorders, updates)
	for _, u := range updates {
		for i := range m.sections {
			if m.sections[i].ID == u.ID {
				m.sections[i].OrderIndex = u.OrderIndex
			}
		}
	}
	return nil
}

func (m *memStorage) Writes() []write {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]write, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *memStorage) failUpdates(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateErr = err
}

var errDown = apperr.ErrPersistence
