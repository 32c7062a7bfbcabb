// Package editor keeps the live, ordered section list of a project being
// edited and converges it with storage.
package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/observability"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

// DefaultDebounce is the quiet window before an edit is persisted.
const DefaultDebounce = 2 * time.Second

// NewSectionContent is the body of a section added by hand.
const NewSectionContent = "<p>Add your content here.</p>"

// Storage is the persistence a Store reads from and writes to.
type Storage interface {
	Get(ctx context.Context, ownerID, projectID string) (*domain.Project, error)
	ListByProject(ctx context.Context, ownerID, projectID string) ([]domain.Section, error)
	Create(ctx context.Context, ownerID, projectID string, in domain.NewSection) (*domain.Section, error)
	UpdateContent(ctx context.Context, ownerID, sectionID, content string) error
	Delete(ctx context.Context, ownerID, sectionID string) error
	Reorder(ctx context.Context, ownerID, projectID string, updates []domain.OrderUpdate) error
}

// Options tune a Store. Zero values select the defaults.
type Options struct {
	Debounce  time.Duration
	AfterFunc AfterFunc
	Now       func() time.Time
	Metrics   *observability.Metrics
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.AfterFunc == nil {
		o.AfterFunc = RealAfterFunc
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Store is the in-memory source of truth for one project's sections.
// Edits apply to memory at once; content writes are debounced per section.
type Store struct {
	ownerID string
	storage Storage
	now     func() time.Time

	mu       sync.Mutex
	project  domain.Project
	sections []domain.Section
	active   string
	lastUsed time.Time
	closed   bool

	saves *Debouncer
}

// Load fetches the project and its ordered sections. The first section
// becomes active.
func Load(ctx context.Context, storage Storage, ownerID, projectID string, opts Options) (*Store, error) {
	opts = opts.withDefaults()

	p, err := storage.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	secs, err := storage.ListByProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	s := &Store{
		ownerID:  ownerID,
		storage:  storage,
		now:      opts.Now,
		project:  *p,
		sections: secs,
		lastUsed: opts.Now(),
	}
	if len(secs) > 0 {
		s.active = secs[0].ID
	}

	metrics := opts.Metrics
	log := logging.FromContext(ctx).With(zap.String("project_id", projectID))
	s.saves = NewDebouncer(opts.Debounce, opts.AfterFunc,
		func(ctx context.Context, id, content string) error {
			err := storage.UpdateContent(ctx, ownerID, id, content)
			metrics.SectionWrite(err == nil)
			return err
		},
		func(id string, err error) {
			log.Error("section save failed", zap.String("operation", "save_section"), zap.String("section_id", id), zap.Error(err))
		})
	return s, nil
}

func (s *Store) touch() { s.lastUsed = s.now() }

// use touches the session and refuses changes once it has been closed.
func (s *Store) use() error {
	if s.closed {
		return apperr.ErrSessionClosed
	}
	s.touch()
	return nil
}

func (s *Store) markUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
}

func (s *Store) indexOf(id string) int {
	for i := range s.sections {
		if s.sections[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Project() domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// SetProject replaces the project metadata, e.g. after a rename.
func (s *Store) SetProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = p
}

// Sections returns a copy of the ordered list.
func (s *Store) Sections() []domain.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// Active returns the active section with its latest in-memory content.
func (s *Store) Active() (domain.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.active)
	if i < 0 {
		return domain.Section{}, false
	}
	return s.sections[i], true
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveSection switches to id and returns its current content.
func (s *Store) SetActiveSection(id string) (domain.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Section{}, apperr.ErrNotFound
	}
	s.active = id
	return s.sections[i], nil
}

// EditContent replaces the section's content in memory and schedules its
// write. The write is keyed by id, not by whichever section is active.
func (s *Store) EditContent(id, content string) (domain.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.use(); err != nil {
		return domain.Section{}, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return domain.Section{}, apperr.ErrNotFound
	}
	s.sections[i].Content = content
	s.sections[i].UpdatedAt = s.now()
	s.saves.Schedule(id, content)
	return s.sections[i], nil
}

// InsertGeneratedContent appends fragment to the named section and goes
// through the same debounced write as EditContent.
func (s *Store) InsertGeneratedContent(id, fragment string) (domain.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.use(); err != nil {
		return domain.Section{}, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return domain.Section{}, apperr.ErrNotFound
	}
	s.sections[i].Content += fragment
	s.sections[i].UpdatedAt = s.now()
	s.saves.Schedule(id, s.sections[i].Content)
	return s.sections[i], nil
}

// AddSection appends a new section after the highest order index.
func (s *Store) AddSection(ctx context.Context, title string) (domain.Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Section{}, apperr.Invalid("section title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.use(); err != nil {
		return domain.Section{}, err
	}

	next := -1
	for _, sec := range s.sections {
		if sec.OrderIndex > next {
			next = sec.OrderIndex
		}
	}
	next++

	sec, err := s.storage.Create(ctx, s.ownerID, s.project.ID, domain.NewSection{
		Title:      title,
		Content:    NewSectionContent,
		OrderIndex: next,
	})
	if err != nil {
		return domain.Section{}, err
	}
	s.sections = append(s.sections, *sec)
	return *sec, nil
}

// DeleteSection removes a section. The Problem Statement cannot be removed.
// Deleting the active section activates the first remaining one.
func (s *Store) DeleteSection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.use(); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return apperr.ErrNotFound
	}
	if strings.EqualFold(strings.TrimSpace(s.sections[i].Title), templates.ProblemStatement) {
		return apperr.ErrProtectedSection
	}

	if err := s.storage.Delete(ctx, s.ownerID, id); err != nil {
		return err
	}
	s.saves.Cancel(id)
	s.sections = append(s.sections[:i], s.sections[i+1:]...)

	if s.active == id {
		s.active = ""
		if len(s.sections) > 0 {
			s.active = s.sections[0].ID
		}
	}
	return nil
}

// Reorder applies a full permutation of section ids. Indices become dense
// and every changed index is written in one transaction. On failure the
// previous order is restored.
func (s *Store) Reorder(ctx context.Context, orderedIDs []string) ([]domain.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.use(); err != nil {
		return nil, err
	}

	if len(orderedIDs) != len(s.sections) {
		return nil, apperr.Invalid("order must list every section exactly once")
	}
	byID := make(map[string]domain.Section, len(s.sections))
	for _, sec := range s.sections {
		byID[sec.ID] = sec
	}

	next := make([]domain.Section, 0, len(orderedIDs))
	var updates []domain.OrderUpdate
	for i, id := range orderedIDs {
		sec, ok := byID[id]
		if !ok {
			return nil, apperr.Invalid("order must list every section exactly once")
		}
		delete(byID, id)
		if sec.OrderIndex != i {
			updates = append(updates, domain.OrderUpdate{ID: id, OrderIndex: i})
			sec.OrderIndex = i
		}
		next = append(next, sec)
	}

	prev := s.sections
	s.sections = next
	if err := s.storage.Reorder(ctx, s.ownerID, s.project.ID, updates); err != nil {
		s.sections = prev
		return nil, err
	}

	out := make([]domain.Section, len(next))
	copy(out, next)
	return out, nil
}

// Saving reports whether a section write is in flight.
func (s *Store) Saving() bool { return s.saves.Saving() }

// Dirty reports whether some edit has not reached storage yet.
func (s *Store) Dirty() bool { return s.saves.Pending() > 0 }

func (s *Store) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Flush writes all pending edits now.
func (s *Store) Flush(ctx context.Context) error {
	return s.saves.Flush(ctx)
}

// Close flushes and then refuses further changes with ErrSessionClosed.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saves.Flush(ctx); err != nil {
		return err
	}
	s.saves.Stop()
	s.closed = true
	return nil
}

// discard drops pending writes without persisting them.
func (s *Store) discard() { s.saves.Stop() }

// VisibleSections returns the sections that are rendered and exported.
func (s *Store) VisibleSections() []domain.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		if sec.IsVisible {
			out = append(out, sec)
		}
	}
	return out
}
