package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/generator"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm/llmtest"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

type fakeStore struct {
	created   []domain.NewSection
	createErr error
	deleted   []string
	deleteErr error
	renamed   string
	renameErr error
}

func (f *fakeStore) CreateWithSections(_ context.Context, ownerID string, in domain.NewProject, sections []domain.NewSection) (*domain.Project, []domain.Section, error) {
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	f.created = sections
	p := &domain.Project{ID: "rsch-12345-6789", OwnerID: ownerID, Title: in.Title, ProblemStatement: in.ProblemStatement, Industry: in.Industry}
	out := make([]domain.Section, 0, len(sections))
	for i, s := range sections {
		out = append(out, domain.Section{ID: string(rune('a' + i)), ProjectID: p.ID, Title: s.Title, Content: s.Content, OrderIndex: s.OrderIndex})
	}
	return p, out, nil
}

func (f *fakeStore) Get(_ context.Context, _, id string) (*domain.Project, error) {
	return &domain.Project{ID: id}, nil
}

func (f *fakeStore) List(context.Context, string) ([]domain.Project, error) { return nil, nil }

func (f *fakeStore) Rename(_ context.Context, _, id, title string) (*domain.Project, error) {
	if f.renameErr != nil {
		return nil, f.renameErr
	}
	f.renamed = title
	return &domain.Project{ID: id, Title: title}, nil
}

func (f *fakeStore) Delete(_ context.Context, _, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSessions struct {
	dropped []string
	renamed map[string]string
}

func (f *fakeSessions) Drop(_, projectID string) { f.dropped = append(f.dropped, projectID) }

func (f *fakeSessions) Renamed(_, projectID string, p domain.Project) {
	if f.renamed == nil {
		f.renamed = make(map[string]string)
	}
	f.renamed[projectID] = p.Title
}

func newService(fake *llmtest.Fake, store *fakeStore, sessions *fakeSessions) *ProjectService {
	drafter := generator.New(fake, templates.Default(), 0, nil)
	if sessions == nil {
		return NewProjectService(store, drafter, nil)
	}
	return NewProjectService(store, drafter, sessions)
}

func TestProjectService_Create(t *testing.T) {
	fake := &llmtest.Fake{Reply: `{"Problem Statement": "<p>Checkout drop-off</p>"}`}
	store := &fakeStore{}
	svc := newService(fake, store, nil)

	p, secs, err := svc.Create(context.Background(), "owner-1", CreateInput{
		ProblemStatement: "  Checkout drop-off  ",
		Industry:         "E-commerce",
	})
	require.NoError(t, err)

	assert.Equal(t, "Checkout drop-off", p.ProblemStatement)
	assert.Len(t, secs, len(templates.Default().SectionsFor("E-commerce")))
	assert.Equal(t, "Problem Statement", store.created[0].Title)
	assert.Equal(t, "<p>Checkout drop-off</p>", store.created[0].Content)
	assert.Equal(t, 1, fake.Calls())
}

func TestProjectService_CreateGenerationFailurePersistsNothing(t *testing.T) {
	fake := &llmtest.Fake{Err: apperr.ErrUpstreamRateLimited}
	store := &fakeStore{}
	svc := newService(fake, store, nil)

	_, _, err := svc.Create(context.Background(), "owner-1", CreateInput{ProblemStatement: "ps", Industry: "Retail"})
	assert.ErrorIs(t, err, apperr.ErrUpstreamRateLimited)
	assert.Nil(t, store.created)
}

func TestProjectService_CreateValidation(t *testing.T) {
	fake := &llmtest.Fake{}
	svc := newService(fake, &fakeStore{}, nil)

	cases := map[string]CreateInput{
		"blank problem": {ProblemStatement: "   ", Industry: "Retail"},
		"blank industry": {ProblemStatement: "ps"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), "owner-1", in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
	assert.Zero(t, fake.Calls())
}

func TestProjectService_Rename(t *testing.T) {
	store := &fakeStore{}
	svc := newService(&llmtest.Fake{}, store, nil)

	_, err := svc.Rename(context.Background(), "owner-1", "rsch-1", "  ")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	p, err := svc.Rename(context.Background(), "owner-1", "rsch-1", " Market study ")
	require.NoError(t, err)
	assert.Equal(t, "Market study", p.Title)
}

func TestProjectService_RenameUpdatesOpenSession(t *testing.T) {
	sessions := &fakeSessions{}
	store := &fakeStore{}
	svc := newService(&llmtest.Fake{}, store, sessions)

	_, err := svc.Rename(context.Background(), "owner-1", "rsch-1", "  ")
	require.Error(t, err)
	assert.Empty(t, sessions.renamed)

	_, err = svc.Rename(context.Background(), "owner-1", "rsch-1", "Market study")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rsch-1": "Market study"}, sessions.renamed)

	store.renameErr = domain.ErrNotFound
	_, err = svc.Rename(context.Background(), "owner-1", "rsch-2", "Other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, sessions.renamed, "rsch-2")
}

func TestProjectService_DeleteDropsSession(t *testing.T) {
	sessions := &fakeSessions{}
	store := &fakeStore{}
	svc := newService(&llmtest.Fake{}, store, sessions)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", "rsch-1"))
	assert.Equal(t, []string{"rsch-1"}, sessions.dropped)

	store.deleteErr = errors.New("delete project: " + domain.ErrNotFound.Error())
	assert.Error(t, svc.Delete(context.Background(), "owner-1", "rsch-2"))
	assert.Equal(t, []string{"rsch-1"}, sessions.dropped)
}
