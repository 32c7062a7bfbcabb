package domain

import (
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
)

// DefaultTitle names a project the user has not titled.
const DefaultTitle = "Untitled Project"

var ErrNotFound = apperr.ErrNotFound

// Project is one research initiative owned by a single user.
type Project struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	Title             string    `json:"title"`
	ProblemStatement  string    `json:"problem_statement"`
	Industry          string    `json:"industry"`
	Timeline          *string   `json:"timeline,omitempty"`
	TargetUsers       *string   `json:"target_users,omitempty"`
	AdditionalContext *string   `json:"additional_context,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Section is one titled, ordered region of a project's document.
type Section struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index"`
	IsVisible  bool      `json:"is_visible"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProject holds the columns set when a project is created.
type NewProject struct {
	Title             string
	ProblemStatement  string
	Industry          string
	Timeline          string
	TargetUsers       string
	AdditionalContext string
}

// NewSection is a section row to insert. A negative OrderIndex appends
// after the current last section.
type NewSection struct {
	Title      string
	Content    string
	OrderIndex int
}

// OrderUpdate moves one section to a new index.
type OrderUpdate struct {
	ID         string
	OrderIndex int
}

// OptionalText turns blank input into a NULL column.
func OptionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
