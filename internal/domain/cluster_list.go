package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ClusterList
var (
	ErrEmptyClusterListID    = errors.New("cluster list ID cannot be empty")
	ErrEmptyClusterListTitle = errors.New("cluster list title cannot be empty")
)

// ClusterList is the top-level container a user organizes: a named,
// ordered collection of clusters. Titles are freeform and are not
// required to be unique across lists.
type ClusterList struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewClusterList creates a new ClusterList with the given title.
// The title is trimmed before validation. Returns an error if the
// title is empty after trimming.
func NewClusterList(title string) (*ClusterList, error) {
	list := &ClusterList{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		CreatedAt: time.Now().UTC(),
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}

	return list, nil
}

// Validate checks if the ClusterList has valid data.
func (l *ClusterList) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyClusterListID
	}

	if strings.TrimSpace(l.Title) == "" {
		return ErrEmptyClusterListTitle
	}

	return nil
}
