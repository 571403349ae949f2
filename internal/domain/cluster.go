package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Cluster
var (
	ErrEmptyClusterID    = errors.New("cluster ID cannot be empty")
	ErrClusterMissingList = errors.New("cluster owning list ID cannot be empty")
	ErrEmptyClusterTitle = errors.New("cluster title cannot be empty")
)

// Cluster is a named grouping of cards within one ClusterList. Its title
// is unique within the owning list, compared case-insensitively after
// trimming whitespace. All lookups and implicit creation key off that
// normalized title, so NormalizeTitle is the single definition of the
// comparison key.
type Cluster struct {
	ID        uuid.UUID `json:"id"`
	ListID    uuid.UUID `json:"list_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeTitle returns the canonical comparison key for a cluster title:
// whitespace-trimmed and lowercased. Two titles identify the same cluster
// within a list exactly when their normalized forms are equal.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// NewCluster creates a new Cluster in the given list. The title is trimmed
// but otherwise stored as the caller supplied it; the first writer of a
// given normalized title wins and their casing is preserved.
func NewCluster(listID uuid.UUID, title string) (*Cluster, error) {
	cluster := &Cluster{
		ID:        uuid.New(),
		ListID:    listID,
		Title:     strings.TrimSpace(title),
		CreatedAt: time.Now().UTC(),
	}

	if err := cluster.Validate(); err != nil {
		return nil, err
	}

	return cluster, nil
}

// Validate checks if the Cluster has valid data.
func (c *Cluster) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyClusterID
	}

	if c.ListID == uuid.Nil {
		return ErrClusterMissingList
	}

	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyClusterTitle
	}

	return nil
}

// TitleMatches reports whether the given raw title identifies this cluster
// under the case-insensitive, trimmed comparison rule.
func (c *Cluster) TitleMatches(title string) bool {
	return NormalizeTitle(c.Title) == NormalizeTitle(title)
}
