package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "algebra", "algebra"},
		{"mixed case", "Algebra", "algebra"},
		{"surrounding whitespace", "  Algebra  ", "algebra"},
		{"tabs and case", "\tInteGRation by Parts ", "integration by parts"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewCluster(t *testing.T) {
	t.Parallel()

	listID := uuid.New()

	cluster, err := NewCluster(listID, "  Algebra ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cluster.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if cluster.ListID != listID {
		t.Errorf("Expected list ID %s, got %s", listID, cluster.ListID)
	}

	// The stored title keeps the caller's casing but loses the whitespace.
	if cluster.Title != "Algebra" {
		t.Errorf("Expected title %q, got %q", "Algebra", cluster.Title)
	}

	if cluster.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Missing list
	_, err = NewCluster(uuid.Nil, "Algebra")
	if !errors.Is(err, ErrClusterMissingList) {
		t.Errorf("Expected error %v, got %v", ErrClusterMissingList, err)
	}

	// Empty-after-trim title
	_, err = NewCluster(listID, "   ")
	if !errors.Is(err, ErrEmptyClusterTitle) {
		t.Errorf("Expected error %v, got %v", ErrEmptyClusterTitle, err)
	}
}

func TestClusterTitleMatches(t *testing.T) {
	t.Parallel()

	cluster, err := NewCluster(uuid.New(), "Algebra")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, title := range []string{"Algebra", "algebra", " ALGEBRA ", "aLgEbRa"} {
		if !cluster.TitleMatches(title) {
			t.Errorf("Expected %q to match cluster title %q", title, cluster.Title)
		}
	}

	if cluster.TitleMatches("Geometry") {
		t.Error("Expected non-matching title to not match")
	}
}

func TestNewClusterList(t *testing.T) {
	t.Parallel()

	list, err := NewClusterList("Calculus")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if list.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if list.Title != "Calculus" {
		t.Errorf("Expected title %q, got %q", "Calculus", list.Title)
	}

	_, err = NewClusterList(" ")
	if !errors.Is(err, ErrEmptyClusterListTitle) {
		t.Errorf("Expected error %v, got %v", ErrEmptyClusterListTitle, err)
	}
}
