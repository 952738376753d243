package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyTitle is returned when a query has no usable title.
var ErrEmptyTitle = errors.New("query title must not be blank")

// Searcher is the keyword search port. A nil error with no candidates means
// zero results; a temporarily unavailable catalog returns *UnavailableError.
type Searcher interface {
	Search(ctx context.Context, query string, entity EntityType, scope string, limit int) ([]Candidate, error)
}

// MemberPage is one page of container members. An empty Next means the
// container has no further pages.
type MemberPage struct {
	Items []Candidate
	Next  string
}

// MemberLister pages through the members of a container.
type MemberLister interface {
	ListMembers(ctx context.Context, containerID, cursor string) (MemberPage, error)
}

// RelatedFinder returns entities adjacent to id.
type RelatedFinder interface {
	RelatedOf(ctx context.Context, id string) ([]Candidate, error)
}

// Catalog bundles every port the engine consumes.
type Catalog interface {
	Searcher
	MemberLister
	RelatedFinder
}

// UnavailableError reports a transient catalog failure (rate limit, 5xx,
// network or deadline).
type UnavailableError struct {
	Source     string
	Cause      error
	RetryAfter time.Duration
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("%s temporarily unavailable", e.Source)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// IsUnavailable reports whether err is, or wraps, an *UnavailableError.
func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}
