// Package objectstore defines the narrow object-storage contract the cleaner
// depends on, plus the error type every backend reports transport failures with.
package objectstore

import (
	"context"
	"fmt"
	"io"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/mattjoyce/s3-maven-cleaner/internal/objectstore Store

// MaxDeleteBatch is the largest number of keys a single DeleteObjects call
// may carry (the S3 limit).
const MaxDeleteBatch = 1000

// Store is a flat, lexicographically ordered key space.
type Store interface {
	// List returns one page of keys starting with in.Prefix.
	List(ctx context.Context, in ListInput) (*ListPage, error)
	// Get opens the body of the object at key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// DeleteObjects removes up to MaxDeleteBatch keys in one call.
	DeleteObjects(ctx context.Context, keys []string) (*DeleteResult, error)
}

// ListInput selects one page of a listing.
type ListInput struct {
	Prefix            string
	ContinuationToken string
	MaxKeys           int
}

// Object is one listed entry.
type Object struct {
	Key  string
	Size int64
}

// ListPage is one page of a listing.
type ListPage struct {
	Objects               []Object
	NextContinuationToken string
	Truncated             bool
}

// DeleteResult reports the outcome of a batched delete.
type DeleteResult struct {
	Deleted []string
	Failed  []DeleteFailure
}

// DeleteFailure is a key the store refused to delete.
type DeleteFailure struct {
	Key     string
	Code    string
	Message string
}

func (f DeleteFailure) String() string {
	return fmt.Sprintf("%s (%s: %s)", f.Key, f.Code, f.Message)
}

// TransportError wraps a failed call against the store.
type TransportError struct {
	Op  string
	Key string
	Err error
}

func (e *TransportError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("object store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("object store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Walk lists every key under prefix, calling fn once per page until the store
// reports no further pages or fn returns an error.
func Walk(ctx context.Context, s Store, prefix string, pageSize int, fn func(page *ListPage) error) error {
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.List(ctx, ListInput{Prefix: prefix, ContinuationToken: token, MaxKeys: pageSize})
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if !page.Truncated {
			return nil
		}
		if page.NextContinuationToken == "" {
			return &TransportError{Op: "list", Key: prefix, Err: fmt.Errorf("truncated page without continuation token")}
		}
		token = page.NextContinuationToken
	}
}
