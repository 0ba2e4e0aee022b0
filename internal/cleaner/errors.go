package cleaner

import (
	"errors"
	"fmt"

	"github.com/mattjoyce/s3-maven-cleaner/internal/maven"
)

// ErrIncompleteMetadata matches every *IncompleteMetadataError.
var ErrIncompleteMetadata = errors.New("metadata is incomplete")

// IncompleteMetadataError reports an artifact missing either its directory
// document or all of its version documents.
type IncompleteMetadataError struct {
	Coordinate maven.Coordinate
	Missing    string
}

func (e *IncompleteMetadataError) Error() string {
	return fmt.Sprintf("metadata is incomplete for %s (missing %s), cannot proceed", e.Coordinate, e.Missing)
}

func (e *IncompleteMetadataError) Is(target error) bool {
	return target == ErrIncompleteMetadata
}

// ArtifactError ties a failure to the artifact it happened on.
type ArtifactError struct {
	Coordinate maven.Coordinate
	Err        error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Coordinate, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
