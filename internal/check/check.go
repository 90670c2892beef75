// Package check verifies data objects against the catalog's own records and,
// when asked, repairs what it safely can. Checks never mutate; repairs record
// the before state in the finding detail so the journal keeps it.
package check

import (
	"context"
	"errors"
	"fmt"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/services"
)

// Catalog is the slice of the data catalog the checkers need.
type Catalog interface {
	ListObject(ctx context.Context, path string) (*irods.DataObject, error)
	Checksum(ctx context.Context, path string, recalculate bool) (string, error)
	AddObjectMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	RemoveObjectMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	Replicate(ctx context.Context, path, resource string) error
	Trim(ctx context.Context, path string, replicaNumber, minReplicas int) error
}

// Finding is the result of checking one data object.
type Finding struct {
	Path    string
	Outcome journal.Outcome
	Detail  string
	Err     error
}

// Checker examines a single data object.
type Checker interface {
	Op(repair bool) journal.Op
	Check(ctx context.Context, path string, repair bool) Finding
}

// errorFinding classifies a catalog error. A missing object is a check
// failure; conditions an operator must resolve go to review; tool and
// transport failures are reported failed and left for the next run.
func errorFinding(path, operation string, err error) Finding {
	if errors.Is(err, services.ErrNotFound) {
		return Finding{Path: path, Outcome: journal.OutcomeFailed, Detail: "not in catalog", Err: err}
	}
	outcome := journal.OutcomeFailed
	if services.NeedsReview(err) {
		outcome = journal.OutcomeReview
	}
	return Finding{
		Path:    path,
		Outcome: outcome,
		Detail:  fmt.Sprintf("%s error", operation),
		Err:     err,
	}
}
