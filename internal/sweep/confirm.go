// Package sweep confirms off-site copies of data objects and removes the
// originals once two independent witnesses agree the copy is good: the
// confirmation metadata on the object and the matching journal record.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"keel/internal/irods"
	"keel/internal/journal"
)

// Catalog is the slice of the data catalog the sweep operations need.
type Catalog interface {
	ListCollection(ctx context.Context, path string, contents bool) (*irods.Collection, error)
	ListObject(ctx context.Context, path string) (*irods.DataObject, error)
	AddObjectMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	RemoveObject(ctx context.Context, path string) error
}

// Result is the outcome of confirming or removing one data object.
type Result struct {
	Path    string
	Outcome journal.Outcome
	Detail  string
	Size    int64
	Err     error
}

// Confirmer verifies that every data object under a source collection has a
// checksum-identical copy under a destination collection, and marks confirmed
// sources with the copy checksum.
type Confirmer struct {
	Catalog Catalog
	Log     *slog.Logger
	DryRun  bool
}

// Run walks the source tree and returns one result per data object. Confirmed
// results carry the checksum in Detail, which the journal stores as the
// removal witness.
func (c *Confirmer) Run(ctx context.Context, sourceRoot, destRoot string) ([]Result, error) {
	sourceRoot = path.Clean(sourceRoot)
	destRoot = path.Clean(destRoot)

	objects, err := c.walk(ctx, sourceRoot)
	if err != nil {
		return nil, err
	}
	sort.Strings(objects)
	c.Log.Info("confirming copies",
		slog.String("source", sourceRoot),
		slog.String("dest", destRoot),
		slog.Int("objects", len(objects)))

	results := make([]Result, 0, len(objects))
	for _, objPath := range objects {
		relative := strings.TrimPrefix(objPath, sourceRoot+"/")
		results = append(results, c.confirmObject(ctx, objPath, path.Join(destRoot, relative)))
	}
	return results, nil
}

func (c *Confirmer) walk(ctx context.Context, collPath string) ([]string, error) {
	coll, err := c.Catalog.ListCollection(ctx, collPath, true)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collPath, err)
	}

	objects := append([]string{}, coll.Objects...)
	for _, member := range coll.Collections {
		memberObjects, err := c.walk(ctx, member)
		if err != nil {
			return nil, err
		}
		objects = append(objects, memberObjects...)
	}
	return objects, nil
}

func (c *Confirmer) confirmObject(ctx context.Context, sourcePath, destPath string) Result {
	source, err := c.Catalog.ListObject(ctx, sourcePath)
	if err != nil {
		return Result{Path: sourcePath, Outcome: journal.OutcomeReview, Detail: "list source error", Err: err}
	}
	checksum, ok := source.ConsensusChecksum()
	if !ok {
		return Result{Path: sourcePath, Outcome: journal.OutcomeReview, Detail: "source replicas disagree"}
	}

	dest, err := c.Catalog.ListObject(ctx, destPath)
	if err != nil {
		return Result{Path: sourcePath, Outcome: journal.OutcomeFailed, Detail: "no copy at " + destPath, Err: err}
	}
	destChecksum, ok := dest.ConsensusChecksum()
	if !ok {
		return Result{Path: sourcePath, Outcome: journal.OutcomeReview, Detail: "copy replicas disagree"}
	}
	if destChecksum != checksum {
		return Result{
			Path:    sourcePath,
			Outcome: journal.OutcomeFailed,
			Detail:  fmt.Sprintf("checksum mismatch, source %s copy %s", checksum, destChecksum),
		}
	}

	marker := irods.AVU{Attribute: irods.AttrCopyConfirmedMD5, Value: checksum}
	if source.HasMeta(marker) {
		return Result{Path: sourcePath, Outcome: journal.OutcomeSkipped, Detail: checksum}
	}
	if c.DryRun {
		return Result{Path: sourcePath, Outcome: journal.OutcomeSkipped, Detail: "dry-run: " + checksum}
	}
	if err := c.Catalog.AddObjectMetadata(ctx, sourcePath, marker); err != nil {
		return Result{Path: sourcePath, Outcome: journal.OutcomeReview, Detail: "mark error", Err: err}
	}

	c.Log.Info("confirmed copy",
		slog.String("source", sourcePath),
		slog.String("dest", destPath),
		slog.String("checksum", checksum))
	return Result{Path: sourcePath, Outcome: journal.OutcomeConfirmed, Detail: checksum, Size: source.Size}
}
