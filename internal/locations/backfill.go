package locations

import (
	"context"
	"fmt"
	"log/slog"

	"keel/internal/journal"
	"keel/internal/mlwh"
)

// Warehouse is the backfill write interface. The store applies each call in
// one transaction, so a failed file leaves no partial rows behind.
type Warehouse interface {
	BackfillLocations(ctx context.Context, locations []mlwh.SeqProductIrodsLocation) (mlwh.BackfillResult, error)
}

// FileResult is the outcome of backfilling one location file.
type FileResult struct {
	Path    string
	Outcome journal.Outcome
	Detail  string
	Result  mlwh.BackfillResult
	Err     error
}

// Backfiller loads location files and writes their rows to the warehouse,
// one transaction per file.
type Backfiller struct {
	Warehouse Warehouse
	Log       *slog.Logger
	DryRun    bool
}

// Run processes each file independently; a bad file is reported and does not
// stop the rest.
func (b *Backfiller) Run(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, b.backfillFile(ctx, path))
	}
	return results
}

func (b *Backfiller) backfillFile(ctx context.Context, path string) FileResult {
	doc, err := Load(path)
	if err != nil {
		return FileResult{Path: path, Outcome: journal.OutcomeFailed, Detail: "invalid document", Err: err}
	}

	rows := doc.Rows()
	if b.DryRun {
		return FileResult{
			Path:    path,
			Outcome: journal.OutcomeSkipped,
			Detail:  fmt.Sprintf("dry-run: %d products", len(rows)),
		}
	}

	result, err := b.Warehouse.BackfillLocations(ctx, rows)
	if err != nil {
		return FileResult{Path: path, Outcome: journal.OutcomeFailed, Detail: "backfill error", Err: err}
	}

	b.Log.Info("backfilled locations",
		slog.String("path", path),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged))
	return FileResult{
		Path:    path,
		Outcome: journal.OutcomeUpdated,
		Detail:  fmt.Sprintf("%d created, %d updated, %d unchanged", result.Created, result.Updated, result.Unchanged),
		Result:  result,
	}
}
