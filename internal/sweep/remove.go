package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"keel/internal/irods"
	"keel/internal/journal"
)

// Confirmations answers whether a copy of an object was journalled as
// confirmed with a given checksum.
type Confirmations interface {
	HasConfirmation(ctx context.Context, target, checksum string) (bool, error)
}

// Remover deletes data objects whose off-site copies were confirmed. An
// object is removed only when both witnesses agree: the confirmation AVU on
// the object and a matching journal record.
type Remover struct {
	Catalog       Catalog
	Confirmations Confirmations
	Log           *slog.Logger
	ManifestDir   string
	DryRun        bool
}

// ManifestEntry is one removed object in the removal manifest.
type ManifestEntry struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	RemovedAt time.Time `json:"removed_at"`
}

// Run attempts to remove each path, writing a manifest of what was removed.
// The manifest path is returned when anything was removed.
func (r *Remover) Run(ctx context.Context, paths []string) ([]Result, string, error) {
	results := make([]Result, 0, len(paths))
	var manifest []ManifestEntry

	for _, objPath := range paths {
		result := r.removeObject(ctx, objPath)
		results = append(results, result)
		if result.Outcome == journal.OutcomeRemoved {
			manifest = append(manifest, ManifestEntry{
				Path:      objPath,
				Checksum:  result.Detail,
				Size:      result.Size,
				RemovedAt: time.Now().UTC(),
			})
		}
	}

	if len(manifest) == 0 {
		return results, "", nil
	}

	manifestPath, err := r.writeManifest(manifest)
	if err != nil {
		return results, "", err
	}

	var total int64
	for _, entry := range manifest {
		total += entry.Size
	}
	r.Log.Info("removal complete",
		slog.Int("removed", len(manifest)),
		slog.String("reclaimed", humanize.IBytes(uint64(total))),
		slog.String("manifest", manifestPath))
	return results, manifestPath, nil
}

func (r *Remover) removeObject(ctx context.Context, objPath string) Result {
	obj, err := r.Catalog.ListObject(ctx, objPath)
	if err != nil {
		return Result{Path: objPath, Outcome: journal.OutcomeReview, Detail: "list error", Err: err}
	}
	checksum, ok := obj.ConsensusChecksum()
	if !ok {
		return Result{Path: objPath, Outcome: journal.OutcomeReview, Detail: "replicas disagree"}
	}

	marker := irods.AVU{Attribute: irods.AttrCopyConfirmedMD5, Value: checksum}
	if !obj.HasMeta(marker) {
		return Result{Path: objPath, Outcome: journal.OutcomeFailed, Detail: "no confirmation metadata"}
	}
	confirmed, err := r.Confirmations.HasConfirmation(ctx, objPath, checksum)
	if err != nil {
		return Result{Path: objPath, Outcome: journal.OutcomeReview, Detail: "journal error", Err: err}
	}
	if !confirmed {
		return Result{Path: objPath, Outcome: journal.OutcomeFailed, Detail: "no journalled confirmation"}
	}

	if r.DryRun {
		return Result{Path: objPath, Outcome: journal.OutcomeSkipped, Detail: "dry-run: " + checksum, Size: obj.Size}
	}
	if err := r.Catalog.RemoveObject(ctx, objPath); err != nil {
		return Result{Path: objPath, Outcome: journal.OutcomeReview, Detail: "remove error", Err: err}
	}

	r.Log.Info("removed data object",
		slog.String("path", objPath),
		slog.String("checksum", checksum),
		slog.String("size", humanize.IBytes(uint64(obj.Size))))
	return Result{Path: objPath, Outcome: journal.OutcomeRemoved, Detail: checksum, Size: obj.Size}
}

func (r *Remover) writeManifest(entries []ManifestEntry) (string, error) {
	if err := os.MkdirAll(r.ManifestDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure manifest dir: %w", err)
	}

	name := fmt.Sprintf("removed-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	manifestPath := filepath.Join(r.ManifestDir, name)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return manifestPath, nil
}
