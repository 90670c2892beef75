// Package consent locates the data of samples whose consent has been
// withdrawn and takes it out of circulation: the objects are marked with a
// withdrawal flag and read access is removed from everyone but the
// administrative users.
package consent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/mlwh"
)

// Catalog is the slice of the data catalog the withdrawer needs.
type Catalog interface {
	FindObjectsByMetadata(ctx context.Context, avus ...irods.AVU) ([]string, error)
	ListObject(ctx context.Context, path string) (*irods.DataObject, error)
	AddObjectMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	SetObjectAccess(ctx context.Context, path string, access ...irods.Access) error
}

// Warehouse supplies the samples whose consent has been withdrawn.
type Warehouse interface {
	ConsentWithdrawnSamples(ctx context.Context) ([]mlwh.Sample, error)
}

// Result is the outcome of processing one data object.
type Result struct {
	Path     string
	SampleID string
	Outcome  journal.Outcome
	Detail   string
	Err      error
}

// Withdrawer finds and locks down data for consent-withdrawn samples.
type Withdrawer struct {
	Warehouse  Warehouse
	Catalog    Catalog
	Log        *slog.Logger
	AdminUsers []string
	Zone       string
	DryRun     bool
}

// WithdrawnAVU is the marker placed on every object of a withdrawn sample.
var WithdrawnAVU = irods.AVU{Attribute: irods.AttrConsentWithdrawn, Value: "1"}

// Run processes every withdrawn sample and returns one result per affected
// data object. Objects already fully withdrawn are reported as skipped.
func (w *Withdrawer) Run(ctx context.Context) ([]Result, error) {
	samples, err := w.Warehouse.ConsentWithdrawnSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("query withdrawn samples: %w", err)
	}
	w.Log.Info("consent withdrawal sweep", slog.Int("samples", len(samples)))

	var results []Result
	for _, sample := range samples {
		sampleResults, err := w.withdrawSample(ctx, sample)
		if err != nil {
			return nil, err
		}
		results = append(results, sampleResults...)
	}
	return results, nil
}

func (w *Withdrawer) withdrawSample(ctx context.Context, sample mlwh.Sample) ([]Result, error) {
	paths, err := w.Catalog.FindObjectsByMetadata(ctx,
		irods.AVU{Attribute: irods.AttrSampleID, Value: sample.IDSampleLims})
	if err != nil {
		return nil, fmt.Errorf("find objects for sample %s: %w", sample.IDSampleLims, err)
	}
	sort.Strings(paths)

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, w.withdrawObject(ctx, sample.IDSampleLims, path))
	}
	return results, nil
}

func (w *Withdrawer) withdrawObject(ctx context.Context, sampleID, path string) Result {
	obj, err := w.Catalog.ListObject(ctx, path)
	if err != nil {
		return Result{Path: path, SampleID: sampleID, Outcome: journal.OutcomeReview, Detail: "list error", Err: err}
	}

	needsFlag := !obj.HasMeta(WithdrawnAVU)
	revoke := w.revocations(obj.Access)
	if !needsFlag && len(revoke) == 0 {
		return Result{Path: path, SampleID: sampleID, Outcome: journal.OutcomeSkipped, Detail: "already withdrawn"}
	}

	var actions []string
	if needsFlag {
		actions = append(actions, "flag")
	}
	for _, access := range revoke {
		actions = append(actions, "revoke "+access.Owner)
	}
	detail := strings.Join(actions, ", ")

	if w.DryRun {
		return Result{Path: path, SampleID: sampleID, Outcome: journal.OutcomeSkipped, Detail: "dry-run: " + detail}
	}

	if needsFlag {
		if err := w.Catalog.AddObjectMetadata(ctx, path, WithdrawnAVU); err != nil {
			return Result{Path: path, SampleID: sampleID, Outcome: journal.OutcomeReview, Detail: "flag error", Err: err}
		}
	}
	if len(revoke) > 0 {
		if err := w.Catalog.SetObjectAccess(ctx, path, revoke...); err != nil {
			return Result{Path: path, SampleID: sampleID, Outcome: journal.OutcomeReview, Detail: "revoke error", Err: err}
		}
	}

	w.Log.Info("withdrew data object",
		slog.String("path", path),
		slog.String("sample_id", sampleID),
		slog.String("actions", detail))
	return Result{Path: path, SampleID: sampleID, Outcome: journal.OutcomeWithdrawn, Detail: detail}
}

// revocations returns null-access entries for every ACL holder that is not an
// administrative user.
func (w *Withdrawer) revocations(access []irods.Access) []irods.Access {
	var revoke []irods.Access
	for _, entry := range access {
		if entry.Level == irods.AccessNull || w.isAdmin(entry.Owner) {
			continue
		}
		revoke = append(revoke, irods.Access{Owner: entry.Owner, Zone: entry.Zone, Level: irods.AccessNull})
	}
	return revoke
}

func (w *Withdrawer) isAdmin(owner string) bool {
	for _, admin := range w.AdminUsers {
		if owner == admin {
			return true
		}
	}
	return false
}
