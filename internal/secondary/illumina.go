package secondary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/mlwh"
)

// Warehouse supplies the changed sample and study records.
type Warehouse interface {
	UpdatedSampleIDs(ctx context.Context, since, until time.Time) ([]string, error)
	UpdatedStudyIDs(ctx context.Context, since, until time.Time) ([]string, error)
	SampleByLimsID(ctx context.Context, sampleID string) (*mlwh.Sample, error)
	StudyByLimsID(ctx context.Context, studyID string) (*mlwh.Study, error)
}

// Catalog is the slice of the data catalog the updater needs.
type Catalog interface {
	FindObjectsByMetadata(ctx context.Context, avus ...irods.AVU) ([]string, error)
	ListObject(ctx context.Context, path string) (*irods.DataObject, error)
	AddObjectMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	RemoveObjectMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	SetObjectAccess(ctx context.Context, path string, access ...irods.Access) error
}

// Result is the outcome of updating one data object.
type Result struct {
	Path    string
	Outcome journal.Outcome
	Detail  string
	Err     error
}

// Updater converges the sample and study metadata of Illumina data objects
// with the warehouse, for records changed inside a time window.
type Updater struct {
	Warehouse Warehouse
	Catalog   Catalog
	Log       *slog.Logger
	Zone      string
	DryRun    bool
}

// Run processes samples and studies updated between since and until.
func (u *Updater) Run(ctx context.Context, since, until time.Time) ([]Result, error) {
	sampleIDs, err := u.Warehouse.UpdatedSampleIDs(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("query updated samples: %w", err)
	}
	studyIDs, err := u.Warehouse.UpdatedStudyIDs(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("query updated studies: %w", err)
	}
	u.Log.Info("secondary metadata update",
		slog.Int("samples", len(sampleIDs)),
		slog.Int("studies", len(studyIDs)),
		slog.Time("since", since),
		slog.Time("until", until))

	var results []Result
	for _, sampleID := range sampleIDs {
		sampleResults, err := u.updateSample(ctx, sampleID)
		if err != nil {
			return nil, err
		}
		results = append(results, sampleResults...)
	}
	for _, studyID := range studyIDs {
		studyResults, err := u.updateStudy(ctx, studyID)
		if err != nil {
			return nil, err
		}
		results = append(results, studyResults...)
	}
	return results, nil
}

func (u *Updater) updateSample(ctx context.Context, sampleID string) ([]Result, error) {
	sample, err := u.Warehouse.SampleByLimsID(ctx, sampleID)
	if err != nil {
		return nil, fmt.Errorf("load sample %s: %w", sampleID, err)
	}
	paths, err := u.Catalog.FindObjectsByMetadata(ctx,
		irods.AVU{Attribute: irods.AttrSampleID, Value: sampleID})
	if err != nil {
		return nil, fmt.Errorf("find objects for sample %s: %w", sampleID, err)
	}
	sort.Strings(paths)

	desired := SampleAVUs(*sample)
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, u.converge(ctx, path, desired, ManagedSampleAttributes, nil))
	}
	return results, nil
}

func (u *Updater) updateStudy(ctx context.Context, studyID string) ([]Result, error) {
	study, err := u.Warehouse.StudyByLimsID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("load study %s: %w", studyID, err)
	}
	paths, err := u.Catalog.FindObjectsByMetadata(ctx,
		irods.AVU{Attribute: irods.AttrStudyID, Value: studyID})
	if err != nil {
		return nil, fmt.Errorf("find objects for study %s: %w", studyID, err)
	}
	sort.Strings(paths)

	desired := StudyAVUs(*study)
	group := AccessGroup(*study)
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, u.converge(ctx, path, desired, ManagedStudyAttributes, &group))
	}
	return results, nil
}

// converge brings one object's managed metadata, and optionally its study
// access group, in line with the warehouse. Consent-withdrawn objects keep
// their locked-down ACL.
func (u *Updater) converge(ctx context.Context, path string, desired []irods.AVU, managed []string, group *string) Result {
	obj, err := u.Catalog.ListObject(ctx, path)
	if err != nil {
		return Result{Path: path, Outcome: journal.OutcomeReview, Detail: "list error", Err: err}
	}

	add, remove := irods.DiffAVUs(obj.AVUs, desired, managed)

	var grant *irods.Access
	withdrawn := len(obj.MetaValues(irods.AttrConsentWithdrawn)) > 0
	if group != nil && !withdrawn && !hasReadAccess(obj.Access, *group) {
		grant = &irods.Access{Owner: *group, Zone: u.Zone, Level: irods.AccessRead}
	}

	if len(add) == 0 && len(remove) == 0 && grant == nil {
		return Result{Path: path, Outcome: journal.OutcomePassed}
	}

	detail := changeDetail(add, remove, grant)
	if u.DryRun {
		return Result{Path: path, Outcome: journal.OutcomeSkipped, Detail: "dry-run: " + detail}
	}

	if len(remove) > 0 {
		if err := u.Catalog.RemoveObjectMetadata(ctx, path, remove...); err != nil {
			return Result{Path: path, Outcome: journal.OutcomeReview, Detail: "metadata remove error", Err: err}
		}
	}
	if len(add) > 0 {
		if err := u.Catalog.AddObjectMetadata(ctx, path, add...); err != nil {
			return Result{Path: path, Outcome: journal.OutcomeReview, Detail: "metadata add error", Err: err}
		}
	}
	if grant != nil {
		if err := u.Catalog.SetObjectAccess(ctx, path, *grant); err != nil {
			return Result{Path: path, Outcome: journal.OutcomeReview, Detail: "chmod error", Err: err}
		}
	}

	u.Log.Info("updated secondary metadata", slog.String("path", path), slog.String("changes", detail))
	return Result{Path: path, Outcome: journal.OutcomeUpdated, Detail: detail}
}

func hasReadAccess(access []irods.Access, owner string) bool {
	for _, entry := range access {
		if entry.Owner != owner {
			continue
		}
		switch entry.Level {
		case irods.AccessRead, irods.AccessWrite, irods.AccessOwn:
			return true
		}
	}
	return false
}

func changeDetail(add, remove []irods.AVU, grant *irods.Access) string {
	var parts []string
	for _, avu := range add {
		parts = append(parts, "+"+avu.Attribute+"="+avu.Value)
	}
	for _, avu := range remove {
		parts = append(parts, "-"+avu.Attribute+"="+avu.Value)
	}
	if grant != nil {
		parts = append(parts, "read:"+grant.Owner)
	}
	return strings.Join(parts, " ")
}
