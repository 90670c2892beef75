package secondary

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/mlwh"
)

// OntWarehouse supplies the changed ONT flowcell records.
type OntWarehouse interface {
	UpdatedOntFlowcells(ctx context.Context, since, until time.Time) ([]mlwh.OseqFlowcell, error)
}

// OntCatalog is the slice of the data catalog the ONT updater needs.
type OntCatalog interface {
	FindCollectionsByMetadata(ctx context.Context, avus ...irods.AVU) ([]string, error)
	ListCollection(ctx context.Context, path string, contents bool) (*irods.Collection, error)
	AddCollectionMetadata(ctx context.Context, path string, avus ...irods.AVU) error
	RemoveCollectionMetadata(ctx context.Context, path string, avus ...irods.AVU) error
}

// OntUpdater annotates ONT run collections with sample and study metadata.
// Run collections are located by experiment name and instrument slot, which
// the instrument records at upload time. Multiplexed runs are annotated on
// the per-tag barcode subcollection instead of the run root.
type OntUpdater struct {
	Warehouse OntWarehouse
	Catalog   OntCatalog
	Log       *slog.Logger
	// RootCollection restricts matches to the ONT archive area; metadata
	// queries are zone wide and experiment names are not unique forever.
	RootCollection string
	DryRun         bool
}

// Run processes ONT flowcells whose warehouse records changed in the window.
func (u *OntUpdater) Run(ctx context.Context, since, until time.Time) ([]Result, error) {
	flowcells, err := u.Warehouse.UpdatedOntFlowcells(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("query updated ONT flowcells: %w", err)
	}
	u.Log.Info("ONT metadata update",
		slog.Int("flowcells", len(flowcells)),
		slog.Time("since", since),
		slog.Time("until", until))

	var results []Result
	for _, flowcell := range flowcells {
		flowcellResults, err := u.updateFlowcell(ctx, flowcell)
		if err != nil {
			return nil, err
		}
		results = append(results, flowcellResults...)
	}
	return results, nil
}

func (u *OntUpdater) updateFlowcell(ctx context.Context, flowcell mlwh.OseqFlowcell) ([]Result, error) {
	slot := strconv.Itoa(int(flowcell.InstrumentSlot))
	collections, err := u.Catalog.FindCollectionsByMetadata(ctx,
		irods.AVU{Attribute: irods.AttrExperimentName, Value: flowcell.ExperimentName},
		irods.AVU{Attribute: irods.AttrInstrumentSlot, Value: slot})
	if err != nil {
		return nil, fmt.Errorf("find collections for experiment %s slot %s: %w",
			flowcell.ExperimentName, slot, err)
	}
	sort.Strings(collections)

	results := make([]Result, 0, len(collections))
	for _, collPath := range collections {
		if u.RootCollection != "" && !strings.HasPrefix(collPath, u.RootCollection+"/") {
			continue
		}
		results = append(results, u.updateCollection(ctx, collPath, flowcell))
	}
	return results, nil
}

func (u *OntUpdater) updateCollection(ctx context.Context, collPath string, flowcell mlwh.OseqFlowcell) Result {
	desired := append(SampleAVUs(flowcell.Sample), StudyAVUs(flowcell.Study)...)
	managed := append([]string{}, ManagedSampleAttributes...)
	managed = append(managed, ManagedStudyAttributes...)

	if flowcell.FlowcellID != nil && *flowcell.FlowcellID != "" {
		desired = append(desired, irods.AVU{Attribute: irods.AttrFlowcellID, Value: *flowcell.FlowcellID})
		managed = append(managed, irods.AttrFlowcellID)
	}

	target := collPath
	if flowcell.TagIdentifier != nil {
		barcode, err := u.barcodeCollection(ctx, collPath, *flowcell.TagIdentifier)
		if err != nil {
			return Result{Path: collPath, Outcome: journal.OutcomeReview, Detail: "barcode lookup error", Err: err}
		}
		if barcode == "" {
			return Result{
				Path:    collPath,
				Outcome: journal.OutcomeReview,
				Detail:  fmt.Sprintf("no barcode collection for tag %s", *flowcell.TagIdentifier),
			}
		}
		target = barcode
		desired = append(desired, irods.AVU{Attribute: irods.AttrTagIdentifier, Value: *flowcell.TagIdentifier})
		managed = append(managed, irods.AttrTagIdentifier)
	}

	coll, err := u.Catalog.ListCollection(ctx, target, false)
	if err != nil {
		return Result{Path: target, Outcome: journal.OutcomeReview, Detail: "list error", Err: err}
	}

	add, remove := irods.DiffAVUs(coll.AVUs, desired, managed)
	if len(add) == 0 && len(remove) == 0 {
		return Result{Path: target, Outcome: journal.OutcomePassed}
	}

	detail := changeDetail(add, remove, nil)
	if u.DryRun {
		return Result{Path: target, Outcome: journal.OutcomeSkipped, Detail: "dry-run: " + detail}
	}

	if len(remove) > 0 {
		if err := u.Catalog.RemoveCollectionMetadata(ctx, target, remove...); err != nil {
			return Result{Path: target, Outcome: journal.OutcomeReview, Detail: "metadata remove error", Err: err}
		}
	}
	if len(add) > 0 {
		if err := u.Catalog.AddCollectionMetadata(ctx, target, add...); err != nil {
			return Result{Path: target, Outcome: journal.OutcomeReview, Detail: "metadata add error", Err: err}
		}
	}

	u.Log.Info("updated ONT collection",
		slog.String("path", target),
		slog.String("experiment", flowcell.ExperimentName),
		slog.String("changes", detail))
	return Result{Path: target, Outcome: journal.OutcomeUpdated, Detail: detail}
}

// barcodeCollection finds the member collection holding the reads for a tag.
// The instrument names these barcode01, barcode02 and so on.
func (u *OntUpdater) barcodeCollection(ctx context.Context, collPath, tagIdentifier string) (string, error) {
	coll, err := u.Catalog.ListCollection(ctx, collPath, true)
	if err != nil {
		return "", err
	}

	name := barcodeName(tagIdentifier)
	for _, member := range coll.Contents {
		if path.Base(member) == name {
			return member, nil
		}
	}
	return "", nil
}

func barcodeName(tagIdentifier string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(tagIdentifier)); err == nil {
		return fmt.Sprintf("barcode%02d", n)
	}
	return "barcode" + tagIdentifier
}
