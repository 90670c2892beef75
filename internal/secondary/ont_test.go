package secondary

import (
	"context"
	"testing"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/mlwh"
)

func ontFlowcell(tagIdentifier *string) mlwh.OseqFlowcell {
	return mlwh.OseqFlowcell{
		ExperimentName: "EXP-001",
		InstrumentSlot: 2,
		TagIdentifier:  tagIdentifier,
		FlowcellID:     ptr("FAK12345"),
		Sample:         mlwh.Sample{IDSampleLims: "S1", Name: ptr("sample-one")},
		Study:          mlwh.Study{IDStudyLims: "5000", Name: ptr("study-one")},
	}
}

func runCollectionAVUs() []irods.AVU {
	return []irods.AVU{
		{Attribute: irods.AttrExperimentName, Value: "EXP-001"},
		{Attribute: irods.AttrInstrumentSlot, Value: "2"},
	}
}

func TestOntAnnotatesRunCollection(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.collections["/seq/ont/run1"] = &irods.Collection{
		Path: "/seq/ont/run1",
		AVUs: runCollectionAVUs(),
	}
	warehouse := &fakeWarehouse{flowcells: []mlwh.OseqFlowcell{ontFlowcell(nil)}}
	updater := &OntUpdater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger()}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 || results[0].Outcome != journal.OutcomeUpdated {
		t.Fatalf("expected one updated result, got %+v", results)
	}

	coll := catalog.collections["/seq/ont/run1"]
	for _, want := range []irods.AVU{
		{Attribute: irods.AttrSampleID, Value: "S1"},
		{Attribute: irods.AttrSample, Value: "sample-one"},
		{Attribute: irods.AttrStudyID, Value: "5000"},
		{Attribute: irods.AttrFlowcellID, Value: "FAK12345"},
	} {
		if !coll.HasMeta(want) {
			t.Fatalf("expected %v on run collection, have %v", want, coll.AVUs)
		}
	}
}

func TestOntAnnotatesBarcodeCollection(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.collections["/seq/ont/run1"] = &irods.Collection{
		Path:     "/seq/ont/run1",
		AVUs:     runCollectionAVUs(),
		Contents: []string{"/seq/ont/run1/barcode01", "/seq/ont/run1/barcode02"},
	}
	catalog.collections["/seq/ont/run1/barcode01"] = &irods.Collection{Path: "/seq/ont/run1/barcode01"}
	warehouse := &fakeWarehouse{flowcells: []mlwh.OseqFlowcell{ontFlowcell(ptr("1"))}}
	updater := &OntUpdater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger()}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 || results[0].Outcome != journal.OutcomeUpdated {
		t.Fatalf("expected one updated result, got %+v", results)
	}
	if results[0].Path != "/seq/ont/run1/barcode01" {
		t.Fatalf("expected barcode collection updated, got %s", results[0].Path)
	}

	barcode := catalog.collections["/seq/ont/run1/barcode01"]
	if !barcode.HasMeta(irods.AVU{Attribute: irods.AttrTagIdentifier, Value: "1"}) {
		t.Fatalf("expected tag identifier on barcode collection, have %v", barcode.AVUs)
	}
	if len(catalog.collAdded["/seq/ont/run1"]) != 0 {
		t.Fatal("run root must not be annotated for multiplexed flowcells")
	}
}

func TestOntMissingBarcodeNeedsReview(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.collections["/seq/ont/run1"] = &irods.Collection{
		Path:     "/seq/ont/run1",
		AVUs:     runCollectionAVUs(),
		Contents: []string{"/seq/ont/run1/barcode02"},
	}
	warehouse := &fakeWarehouse{flowcells: []mlwh.OseqFlowcell{ontFlowcell(ptr("1"))}}
	updater := &OntUpdater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger()}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomeReview {
		t.Fatalf("expected review, got %s (%s)", results[0].Outcome, results[0].Detail)
	}
}

func TestOntUnchangedPasses(t *testing.T) {
	catalog := newFakeCatalog()
	avus := append(runCollectionAVUs(),
		irods.AVU{Attribute: irods.AttrSampleID, Value: "S1"},
		irods.AVU{Attribute: irods.AttrSample, Value: "sample-one"},
		irods.AVU{Attribute: irods.AttrStudyID, Value: "5000"},
		irods.AVU{Attribute: irods.AttrStudy, Value: "study-one"},
		irods.AVU{Attribute: irods.AttrFlowcellID, Value: "FAK12345"},
	)
	catalog.collections["/seq/ont/run1"] = &irods.Collection{Path: "/seq/ont/run1", AVUs: avus}
	warehouse := &fakeWarehouse{flowcells: []mlwh.OseqFlowcell{ontFlowcell(nil)}}
	updater := &OntUpdater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger()}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomePassed {
		t.Fatalf("expected passed, got %s (%s)", results[0].Outcome, results[0].Detail)
	}
}

func TestOntIgnoresCollectionsOutsideRoot(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.collections["/seq/ont/run1"] = &irods.Collection{
		Path: "/seq/ont/run1",
		AVUs: runCollectionAVUs(),
	}
	catalog.collections["/scratch/run1"] = &irods.Collection{
		Path: "/scratch/run1",
		AVUs: runCollectionAVUs(),
	}
	warehouse := &fakeWarehouse{flowcells: []mlwh.OseqFlowcell{ontFlowcell(nil)}}
	updater := &OntUpdater{
		Warehouse:      warehouse,
		Catalog:        catalog,
		Log:            discardLogger(),
		RootCollection: "/seq/ont",
	}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 || results[0].Path != "/seq/ont/run1" {
		t.Fatalf("expected only the archive collection, got %+v", results)
	}
}

func TestBarcodeName(t *testing.T) {
	cases := map[string]string{
		"1":   "barcode01",
		"12":  "barcode12",
		"007": "barcode07",
		"X9":  "barcodeX9",
	}
	for tag, want := range cases {
		if got := barcodeName(tag); got != want {
			t.Fatalf("barcodeName(%q): expected %q, got %q", tag, want, got)
		}
	}
}
