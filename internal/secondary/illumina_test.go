package secondary

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/mlwh"
)

var window = struct{ since, until time.Time }{
	since: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	until: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
}

func TestSampleAVUs(t *testing.T) {
	sample := mlwh.Sample{
		IDSampleLims: "S1",
		Name:         ptr("sample-one"),
		SupplierName: ptr("supplier-one"),
		DonorID:      ptr("donor-one"),
	}

	got := SampleAVUs(sample)
	want := []irods.AVU{
		{Attribute: irods.AttrSampleDonorID, Value: "donor-one"},
		{Attribute: irods.AttrSampleID, Value: "S1"},
		{Attribute: irods.AttrSampleSupplier, Value: "supplier-one"},
		{Attribute: irods.AttrSample, Value: "sample-one"},
	}
	irods.SortAVUs(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected AVUs (-want +got):\n%s", diff)
	}
}

func TestAccessGroup(t *testing.T) {
	if got := AccessGroup(mlwh.Study{IDStudyLims: "5000"}); got != "ss_5000" {
		t.Fatalf("expected ss_5000, got %s", got)
	}
	study := mlwh.Study{IDStudyLims: "5000", DataAccessGroup: ptr("special_group")}
	if got := AccessGroup(study); got != "special_group" {
		t.Fatalf("expected special_group, got %s", got)
	}
}

func TestUpdaterConvergesSampleMetadata(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.objects["/seq/1/1.cram"] = &irods.DataObject{
		Path: "/seq/1/1.cram",
		AVUs: []irods.AVU{
			{Attribute: irods.AttrSampleID, Value: "S1"},
			{Attribute: irods.AttrSample, Value: "stale-name"},
			{Attribute: "other_attr", Value: "untouched"},
		},
	}
	warehouse := &fakeWarehouse{
		sampleIDs: []string{"S1"},
		samples: map[string]mlwh.Sample{
			"S1": {IDSampleLims: "S1", Name: ptr("fresh-name")},
		},
	}
	updater := &Updater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger(), Zone: "seq"}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 || results[0].Outcome != journal.OutcomeUpdated {
		t.Fatalf("expected one updated result, got %+v", results)
	}

	removed := catalog.objRemoved["/seq/1/1.cram"]
	if len(removed) != 1 || removed[0].Value != "stale-name" {
		t.Fatalf("expected stale name removed, got %v", removed)
	}
	added := catalog.objAdded["/seq/1/1.cram"]
	if len(added) != 1 || added[0].Value != "fresh-name" {
		t.Fatalf("expected fresh name added, got %v", added)
	}

	obj := catalog.objects["/seq/1/1.cram"]
	if len(obj.MetaValues("other_attr")) != 1 {
		t.Fatal("unmanaged attributes must not change")
	}
}

func TestUpdaterNoChangesPasses(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.objects["/seq/1/1.cram"] = &irods.DataObject{
		Path: "/seq/1/1.cram",
		AVUs: []irods.AVU{
			{Attribute: irods.AttrSampleID, Value: "S1"},
			{Attribute: irods.AttrSample, Value: "same-name"},
		},
	}
	warehouse := &fakeWarehouse{
		sampleIDs: []string{"S1"},
		samples: map[string]mlwh.Sample{
			"S1": {IDSampleLims: "S1", Name: ptr("same-name")},
		},
	}
	updater := &Updater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger(), Zone: "seq"}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomePassed {
		t.Fatalf("expected passed, got %s (%s)", results[0].Outcome, results[0].Detail)
	}
}

func TestUpdaterGrantsStudyAccess(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.objects["/seq/1/1.cram"] = &irods.DataObject{
		Path: "/seq/1/1.cram",
		AVUs: []irods.AVU{
			{Attribute: irods.AttrStudyID, Value: "5000"},
			{Attribute: irods.AttrStudy, Value: "study-name"},
		},
	}
	warehouse := &fakeWarehouse{
		studyIDs: []string{"5000"},
		studies: map[string]mlwh.Study{
			"5000": {IDStudyLims: "5000", Name: ptr("study-name")},
		},
	}
	updater := &Updater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger(), Zone: "seq"}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomeUpdated {
		t.Fatalf("expected updated, got %s (%s)", results[0].Outcome, results[0].Detail)
	}

	granted := catalog.accessSet["/seq/1/1.cram"]
	want := irods.Access{Owner: "ss_5000", Zone: "seq", Level: irods.AccessRead}
	if len(granted) != 1 || granted[0] != want {
		t.Fatalf("expected %v granted, got %v", want, granted)
	}
}

func TestUpdaterSkipsAccessForWithdrawnObjects(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.objects["/seq/1/1.cram"] = &irods.DataObject{
		Path: "/seq/1/1.cram",
		AVUs: []irods.AVU{
			{Attribute: irods.AttrStudyID, Value: "5000"},
			{Attribute: irods.AttrStudy, Value: "study-name"},
			{Attribute: irods.AttrConsentWithdrawn, Value: "1"},
		},
	}
	warehouse := &fakeWarehouse{
		studyIDs: []string{"5000"},
		studies: map[string]mlwh.Study{
			"5000": {IDStudyLims: "5000", Name: ptr("study-name")},
		},
	}
	updater := &Updater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger(), Zone: "seq"}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomePassed {
		t.Fatalf("expected passed, got %s (%s)", results[0].Outcome, results[0].Detail)
	}
	if len(catalog.accessSet) != 0 {
		t.Fatal("withdrawn objects must keep their locked ACL")
	}
}

func TestUpdaterDryRun(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.objects["/seq/1/1.cram"] = &irods.DataObject{
		Path: "/seq/1/1.cram",
		AVUs: []irods.AVU{{Attribute: irods.AttrSampleID, Value: "S1"}},
	}
	warehouse := &fakeWarehouse{
		sampleIDs: []string{"S1"},
		samples: map[string]mlwh.Sample{
			"S1": {IDSampleLims: "S1", Name: ptr("new-name")},
		},
	}
	updater := &Updater{Warehouse: warehouse, Catalog: catalog, Log: discardLogger(), Zone: "seq", DryRun: true}

	results, err := updater.Run(context.Background(), window.since, window.until)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", results[0].Outcome)
	}
	if !hasChange(results[0].Detail, "new-name") {
		t.Fatalf("detail should describe the planned change, got %q", results[0].Detail)
	}
	if len(catalog.objAdded)+len(catalog.objRemoved) != 0 {
		t.Fatal("dry run must not mutate")
	}
}
