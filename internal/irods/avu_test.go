package irods

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiffAVUsConverges(t *testing.T) {
	current := []AVU{
		{Attribute: AttrSample, Value: "old name"},
		{Attribute: AttrSampleID, Value: "S1"},
		{Attribute: "custom", Value: "keep me"},
	}
	desired := []AVU{
		{Attribute: AttrSample, Value: "new name"},
		{Attribute: AttrSampleID, Value: "S1"},
		{Attribute: AttrSampleAccession, Value: "ERS1"},
	}
	managed := []string{AttrSample, AttrSampleID, AttrSampleAccession}

	add, remove := DiffAVUs(current, desired, managed)

	wantAdd := []AVU{
		{Attribute: AttrSampleAccession, Value: "ERS1"},
		{Attribute: AttrSample, Value: "new name"},
	}
	SortAVUs(wantAdd)
	wantRemove := []AVU{{Attribute: AttrSample, Value: "old name"}}

	if diff := cmp.Diff(wantAdd, add); diff != "" {
		t.Fatalf("additions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRemove, remove); diff != "" {
		t.Fatalf("removals mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffAVUsIgnoresUnmanaged(t *testing.T) {
	current := []AVU{{Attribute: "custom", Value: "x"}}
	desired := []AVU{}
	add, remove := DiffAVUs(current, desired, []string{AttrSample})
	if len(add) != 0 || len(remove) != 0 {
		t.Fatalf("expected no changes, got add=%v remove=%v", add, remove)
	}
}

func TestDiffAVUsIdempotent(t *testing.T) {
	avus := []AVU{
		{Attribute: AttrStudyID, Value: "5000"},
		{Attribute: AttrStudy, Value: "A study"},
	}
	add, remove := DiffAVUs(avus, avus, []string{AttrStudyID, AttrStudy})
	if len(add) != 0 || len(remove) != 0 {
		t.Fatalf("expected converged state, got add=%v remove=%v", add, remove)
	}
}

func TestConsensusChecksumDisagreement(t *testing.T) {
	obj := DataObject{Replicas: []Replica{
		{Number: 0, Checksum: "aaa", Valid: true},
		{Number: 1, Checksum: "bbb", Valid: true},
	}}
	if _, ok := obj.ConsensusChecksum(); ok {
		t.Fatal("expected disagreement to yield no consensus")
	}
}

func TestConsensusChecksumSkipsInvalid(t *testing.T) {
	obj := DataObject{Replicas: []Replica{
		{Number: 0, Checksum: "aaa", Valid: true},
		{Number: 1, Checksum: "stale", Valid: false},
	}}
	checksum, ok := obj.ConsensusChecksum()
	if !ok || checksum != "aaa" {
		t.Fatalf("unexpected consensus: %q %v", checksum, ok)
	}
}
