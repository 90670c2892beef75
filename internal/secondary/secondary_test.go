package secondary

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"keel/internal/irods"
	"keel/internal/mlwh"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// fakeCatalog serves objects and collections from memory, answers metadata
// queries by exact AVU match, and records every mutation.
type fakeCatalog struct {
	objects     map[string]*irods.DataObject
	collections map[string]*irods.Collection

	objAdded    map[string][]irods.AVU
	objRemoved  map[string][]irods.AVU
	collAdded   map[string][]irods.AVU
	collRemoved map[string][]irods.AVU
	accessSet   map[string][]irods.Access
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		objects:     map[string]*irods.DataObject{},
		collections: map[string]*irods.Collection{},
		objAdded:    map[string][]irods.AVU{},
		objRemoved:  map[string][]irods.AVU{},
		collAdded:   map[string][]irods.AVU{},
		collRemoved: map[string][]irods.AVU{},
		accessSet:   map[string][]irods.Access{},
	}
}

func (f *fakeCatalog) FindObjectsByMetadata(_ context.Context, avus ...irods.AVU) ([]string, error) {
	var paths []string
	for path, obj := range f.objects {
		matches := true
		for _, avu := range avus {
			if !obj.HasMeta(avu) {
				matches = false
				break
			}
		}
		if matches {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (f *fakeCatalog) FindCollectionsByMetadata(_ context.Context, avus ...irods.AVU) ([]string, error) {
	var paths []string
	for path, coll := range f.collections {
		matches := true
		for _, avu := range avus {
			if !coll.HasMeta(avu) {
				matches = false
				break
			}
		}
		if matches {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (f *fakeCatalog) ListObject(_ context.Context, path string) (*irods.DataObject, error) {
	return f.objects[path], nil
}

func (f *fakeCatalog) ListCollection(_ context.Context, path string, _ bool) (*irods.Collection, error) {
	return f.collections[path], nil
}

func (f *fakeCatalog) AddObjectMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	obj := f.objects[path]
	obj.AVUs = append(obj.AVUs, avus...)
	f.objAdded[path] = append(f.objAdded[path], avus...)
	return nil
}

func (f *fakeCatalog) RemoveObjectMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	obj := f.objects[path]
	obj.AVUs = dropAVUs(obj.AVUs, avus)
	f.objRemoved[path] = append(f.objRemoved[path], avus...)
	return nil
}

func (f *fakeCatalog) AddCollectionMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	coll := f.collections[path]
	coll.AVUs = append(coll.AVUs, avus...)
	f.collAdded[path] = append(f.collAdded[path], avus...)
	return nil
}

func (f *fakeCatalog) RemoveCollectionMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	coll := f.collections[path]
	coll.AVUs = dropAVUs(coll.AVUs, avus)
	f.collRemoved[path] = append(f.collRemoved[path], avus...)
	return nil
}

func (f *fakeCatalog) SetObjectAccess(_ context.Context, path string, access ...irods.Access) error {
	f.accessSet[path] = append(f.accessSet[path], access...)
	return nil
}

func dropAVUs(existing, drop []irods.AVU) []irods.AVU {
	var kept []irods.AVU
	for _, avu := range existing {
		found := false
		for _, d := range drop {
			if avu == d {
				found = true
				break
			}
		}
		if !found {
			kept = append(kept, avu)
		}
	}
	return kept
}

type fakeWarehouse struct {
	sampleIDs []string
	studyIDs  []string
	samples   map[string]mlwh.Sample
	studies   map[string]mlwh.Study
	flowcells []mlwh.OseqFlowcell
}

func (f *fakeWarehouse) UpdatedSampleIDs(_ context.Context, _, _ time.Time) ([]string, error) {
	return f.sampleIDs, nil
}

func (f *fakeWarehouse) UpdatedStudyIDs(_ context.Context, _, _ time.Time) ([]string, error) {
	return f.studyIDs, nil
}

func (f *fakeWarehouse) SampleByLimsID(_ context.Context, sampleID string) (*mlwh.Sample, error) {
	sample := f.samples[sampleID]
	return &sample, nil
}

func (f *fakeWarehouse) StudyByLimsID(_ context.Context, studyID string) (*mlwh.Study, error) {
	study := f.studies[studyID]
	return &study, nil
}

func (f *fakeWarehouse) UpdatedOntFlowcells(_ context.Context, _, _ time.Time) ([]mlwh.OseqFlowcell, error) {
	return f.flowcells, nil
}

func hasChange(detail, fragment string) bool {
	return strings.Contains(detail, fragment)
}
