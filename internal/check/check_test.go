package check

import (
	"context"
	"io"
	"log/slog"

	"keel/internal/irods"
	"keel/internal/services"
)

// fakeCatalog serves objects from memory and records mutations.
type fakeCatalog struct {
	objects map[string]*irods.DataObject

	added      []irods.AVU
	removed    []irods.AVU
	replicated []string
	trimmed    []int

	checksumErr error
}

func newFakeCatalog(objects ...*irods.DataObject) *fakeCatalog {
	catalog := &fakeCatalog{objects: map[string]*irods.DataObject{}}
	for _, obj := range objects {
		catalog.objects[obj.Path] = obj
	}
	return catalog
}

func (f *fakeCatalog) ListObject(_ context.Context, path string) (*irods.DataObject, error) {
	obj, ok := f.objects[path]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "irods", "list", path, nil)
	}
	return obj, nil
}

func (f *fakeCatalog) Checksum(_ context.Context, path string, _ bool) (string, error) {
	if f.checksumErr != nil {
		return "", f.checksumErr
	}
	obj, ok := f.objects[path]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "irods", "checksum", path, nil)
	}
	if consensus, ok := obj.ConsensusChecksum(); ok {
		obj.Checksum = consensus
	}
	return obj.Checksum, nil
}

func (f *fakeCatalog) AddObjectMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	obj := f.objects[path]
	obj.AVUs = append(obj.AVUs, avus...)
	f.added = append(f.added, avus...)
	return nil
}

func (f *fakeCatalog) RemoveObjectMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	obj := f.objects[path]
	var kept []irods.AVU
	for _, existing := range obj.AVUs {
		drop := false
		for _, avu := range avus {
			if existing == avu {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, existing)
		}
	}
	obj.AVUs = kept
	f.removed = append(f.removed, avus...)
	return nil
}

func (f *fakeCatalog) Replicate(_ context.Context, path, _ string) error {
	f.replicated = append(f.replicated, path)
	return nil
}

func (f *fakeCatalog) Trim(_ context.Context, path string, replicaNumber, _ int) error {
	f.trimmed = append(f.trimmed, replicaNumber)
	obj := f.objects[path]
	var kept []irods.Replica
	for _, replica := range obj.Replicas {
		if replica.Number != replicaNumber {
			kept = append(kept, replica)
		}
	}
	obj.Replicas = kept
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func goodObject(path, checksum string) *irods.DataObject {
	return &irods.DataObject{
		Path:     path,
		Checksum: checksum,
		AVUs:     []irods.AVU{{Attribute: irods.AttrMD5, Value: checksum}},
		Replicas: []irods.Replica{
			{Number: 0, Checksum: checksum, Valid: true},
			{Number: 1, Checksum: checksum, Valid: true},
		},
	}
}
