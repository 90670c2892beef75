package sweep

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"keel/internal/irods"
	"keel/internal/journal"
	"keel/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCatalog struct {
	objects     map[string]*irods.DataObject
	collections map[string]*irods.Collection

	added   map[string][]irods.AVU
	removed []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		objects:     map[string]*irods.DataObject{},
		collections: map[string]*irods.Collection{},
		added:       map[string][]irods.AVU{},
	}
}

func (f *fakeCatalog) ListCollection(_ context.Context, path string, _ bool) (*irods.Collection, error) {
	coll, ok := f.collections[path]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "irods", "list", path, nil)
	}
	return coll, nil
}

func (f *fakeCatalog) ListObject(_ context.Context, path string) (*irods.DataObject, error) {
	obj, ok := f.objects[path]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "irods", "list", path, nil)
	}
	return obj, nil
}

func (f *fakeCatalog) AddObjectMetadata(_ context.Context, path string, avus ...irods.AVU) error {
	obj := f.objects[path]
	obj.AVUs = append(obj.AVUs, avus...)
	f.added[path] = append(f.added[path], avus...)
	return nil
}

func (f *fakeCatalog) RemoveObject(_ context.Context, path string) error {
	delete(f.objects, path)
	f.removed = append(f.removed, path)
	return nil
}

func object(path, checksum string, size int64) *irods.DataObject {
	return &irods.DataObject{
		Path:     path,
		Checksum: checksum,
		Size:     size,
		Replicas: []irods.Replica{
			{Number: 0, Checksum: checksum, Valid: true},
			{Number: 1, Checksum: checksum, Valid: true},
		},
	}
}

const md5X = "11111111111111111111111111111111"
const md5Y = "22222222222222222222222222222222"

func treeCatalog() *fakeCatalog {
	catalog := newFakeCatalog()
	catalog.collections["/seq/1234"] = &irods.Collection{
		Path:        "/seq/1234",
		Objects:     []string{"/seq/1234/a.cram"},
		Collections: []string{"/seq/1234/lane1"},
	}
	catalog.collections["/seq/1234/lane1"] = &irods.Collection{
		Path:    "/seq/1234/lane1",
		Objects: []string{"/seq/1234/lane1/b.cram"},
	}
	catalog.objects["/seq/1234/a.cram"] = object("/seq/1234/a.cram", md5X, 100)
	catalog.objects["/seq/1234/lane1/b.cram"] = object("/seq/1234/lane1/b.cram", md5Y, 200)
	catalog.objects["/archive/1234/a.cram"] = object("/archive/1234/a.cram", md5X, 100)
	catalog.objects["/archive/1234/lane1/b.cram"] = object("/archive/1234/lane1/b.cram", md5Y, 200)
	return catalog
}

func TestConfirmerConfirmsMatchingTree(t *testing.T) {
	catalog := treeCatalog()
	confirmer := &Confirmer{Catalog: catalog, Log: discardLogger()}

	results, err := confirmer.Run(context.Background(), "/seq/1234", "/archive/1234")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, result := range results {
		if result.Outcome != journal.OutcomeConfirmed {
			t.Fatalf("expected confirmed, got %s (%s)", result.Outcome, result.Detail)
		}
	}

	marked := catalog.added["/seq/1234/a.cram"]
	want := irods.AVU{Attribute: irods.AttrCopyConfirmedMD5, Value: md5X}
	if len(marked) != 1 || marked[0] != want {
		t.Fatalf("expected %v, got %v", want, marked)
	}
}

func TestConfirmerFailsOnMismatchAndMissing(t *testing.T) {
	catalog := treeCatalog()
	catalog.objects["/archive/1234/a.cram"] = object("/archive/1234/a.cram", md5Y, 100)
	delete(catalog.objects, "/archive/1234/lane1/b.cram")
	confirmer := &Confirmer{Catalog: catalog, Log: discardLogger()}

	results, err := confirmer.Run(context.Background(), "/seq/1234", "/archive/1234")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, result := range results {
		if result.Outcome != journal.OutcomeFailed {
			t.Fatalf("expected failed for %s, got %s", result.Path, result.Outcome)
		}
	}
	if len(catalog.added) != 0 {
		t.Fatal("failed confirmations must not mark anything")
	}
}

func TestConfirmerAlreadyConfirmedSkipped(t *testing.T) {
	catalog := treeCatalog()
	catalog.objects["/seq/1234/a.cram"].AVUs = []irods.AVU{
		{Attribute: irods.AttrCopyConfirmedMD5, Value: md5X},
	}
	confirmer := &Confirmer{Catalog: catalog, Log: discardLogger()}

	results, err := confirmer.Run(context.Background(), "/seq/1234", "/archive/1234")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", results[0].Outcome)
	}
}

type fakeConfirmations struct {
	confirmed map[string]string
}

func (f *fakeConfirmations) HasConfirmation(_ context.Context, target, checksum string) (bool, error) {
	return f.confirmed[target] == checksum, nil
}

func TestRemoverRequiresBothWitnesses(t *testing.T) {
	catalog := newFakeCatalog()
	// Both witnesses present.
	full := object("/seq/1/full.cram", md5X, 100)
	full.AVUs = []irods.AVU{{Attribute: irods.AttrCopyConfirmedMD5, Value: md5X}}
	catalog.objects[full.Path] = full
	// AVU present, no journal record.
	avuOnly := object("/seq/1/avu.cram", md5X, 50)
	avuOnly.AVUs = []irods.AVU{{Attribute: irods.AttrCopyConfirmedMD5, Value: md5X}}
	catalog.objects[avuOnly.Path] = avuOnly
	// Journal record present, no AVU.
	journalOnly := object("/seq/1/journal.cram", md5X, 50)
	catalog.objects[journalOnly.Path] = journalOnly

	confirmations := &fakeConfirmations{confirmed: map[string]string{
		"/seq/1/full.cram":    md5X,
		"/seq/1/journal.cram": md5X,
	}}
	remover := &Remover{
		Catalog:       catalog,
		Confirmations: confirmations,
		Log:           discardLogger(),
		ManifestDir:   t.TempDir(),
	}

	results, manifestPath, err := remover.Run(context.Background(),
		[]string{"/seq/1/full.cram", "/seq/1/avu.cram", "/seq/1/journal.cram"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if results[0].Outcome != journal.OutcomeRemoved {
		t.Fatalf("expected removed, got %s (%s)", results[0].Outcome, results[0].Detail)
	}
	if results[1].Outcome != journal.OutcomeFailed || results[2].Outcome != journal.OutcomeFailed {
		t.Fatalf("single-witness objects must not be removed: %+v", results[1:])
	}
	if len(catalog.removed) != 1 || catalog.removed[0] != "/seq/1/full.cram" {
		t.Fatalf("expected only full.cram removed, got %v", catalog.removed)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/seq/1/full.cram" || entries[0].Checksum != md5X {
		t.Fatalf("unexpected manifest %+v", entries)
	}
}

func TestRemoverDryRun(t *testing.T) {
	catalog := newFakeCatalog()
	obj := object("/seq/1/a.cram", md5X, 100)
	obj.AVUs = []irods.AVU{{Attribute: irods.AttrCopyConfirmedMD5, Value: md5X}}
	catalog.objects[obj.Path] = obj

	remover := &Remover{
		Catalog:       catalog,
		Confirmations: &fakeConfirmations{confirmed: map[string]string{"/seq/1/a.cram": md5X}},
		Log:           discardLogger(),
		ManifestDir:   t.TempDir(),
		DryRun:        true,
	}

	results, manifestPath, err := remover.Run(context.Background(), []string{"/seq/1/a.cram"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Outcome != journal.OutcomeSkipped {
		t.Fatalf("expected skipped, got %s", results[0].Outcome)
	}
	if manifestPath != "" {
		t.Fatal("dry run must not write a manifest")
	}
	if len(catalog.removed) != 0 {
		t.Fatal("dry run must not remove")
	}
}
