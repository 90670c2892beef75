package irods

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"keel/internal/services"
)

type scriptedExecutor struct {
	responses []string
	err       error
	requests  []envelope
	binaries  []string
	args      [][]string
}

func (s *scriptedExecutor) Run(_ context.Context, binary string, cmdArgs []string, stdin []byte) ([]byte, error) {
	s.binaries = append(s.binaries, binary)
	s.args = append(s.args, cmdArgs)
	if len(stdin) > 0 {
		var req envelope
		if err := json.Unmarshal(stdin, &req); err == nil {
			s.requests = append(s.requests, req)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return []byte(`{}`), nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return []byte(next), nil
}

func newTestClient(t *testing.T, exec Executor) *Client {
	t.Helper()
	client, err := New("baton-do", "irepl", "itrim", "seq", 30, WithExecutor(exec))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestListObjectParsesEntity(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{`{
		"operation": "list",
		"target": {"collection": "/seq/1234", "data_object": "1234.cram"},
		"result": {"single": {
			"collection": "/seq/1234",
			"data_object": "1234.cram",
			"checksum": "abc123",
			"size": 2048,
			"avus": [{"attribute": "md5", "value": "abc123"}],
			"access": [{"owner": "irods", "zone": "seq", "level": "own"}],
			"replicates": [
				{"number": 0, "checksum": "abc123", "valid": true},
				{"number": 1, "checksum": "abc123", "valid": true}
			],
			"timestamps": [
				{"created": "2023-02-01T10:00:00Z", "replicates": 0},
				{"modified": "2023-03-01T10:00:00Z", "replicates": 0}
			]
		}}
	}`}}
	client := newTestClient(t, exec)

	obj, err := client.ListObject(context.Background(), "/seq/1234/1234.cram")
	if err != nil {
		t.Fatalf("list object: %v", err)
	}
	if obj.Path != "/seq/1234/1234.cram" {
		t.Fatalf("unexpected path: %q", obj.Path)
	}
	if obj.Checksum != "abc123" || obj.Size != 2048 {
		t.Fatalf("unexpected object: %+v", obj)
	}
	if len(obj.Replicas) != 2 {
		t.Fatalf("unexpected replicas: %+v", obj.Replicas)
	}
	if obj.Created.IsZero() || obj.Modified.IsZero() {
		t.Fatalf("timestamps not parsed: %+v", obj)
	}
	if checksum, ok := obj.ConsensusChecksum(); !ok || checksum != "abc123" {
		t.Fatalf("unexpected consensus: %q %v", checksum, ok)
	}

	req := exec.requests[0]
	if req.Operation != "list" || !req.Arguments.Replicate || !req.Arguments.Timestamp {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestListObjectNotFound(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{`{
		"operation": "list",
		"target": {"collection": "/seq/1234", "data_object": "gone.cram"},
		"error": {"code": -310000, "message": "Path does not exist"}
	}`}}
	client := newTestClient(t, exec)

	_, err := client.ListObject(context.Background(), "/seq/1234/gone.cram")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMetaqueryReturnsPaths(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{`{
		"operation": "metaquery",
		"target": {"collection": ""},
		"result": {"multiple": [
			{"collection": "/seq/1234", "data_object": "1234_1.cram"},
			{"collection": "/seq/1234", "data_object": "1234_2.cram"}
		]}
	}`}}
	client := newTestClient(t, exec)

	paths, err := client.FindObjectsByMetadata(context.Background(), AVU{Attribute: AttrSampleID, Value: "S1"})
	if err != nil {
		t.Fatalf("metaquery: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/seq/1234/1234_1.cram" {
		t.Fatalf("unexpected paths: %v", paths)
	}
	req := exec.requests[0]
	if !req.Arguments.Object || req.Arguments.Zone != "seq" {
		t.Fatalf("unexpected metaquery arguments: %+v", req.Arguments)
	}
}

func TestMetaqueryNoRowsIsEmpty(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{`{
		"operation": "metaquery",
		"target": {"collection": ""},
		"error": {"code": -808000, "message": "CAT_NO_ROWS_FOUND"}
	}`}}
	client := newTestClient(t, exec)

	paths, err := client.FindObjectsByMetadata(context.Background(), AVU{Attribute: AttrStudyID, Value: "99"})
	if err != nil {
		t.Fatalf("metaquery: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}

func TestAddObjectMetadataSendsMetamod(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{`{"operation": "metamod", "target": {"collection": "/seq/1"}}`}}
	client := newTestClient(t, exec)

	avu := AVU{Attribute: AttrMD5, Value: "abc"}
	if err := client.AddObjectMetadata(context.Background(), "/seq/1/1.cram", avu); err != nil {
		t.Fatalf("metamod: %v", err)
	}
	req := exec.requests[0]
	if req.Operation != "metamod" || req.Arguments.Operation != "add" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(req.Target.AVUs) != 1 || req.Target.AVUs[0] != avu {
		t.Fatalf("unexpected AVUs: %+v", req.Target.AVUs)
	}
}

func TestMetamodNoAVUsIsNoop(t *testing.T) {
	exec := &scriptedExecutor{}
	client := newTestClient(t, exec)
	if err := client.AddObjectMetadata(context.Background(), "/seq/1/1.cram"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.binaries) != 0 {
		t.Fatal("expected no execution for empty AVU list")
	}
}

func TestChecksumRecalculate(t *testing.T) {
	exec := &scriptedExecutor{responses: []string{`{
		"operation": "checksum",
		"target": {"collection": "/seq/1", "data_object": "1.cram"},
		"result": {"single": {"collection": "/seq/1", "data_object": "1.cram", "checksum": "def456"}}
	}`}}
	client := newTestClient(t, exec)

	checksum, err := client.Checksum(context.Background(), "/seq/1/1.cram", true)
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if checksum != "def456" {
		t.Fatalf("unexpected checksum: %q", checksum)
	}
	req := exec.requests[0]
	if !req.Arguments.Verify || !req.Arguments.Force {
		t.Fatalf("expected verify+force, got %+v", req.Arguments)
	}
}

func TestReplicateUsesIcommand(t *testing.T) {
	exec := &scriptedExecutor{}
	client := newTestClient(t, exec)

	if err := client.Replicate(context.Background(), "/seq/1/1.cram", "irods-rep"); err != nil {
		t.Fatalf("replicate: %v", err)
	}
	if exec.binaries[0] != "irepl" {
		t.Fatalf("unexpected binary: %q", exec.binaries[0])
	}
	want := []string{"-R", "irods-rep", "/seq/1/1.cram"}
	got := exec.args[0]
	if len(got) != len(want) {
		t.Fatalf("unexpected args: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected args: %v", got)
		}
	}
}

func TestTrimUsesIcommand(t *testing.T) {
	exec := &scriptedExecutor{}
	client := newTestClient(t, exec)

	if err := client.Trim(context.Background(), "/seq/1/1.cram", 2, 2); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if exec.binaries[0] != "itrim" {
		t.Fatalf("unexpected binary: %q", exec.binaries[0])
	}
}

func TestExecutorFailureIsExternalToolError(t *testing.T) {
	exec := &scriptedExecutor{err: errors.New("connection refused")}
	client := newTestClient(t, exec)

	_, err := client.ListObject(context.Background(), "/seq/1/1.cram")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestSplitPath(t *testing.T) {
	collection, name := SplitPath("/seq/1234/1234_1.cram")
	if collection != "/seq/1234" || name != "1234_1.cram" {
		t.Fatalf("unexpected split: %q %q", collection, name)
	}
}
