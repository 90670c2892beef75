package irods

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"
	"time"

	"keel/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdin []byte) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client drives the data catalog through the baton-do JSON CLI, with
// icommands for the replica operations baton does not expose.
type Client struct {
	batonBinary string
	replBinary  string
	trimBinary  string
	zone        string
	timeout     time.Duration
	exec        Executor
}

// New constructs a catalog client.
func New(batonBinary, replBinary, trimBinary, zone string, timeoutSeconds int, opts ...Option) (*Client, error) {
	batonBinary = strings.TrimSpace(batonBinary)
	if batonBinary == "" {
		return nil, errors.New("baton binary required")
	}
	client := &Client{
		batonBinary: batonBinary,
		replBinary:  replBinary,
		trimBinary:  trimBinary,
		zone:        zone,
		timeout:     time.Duration(timeoutSeconds) * time.Second,
		exec:        commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListObject fetches a data object with metadata, ACL, checksum, and replicas.
func (c *Client) ListObject(ctx context.Context, objPath string) (*DataObject, error) {
	collection, name := SplitPath(objPath)
	resp, err := c.request(ctx, envelope{
		Operation: opList,
		Arguments: &args{AVU: true, ACL: true, Checksum: true, Replicate: true, Size: true, Timestamp: true},
		Target:    entity{Collection: collection, DataObject: name},
	})
	if err != nil {
		return nil, err
	}
	ent := resp.Target
	if resp.Result != nil && resp.Result.Single != nil {
		ent = *resp.Result.Single
	}
	return objectFromEntity(ent), nil
}

// ListCollection fetches a collection with metadata and ACL. When contents is
// true the names of member entities are included.
func (c *Client) ListCollection(ctx context.Context, collPath string, contents bool) (*Collection, error) {
	resp, err := c.request(ctx, envelope{
		Operation: opList,
		Arguments: &args{AVU: true, ACL: true, Contents: contents},
		Target:    entity{Collection: path.Clean(collPath)},
	})
	if err != nil {
		return nil, err
	}
	ent := resp.Target
	if resp.Result != nil && resp.Result.Single != nil {
		ent = *resp.Result.Single
	}
	coll := &Collection{
		Path:   ent.Collection,
		AVUs:   ent.AVUs,
		Access: ent.Access,
	}
	for _, member := range ent.Contents {
		memberPath := entityPath(member)
		coll.Contents = append(coll.Contents, memberPath)
		if member.DataObject == "" {
			coll.Collections = append(coll.Collections, memberPath)
		} else {
			coll.Objects = append(coll.Objects, memberPath)
		}
	}
	return coll, nil
}

// Checksum asks the server for the object checksum. When recalculate is true
// all replica checksums are recomputed and verified first.
func (c *Client) Checksum(ctx context.Context, objPath string, recalculate bool) (string, error) {
	collection, name := SplitPath(objPath)
	resp, err := c.request(ctx, envelope{
		Operation: opChecksum,
		Arguments: &args{Verify: recalculate, Force: recalculate},
		Target:    entity{Collection: collection, DataObject: name},
	})
	if err != nil {
		return "", err
	}
	if resp.Result != nil && resp.Result.Single != nil {
		return resp.Result.Single.Checksum, nil
	}
	return resp.Target.Checksum, nil
}

// AddObjectMetadata adds AVUs to a data object.
func (c *Client) AddObjectMetadata(ctx context.Context, objPath string, avus ...AVU) error {
	return c.metamod(ctx, objPath, false, metaAdd, avus)
}

// RemoveObjectMetadata removes AVUs from a data object.
func (c *Client) RemoveObjectMetadata(ctx context.Context, objPath string, avus ...AVU) error {
	return c.metamod(ctx, objPath, false, metaRem, avus)
}

// AddCollectionMetadata adds AVUs to a collection.
func (c *Client) AddCollectionMetadata(ctx context.Context, collPath string, avus ...AVU) error {
	return c.metamod(ctx, collPath, true, metaAdd, avus)
}

// RemoveCollectionMetadata removes AVUs from a collection.
func (c *Client) RemoveCollectionMetadata(ctx context.Context, collPath string, avus ...AVU) error {
	return c.metamod(ctx, collPath, true, metaRem, avus)
}

func (c *Client) metamod(ctx context.Context, targetPath string, isCollection bool, operation string, avus []AVU) error {
	if len(avus) == 0 {
		return nil
	}
	target := entity{AVUs: avus}
	if isCollection {
		target.Collection = path.Clean(targetPath)
	} else {
		target.Collection, target.DataObject = SplitPath(targetPath)
	}
	_, err := c.request(ctx, envelope{
		Operation: opMetamod,
		Arguments: &args{Operation: operation},
		Target:    target,
	})
	return err
}

// FindObjectsByMetadata returns paths of data objects matching every AVU.
func (c *Client) FindObjectsByMetadata(ctx context.Context, avus ...AVU) ([]string, error) {
	return c.metaquery(ctx, &args{Object: true, Zone: c.zone}, avus)
}

// FindCollectionsByMetadata returns paths of collections matching every AVU.
func (c *Client) FindCollectionsByMetadata(ctx context.Context, avus ...AVU) ([]string, error) {
	return c.metaquery(ctx, &args{Collection: true, Zone: c.zone}, avus)
}

func (c *Client) metaquery(ctx context.Context, queryArgs *args, avus []AVU) ([]string, error) {
	if len(avus) == 0 {
		return nil, errors.New("metaquery requires at least one AVU")
	}
	resp, err := c.request(ctx, envelope{
		Operation: opMetaquery,
		Arguments: queryArgs,
		Target:    entity{AVUs: avus},
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Result == nil {
		return nil, nil
	}
	paths := make([]string, 0, len(resp.Result.Multiple))
	for _, ent := range resp.Result.Multiple {
		paths = append(paths, entityPath(ent))
	}
	return paths, nil
}

// SetObjectAccess applies access levels on a data object.
func (c *Client) SetObjectAccess(ctx context.Context, objPath string, access ...Access) error {
	if len(access) == 0 {
		return nil
	}
	collection, name := SplitPath(objPath)
	_, err := c.request(ctx, envelope{
		Operation: opChmod,
		Target:    entity{Collection: collection, DataObject: name, Access: access},
	})
	return err
}

// SetCollectionAccess applies access levels on a collection, optionally
// recursing into its members.
func (c *Client) SetCollectionAccess(ctx context.Context, collPath string, recurse bool, access ...Access) error {
	if len(access) == 0 {
		return nil
	}
	_, err := c.request(ctx, envelope{
		Operation: opChmod,
		Arguments: &args{Recurse: recurse},
		Target:    entity{Collection: path.Clean(collPath), Access: access},
	})
	return err
}

// RemoveObject deletes a data object from the catalog.
func (c *Client) RemoveObject(ctx context.Context, objPath string) error {
	collection, name := SplitPath(objPath)
	_, err := c.request(ctx, envelope{
		Operation: opRemove,
		Arguments: &args{Force: true},
		Target:    entity{Collection: collection, DataObject: name},
	})
	return err
}

// Replicate makes a new replica of the object on the named resource.
func (c *Client) Replicate(ctx context.Context, objPath, resource string) error {
	if strings.TrimSpace(c.replBinary) == "" {
		return services.Wrap(services.ErrConfiguration, "irods", "replicate", "irepl binary not configured", nil)
	}
	cmdArgs := []string{}
	if resource != "" {
		cmdArgs = append(cmdArgs, "-R", resource)
	}
	cmdArgs = append(cmdArgs, objPath)
	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if _, err := c.exec.Run(ctx, c.replBinary, cmdArgs, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "irods", "replicate", objPath, err)
	}
	return nil
}

// Trim removes the numbered replica of the object, keeping at least
// minReplicas good copies.
func (c *Client) Trim(ctx context.Context, objPath string, replicaNumber, minReplicas int) error {
	if strings.TrimSpace(c.trimBinary) == "" {
		return services.Wrap(services.ErrConfiguration, "irods", "trim", "itrim binary not configured", nil)
	}
	cmdArgs := []string{
		"-n", fmt.Sprint(replicaNumber),
		"-N", fmt.Sprint(minReplicas),
		objPath,
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if _, err := c.exec.Run(ctx, c.trimBinary, cmdArgs, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "irods", "trim", objPath, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, req envelope) (*envelope, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	out, err := c.exec.Run(ctx, c.batonBinary, []string{"--unbuffered"}, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "irods", req.Operation, "", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "irods", req.Operation, "", err)
	}

	var resp envelope
	decoder := json.NewDecoder(bytes.NewReader(out))
	if err := decoder.Decode(&resp); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "irods", req.Operation, "decode response", err)
	}

	if resp.Error != nil {
		marker := services.ErrExternalTool
		switch resp.Error.Code {
		case codeNoRowsFound, codeFileDoesNotExist, codeObjPathDoesNotExist:
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "irods", req.Operation,
			fmt.Sprintf("%s (code %d)", resp.Error.Message, resp.Error.Code), nil)
	}
	return &resp, nil
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func objectFromEntity(ent entity) *DataObject {
	obj := &DataObject{
		Path:     entityPath(ent),
		Checksum: ent.Checksum,
		Size:     ent.Size,
		AVUs:     ent.AVUs,
		Access:   ent.Access,
		Replicas: ent.Replicas,
	}
	for _, ts := range ent.Timestamps {
		if ts.Created != "" && obj.Created.IsZero() {
			if parsed, err := parseTimestamp(ts.Created); err == nil {
				obj.Created = parsed
			}
		}
		if ts.Modified != "" {
			if parsed, err := parseTimestamp(ts.Modified); err == nil && parsed.After(obj.Modified) {
				obj.Modified = parsed
			}
		}
	}
	return obj
}

func entityPath(ent entity) string {
	if ent.DataObject == "" {
		return ent.Collection
	}
	return path.Join(ent.Collection, ent.DataObject)
}

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, cmdArgs []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, cmdArgs...) //nolint:gosec
	if len(stdin) > 0 {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", binary, err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", binary, err)
	}
	return stdout.Bytes(), nil
}
