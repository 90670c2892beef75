package check

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"keel/internal/irods"
	"keel/internal/journal"
)

// RequiredAttributes are the common metadata every data object must carry.
var RequiredAttributes = []string{
	irods.AttrMD5,
	irods.AttrType,
	irods.AttrCreated,
	irods.AttrCreator,
	irods.AttrPublisher,
}

// MetadataChecker verifies the common metadata set on each data object.
// Repairs fill in what can be derived from the catalog: the md5 from the
// replica consensus, the type from the file suffix, the creation time from
// the catalog timestamp, creator and publisher from configuration.
type MetadataChecker struct {
	Catalog   Catalog
	Log       *slog.Logger
	Creator   string
	Publisher string
}

func (c *MetadataChecker) Op(repair bool) journal.Op {
	if repair {
		return journal.OpRepairMetadata
	}
	return journal.OpCheckMetadata
}

func (c *MetadataChecker) Check(ctx context.Context, objPath string, repair bool) Finding {
	obj, err := c.Catalog.ListObject(ctx, objPath)
	if err != nil {
		return errorFinding(objPath, "list", err)
	}

	var missing []string
	for _, attribute := range RequiredAttributes {
		if len(obj.MetaValues(attribute)) == 0 {
			missing = append(missing, attribute)
		}
	}
	if len(missing) == 0 {
		return Finding{Path: objPath, Outcome: journal.OutcomePassed}
	}

	sort.Strings(missing)
	detail := "missing " + strings.Join(missing, ", ")
	if !repair {
		return Finding{Path: objPath, Outcome: journal.OutcomeFailed, Detail: detail}
	}

	add, reviewDetail := c.derive(obj, missing)
	if reviewDetail != "" {
		return Finding{Path: objPath, Outcome: journal.OutcomeReview, Detail: reviewDetail}
	}
	if err := c.Catalog.AddObjectMetadata(ctx, objPath, add...); err != nil {
		return errorFinding(objPath, "metadata add", err)
	}

	c.Log.Info("repaired common metadata",
		slog.String("path", objPath),
		slog.String("added", strings.Join(missing, ",")))
	return Finding{Path: objPath, Outcome: journal.OutcomeRepaired, Detail: detail}
}

func (c *MetadataChecker) derive(obj *irods.DataObject, missing []string) ([]irods.AVU, string) {
	var add []irods.AVU
	for _, attribute := range missing {
		switch attribute {
		case irods.AttrMD5:
			consensus, ok := obj.ConsensusChecksum()
			if !ok {
				return nil, "cannot derive md5, replica checksums disagree"
			}
			add = append(add, irods.AVU{Attribute: attribute, Value: consensus})
		case irods.AttrType:
			suffix := strings.TrimPrefix(path.Ext(obj.Path), ".")
			if suffix == "" {
				return nil, "cannot derive type, path has no suffix"
			}
			add = append(add, irods.AVU{Attribute: attribute, Value: suffix})
		case irods.AttrCreated:
			if obj.Created.IsZero() {
				return nil, "cannot derive creation time, catalog has no timestamp"
			}
			add = append(add, irods.AVU{Attribute: attribute, Value: obj.Created.UTC().Format(time.RFC3339)})
		case irods.AttrCreator:
			if c.Creator == "" {
				return nil, "creator not configured"
			}
			add = append(add, irods.AVU{Attribute: attribute, Value: c.Creator})
		case irods.AttrPublisher:
			if c.Publisher == "" {
				return nil, "publisher not configured"
			}
			add = append(add, irods.AVU{Attribute: attribute, Value: c.Publisher})
		default:
			return nil, fmt.Sprintf("no repair for %s", attribute)
		}
	}
	return add, ""
}
