package check

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"keel/internal/irods"
	"keel/internal/journal"
)

// ChecksumChecker compares the md5 metadata on each data object against the
// checksum its valid replicas agree on.
type ChecksumChecker struct {
	Catalog Catalog
	Log     *slog.Logger
}

func (c *ChecksumChecker) Op(repair bool) journal.Op {
	if repair {
		return journal.OpRepairChecksums
	}
	return journal.OpCheckChecksums
}

// Check verifies a single object. With repair enabled a missing or wrong md5
// AVU is rewritten to the replica consensus; disagreeing replicas are never
// repaired here and are flagged for review instead.
func (c *ChecksumChecker) Check(ctx context.Context, path string, repair bool) Finding {
	obj, err := c.Catalog.ListObject(ctx, path)
	if err != nil {
		return errorFinding(path, "list", err)
	}

	if obj.Checksum == "" {
		// No registered checksum at all. Ask the server to compute and
		// register one, then re-read the replica state.
		if !repair {
			return Finding{Path: path, Outcome: journal.OutcomeFailed, Detail: "no catalog checksum"}
		}
		if _, err := c.Catalog.Checksum(ctx, path, true); err != nil {
			return errorFinding(path, "checksum", err)
		}
		if obj, err = c.Catalog.ListObject(ctx, path); err != nil {
			return errorFinding(path, "list", err)
		}
	}

	consensus, ok := obj.ConsensusChecksum()
	if !ok {
		return Finding{Path: path, Outcome: journal.OutcomeReview, Detail: "replica checksums disagree"}
	}

	values := obj.MetaValues(irods.AttrMD5)
	if len(values) == 1 && values[0] == consensus {
		return Finding{Path: path, Outcome: journal.OutcomePassed}
	}

	detail := fmt.Sprintf("md5 metadata %v, replicas agree on %s", values, consensus)
	if !repair {
		return Finding{Path: path, Outcome: journal.OutcomeFailed, Detail: detail}
	}

	var stale []irods.AVU
	for _, value := range values {
		if value != consensus {
			stale = append(stale, irods.AVU{Attribute: irods.AttrMD5, Value: value})
		}
	}
	if len(stale) > 0 {
		if err := c.Catalog.RemoveObjectMetadata(ctx, path, stale...); err != nil {
			return errorFinding(path, "metadata remove", err)
		}
	}
	if !obj.HasMeta(irods.AVU{Attribute: irods.AttrMD5, Value: consensus}) {
		if err := c.Catalog.AddObjectMetadata(ctx, path, irods.AVU{Attribute: irods.AttrMD5, Value: consensus}); err != nil {
			return errorFinding(path, "metadata add", err)
		}
	}

	c.Log.Info("repaired checksum metadata",
		slog.String("path", path),
		slog.String("was", strings.Join(values, ",")),
		slog.String("now", consensus))
	return Finding{Path: path, Outcome: journal.OutcomeRepaired, Detail: detail}
}
