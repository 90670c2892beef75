package check

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"keel/internal/journal"
)

// ReplicaChecker verifies that each data object has the expected number of
// valid replicas and none flagged stale. Repairs replicate onto the default
// resource when copies are missing, trim stale replicas, and trim excess
// valid copies down to the expected count, keeping the lowest numbered ones.
// Replication runs before any trim so a trim never drops the object below
// the expected count.
type ReplicaChecker struct {
	Catalog  Catalog
	Log      *slog.Logger
	Expected int
	Resource string
}

func (c *ReplicaChecker) Op(repair bool) journal.Op {
	if repair {
		return journal.OpRepairReplicas
	}
	return journal.OpCheckReplicas
}

func (c *ReplicaChecker) Check(ctx context.Context, path string, repair bool) Finding {
	obj, err := c.Catalog.ListObject(ctx, path)
	if err != nil {
		return errorFinding(path, "list", err)
	}

	valid := obj.ValidReplicas()
	invalid := obj.InvalidReplicas()
	if len(valid) == c.Expected && len(invalid) == 0 {
		return Finding{Path: path, Outcome: journal.OutcomePassed}
	}

	var problems []string
	if len(valid) != c.Expected {
		problems = append(problems, fmt.Sprintf("%d valid replicas, expected %d", len(valid), c.Expected))
	}
	if len(invalid) > 0 {
		problems = append(problems, fmt.Sprintf("%d stale", len(invalid)))
	}
	detail := strings.Join(problems, "; ")
	if !repair {
		return Finding{Path: path, Outcome: journal.OutcomeFailed, Detail: detail}
	}

	if len(valid) == 0 {
		// Nothing trustworthy left to copy from.
		return Finding{Path: path, Outcome: journal.OutcomeReview, Detail: "no valid replica to repair from"}
	}

	if len(valid) < c.Expected {
		if err := c.Catalog.Replicate(ctx, path, c.Resource); err != nil {
			return errorFinding(path, "replicate", err)
		}
	}
	for _, replica := range invalid {
		if err := c.Catalog.Trim(ctx, path, replica.Number, c.Expected); err != nil {
			return errorFinding(path, "trim", err)
		}
	}
	if len(valid) > c.Expected {
		sort.Slice(valid, func(i, j int) bool { return valid[i].Number < valid[j].Number })
		for _, replica := range valid[c.Expected:] {
			if err := c.Catalog.Trim(ctx, path, replica.Number, c.Expected); err != nil {
				return errorFinding(path, "trim", err)
			}
		}
	}

	c.Log.Info("repaired replicas",
		slog.String("path", path),
		slog.Int("valid", len(valid)),
		slog.Int("stale", len(invalid)),
		slog.Int("expected", c.Expected))
	return Finding{Path: path, Outcome: journal.OutcomeRepaired, Detail: detail}
}
