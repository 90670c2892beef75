package journal

import "time"

// Op names a maintenance operation recorded in the journal.
type Op string

const (
	OpCheckChecksums  Op = "check-checksums"
	OpRepairChecksums Op = "repair-checksums"
	OpCheckMetadata   Op = "check-metadata"
	OpRepairMetadata  Op = "repair-metadata"
	OpCheckReplicas   Op = "check-replicas"
	OpRepairReplicas  Op = "repair-replicas"
	OpWithdrawConsent Op = "withdraw-consent"
	OpUpdateSecondary Op = "update-secondary"
	OpUpdateONT       Op = "update-ont"
	OpBackfill        Op = "locations-backfill"
	OpCopyConfirm     Op = "copy-confirm"
	OpSafeRemove      Op = "safe-remove"
)

// Outcome classifies the result of processing one target.
type Outcome string

const (
	OutcomePassed    Outcome = "passed"
	OutcomeFailed    Outcome = "failed"
	OutcomeRepaired  Outcome = "repaired"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeReview    Outcome = "review"
	OutcomeWithdrawn Outcome = "withdrawn"
	OutcomeUpdated   Outcome = "updated"
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeRemoved   Outcome = "removed"
)

// Run is a single invocation of a maintenance operation.
type Run struct {
	ID         string
	Op         Op
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Record is the journalled result of processing one target within a run.
type Record struct {
	ID        int64
	RunID     string
	Op        Op
	Target    string
	Outcome   Outcome
	Detail    string
	CreatedAt time.Time
}

// Summary counts record outcomes for a run.
type Summary map[Outcome]int

// Failed reports whether any target failed or needs review.
func (s Summary) Failed() bool {
	return s[OutcomeFailed] > 0 || s[OutcomeReview] > 0
}

// Total returns the number of records across all outcomes.
func (s Summary) Total() int {
	total := 0
	for _, count := range s {
		total += count
	}
	return total
}
