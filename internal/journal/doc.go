// Package journal records every maintenance run and each per-target outcome
// in a local SQLite database. The journal is the audit trail for repairs and
// the second witness required before safe removal.
package journal
