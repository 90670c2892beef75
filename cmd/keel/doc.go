// Command keel is the operator CLI for maintaining sequencing data held in
// iRODS: checking and repairing checksums, metadata, and replicas, keeping
// catalog metadata in step with the ML warehouse, and confirming off-site
// copies before removal. Runs are journalled locally and reported with exit
// status 1 when any target fails a check and 2 on operational errors.
package main
