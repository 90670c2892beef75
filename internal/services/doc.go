// Package services provides shared error classification for the maintenance
// operations. Errors are tagged with sentinel markers so callers can decide
// whether a failure is retryable or needs operator review.
package services
