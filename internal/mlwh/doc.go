// Package mlwh provides read access to the ML warehouse and writes to its
// product location table. The schema pre-exists and is owned elsewhere, so the
// models mirror it column for column and no migrations are run against it.
package mlwh
