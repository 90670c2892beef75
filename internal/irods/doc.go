// Package irods provides a client for the iRODS data catalog driven through
// the baton-do JSON CLI. Replica repair operations that baton does not expose
// (replicate, trim) fall back to the corresponding icommands.
package irods
