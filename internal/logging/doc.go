// Package logging builds slog loggers with console and JSON handlers. The
// console handler promotes the "component" attribute into the message prefix
// and renders remaining attributes as key=value pairs.
package logging
