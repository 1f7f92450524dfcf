// Package diag defines the diagnostic model shared by the import layer and
// every resolution stage.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error. Resolution failures are always errors.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding is about.
//   - Notes – secondary spans, e.g. the colliding declarations of an
//     ambiguous name.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. ReportError/ReportWarning/ReportInfo return a
// ReportBuilder that accumulates notes before Emit. BagReporter stores
// diagnostics in a Bag; SyncReporter serialises concurrent producers; and
// DedupReporter drops repeats of the same code, span and message.
//
// Package diag performs no formatting or IO; rendering lives in
// internal/diagfmt.
package diag
