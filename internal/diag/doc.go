// Package diag defines the diagnostic model shared by every stage of bridgeir.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced while
//     resolving bridge declarations.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form. The code is the variant tag: consumers switch on it to learn which
//     rule fired.
//   - Decl – identifier of the declaration the finding belongs to.
//   - Value – offending literal or key, verbatim, when the rule has one.
//   - Primary span – where the finding points to; may be empty when the
//     declaration was handed over without positions.
//   - Notes – optional secondary spans/messages.
//
// # Emitting diagnostics
//
// Producers receive a Reporter. ReportError/ReportWarning build a diagnostic
// and WithNote/WithDecl/WithValue decorate it before Emit. BagReporter stores
// everything in a Bag.
//
// A Bag is not synchronised. Parallel producers each fill their own Bag and
// the owner merges them in declaration order.
//
// Package diag does no formatting beyond the one-line short form; rendering
// lives in internal/diagfmt.
package diag
