// Package identity persists visitor session identity between visits.
//
// # Overview
//
// A Session carries the visitor's session ID, name, and email. The Store
// saves sessions as a small JSON document and loads them on return visits,
// so a visitor who has already introduced themselves resumes their
// conversation without re-entering details.
//
// # Session IDs
//
// MintSessionID produces IDs of the form:
//
//	session_<unix-millis>_<9 base36 chars>
//
// IsSessionID validates that shape before an ID is trusted as a lookup key.
//
// # Durability
//
// Save writes to a temp file and renames it into place, so a crash mid-write
// never leaves a truncated identity file. Load treats any read or parse
// failure as "no identity": the visitor is simply asked to introduce
// themselves again.
package identity
