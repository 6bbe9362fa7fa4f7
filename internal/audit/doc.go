// Package audit records envseal operations.
//
// Every keygen, encrypt, decrypt and sync appends one JSON object per line
// to .envseal-audit.jsonl in the directory of the document it touched.
// Entries carry a random id, a UTC timestamp, the local user and
// operation-specific details. Values are never logged.
//
// # Usage
//
//	entry := audit.New("sync")
//	entry.Regions = regions
//	audit.Log(dir, entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
package audit
