// Package models declares the inventory records shared by the local store,
// the remote store and the sync engine.
//
// Every mutable record carries UpdatedAt, which drives change detection and
// last-write-wins reconciliation. Deletion is a tombstone (IsDeleted) and is
// itself a mutation. AuditLogEntry is immutable apart from the local-only
// IsSynced flag, which is never serialized.
package models
