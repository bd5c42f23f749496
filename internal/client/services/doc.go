// Package services contains application services for the stockkeeper client.
//
// InventoryService is the only code path that mutates categories, hardware
// and notes on behalf of a user. Every mutation stamps updated_at, writes a
// tombstone instead of removing rows, and records one audit entry in the
// same local transaction, so the sync engine sees a consistent dirty set.
package services
