package dbx

import "database/sql"

// StringPtr converts a scanned nullable column to an optional field.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Float64Ptr converts a scanned nullable column to an optional field.
func Float64Ptr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
