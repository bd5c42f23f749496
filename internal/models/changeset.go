package models

// ChangeSet groups records of all four synced collections: the dirty set on
// push, the remote snapshot on pull.
type ChangeSet struct {
	Categories []Category
	Hardware   []HardwareItem
	Notes      []Note
	AuditLogs  []AuditLogEntry
}

// Counts is a per-collection tally.
type Counts struct {
	Categories int `json:"categories"`
	Hardware   int `json:"hardware"`
	Notes      int `json:"notes"`
	AuditLogs  int `json:"audit_logs"`
}

func (c Counts) Total() int {
	return c.Categories + c.Hardware + c.Notes + c.AuditLogs
}

func (c Counts) Add(o Counts) Counts {
	return Counts{
		Categories: c.Categories + o.Categories,
		Hardware:   c.Hardware + o.Hardware,
		Notes:      c.Notes + o.Notes,
		AuditLogs:  c.AuditLogs + o.AuditLogs,
	}
}

func (cs *ChangeSet) Counts() Counts {
	if cs == nil {
		return Counts{}
	}
	return Counts{
		Categories: len(cs.Categories),
		Hardware:   len(cs.Hardware),
		Notes:      len(cs.Notes),
		AuditLogs:  len(cs.AuditLogs),
	}
}

func (cs *ChangeSet) Empty() bool {
	return cs.Counts().Total() == 0
}
