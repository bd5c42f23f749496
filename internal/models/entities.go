package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	IsDeleted bool      `json:"is_deleted"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) Validate() error {
	return validateRecord("category", c.ID, c.UpdatedAt)
}

// HardwareItem is a stock line. CategoryID is a weak reference: the category
// may be missing or deleted.
type HardwareItem struct {
	ID                 string    `json:"id"`
	Description        string    `json:"description"`
	CategoryID         string    `json:"category_id"`
	Quantity           string    `json:"quantity"`
	WholesalePrice     *float64  `json:"wholesale_price"`
	WholesalePriceUnit *string   `json:"wholesale_price_unit"`
	RetailPrice        *float64  `json:"retail_price"`
	RetailPriceUnit    *string   `json:"retail_price_unit"`
	IsDeleted          bool      `json:"is_deleted"`
	UpdatedBy          *string   `json:"updated_by,omitempty"`
	Location           string    `json:"location"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (h *HardwareItem) Validate() error {
	return validateRecord("hardware", h.ID, h.UpdatedAt)
}

// IsOutOfStock reports whether the leading quantity number is zero.
func (h *HardwareItem) IsOutOfStock() bool {
	return ParseQuantity(h.Quantity) == 0
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Note) Validate() error {
	return validateRecord("note", n.ID, n.UpdatedAt)
}

// AuditLogEntry records one mutation. IsSynced is local bookkeeping and is
// never sent to the remote.
type AuditLogEntry struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"item_id"`
	Username          string    `json:"username"`
	ChangeDescription string    `json:"change_description"`
	CreatedAt         time.Time `json:"created_at"`
	IsSynced          bool      `json:"-"`
}

func (a *AuditLogEntry) Validate() error {
	return validateRecord("audit log", a.ID, a.CreatedAt)
}

func validateRecord(kind, id string, ts time.Time) error {
	if id == "" {
		return fmt.Errorf("%s: empty id: %w", kind, common.ErrorValidation)
	}
	if ts.IsZero() {
		return fmt.Errorf("%s[%s]: missing timestamp: %w", kind, id, common.ErrorValidation)
	}
	return nil
}
