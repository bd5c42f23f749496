package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/google/uuid"
)

// UncategorizedName is shown for items whose category is missing or deleted.
const UncategorizedName = "Uncategorized"

const unknownItem = "Unknown Item"

// InventoryService defines the inventory operations of the client.
//
// Mutations return the stored record. Updating or deleting a record that is
// unknown or already tombstoned returns common.ErrorNotFound; an empty
// required field or an empty patch returns common.ErrorValidation.
type InventoryService interface {
	AddCategory(ctx context.Context, name string, color *string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, p CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	AddHardware(ctx context.Context, in HardwareInput) (*models.HardwareItem, error)
	UpdateHardware(ctx context.Context, id string, p HardwarePatch) (*models.HardwareItem, error)
	DeleteHardware(ctx context.Context, id string) error

	AddNote(ctx context.Context, title, body string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, p NotePatch) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	ListHardware(ctx context.Context, f HardwareFilter) ([]models.HardwareItem, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	GetHardware(ctx context.Context, id string) (*models.HardwareItem, error)
	CategoryName(ctx context.Context, id string) (string, error)
	AuditTrail(ctx context.Context, itemID string) ([]models.AuditLogEntry, error)
	RecentAudit(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
	// UnsyncedAuditCount is the number of audit entries not yet acknowledged
	// by the remote.
	UnsyncedAuditCount(ctx context.Context) (int, error)
	SystemLogs(ctx context.Context, limit int) ([]models.SystemLogEntry, error)

	// ClearDatabase wipes every local collection, the system logs and the
	// sync cursor. The next sync starts again from the epoch.
	ClearDatabase(ctx context.Context) error
}

type inventoryService struct {
	db       *sql.DB
	repos    storage.RepositoryManager
	username string
	logger   logging.Logger
	now      func() time.Time
}

// NewInventoryService constructs an InventoryService over the local store.
// username is written to audit entries and to HardwareItem.UpdatedBy.
func NewInventoryService(db *sql.DB, repos storage.RepositoryManager, username string, logger logging.Logger) InventoryService {
	return &inventoryService{
		db:       db,
		repos:    repos,
		username: username,
		logger:   logger.With("module", "inventory"),
		now:      models.Now,
	}
}

// mutate runs fn and the audit insert in one transaction. fn returns the
// audited item id and description. The timestamp is taken once the
// transaction holds the connection, never before.
func (s *inventoryService) mutate(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error)) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()
		itemID, desc, err := fn(ctx, tx, now)
		if err != nil {
			return err
		}
		entry := &models.AuditLogEntry{
			ID:                uuid.NewString(),
			ItemID:            itemID,
			Username:          s.username,
			ChangeDescription: desc,
			CreatedAt:         now,
		}
		if err := s.repos.AuditLogs(tx).Insert(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
		return nil
	})
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required: %w", field, common.ErrorValidation)
	}
	return nil
}

func emptyPatch() error {
	return fmt.Errorf("nothing to update: %w", common.ErrorValidation)
}

func describeChanges(desc string, fields []string) string {
	return fmt.Sprintf("%s (%s)", desc, strings.Join(fields, ", "))
}

// categories

type CategoryPatch struct {
	Name  *string
	Color *string
}

func (s *inventoryService) AddCategory(ctx context.Context, name string, color *string) (*models.Category, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	var c *models.Category
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		c = &models.Category{ID: uuid.NewString(), Name: name, Color: color, UpdatedAt: now}
		if err := s.repos.Categories(tx).Put(ctx, c); err != nil {
			return "", "", err
		}
		return c.ID, "Created category: " + c.Name, nil
	})
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	return c, nil
}

func (s *inventoryService) UpdateCategory(ctx context.Context, id string, p CategoryPatch) (*models.Category, error) {
	var fields []string
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return nil, err
		}
		fields = append(fields, "name")
	}
	if p.Color != nil {
		fields = append(fields, "color")
	}
	if len(fields) == 0 {
		return nil, emptyPatch()
	}

	var c *models.Category
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		var err error
		if c, err = s.liveCategory(ctx, tx, id); err != nil {
			return "", "", err
		}
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Color != nil {
			c.Color = p.Color
		}
		c.UpdatedAt = now
		if err := s.repos.Categories(tx).Put(ctx, c); err != nil {
			return "", "", err
		}
		return c.ID, describeChanges("Updated category: "+c.Name, fields), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update category[%s]: %w", id, err)
	}
	return c, nil
}

func (s *inventoryService) DeleteCategory(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		c, err := s.liveCategory(ctx, tx, id)
		if err != nil {
			return "", "", err
		}
		c.IsDeleted = true
		c.UpdatedAt = now
		if err := s.repos.Categories(tx).Put(ctx, c); err != nil {
			return "", "", err
		}
		return c.ID, "Deleted category: " + c.Name, nil
	})
	if err != nil {
		return fmt.Errorf("delete category[%s]: %w", id, err)
	}
	return nil
}

func (s *inventoryService) liveCategory(ctx context.Context, db dbx.DBTX, id string) (*models.Category, error) {
	c, err := s.repos.Categories(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// hardware

// HardwareInput carries the fields of a new stock item.
type HardwareInput struct {
	Description        string
	CategoryID         string
	Quantity           string
	WholesalePrice     *float64
	WholesalePriceUnit *string
	RetailPrice        *float64
	RetailPriceUnit    *string
	Location           string
}

// HardwarePatch lists the fields to change; nil fields are left as they are.
type HardwarePatch struct {
	Description        *string
	CategoryID         *string
	Quantity           *string
	WholesalePrice     *float64
	WholesalePriceUnit *string
	RetailPrice        *float64
	RetailPriceUnit    *string
	Location           *string
}

// apply copies the set fields into h and returns their column names.
func (p HardwarePatch) apply(h *models.HardwareItem) []string {
	var fields []string
	setString := func(name string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			fields = append(fields, name)
		}
	}
	setString("description", p.Description, &h.Description)
	setString("category", p.CategoryID, &h.CategoryID)
	setString("quantity", p.Quantity, &h.Quantity)
	if p.WholesalePrice != nil {
		h.WholesalePrice = p.WholesalePrice
		fields = append(fields, "wholesale price")
	}
	if p.WholesalePriceUnit != nil {
		h.WholesalePriceUnit = p.WholesalePriceUnit
		fields = append(fields, "wholesale price unit")
	}
	if p.RetailPrice != nil {
		h.RetailPrice = p.RetailPrice
		fields = append(fields, "retail price")
	}
	if p.RetailPriceUnit != nil {
		h.RetailPriceUnit = p.RetailPriceUnit
		fields = append(fields, "retail price unit")
	}
	setString("location", p.Location, &h.Location)
	return fields
}

func (p HardwarePatch) empty() bool {
	return p == HardwarePatch{}
}

func (s *inventoryService) AddHardware(ctx context.Context, in HardwareInput) (*models.HardwareItem, error) {
	if err := required("description", in.Description); err != nil {
		return nil, err
	}
	var h *models.HardwareItem
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		user := s.username
		h = &models.HardwareItem{
			ID:                 uuid.NewString(),
			Description:        in.Description,
			CategoryID:         in.CategoryID,
			Quantity:           in.Quantity,
			WholesalePrice:     in.WholesalePrice,
			WholesalePriceUnit: in.WholesalePriceUnit,
			RetailPrice:        in.RetailPrice,
			RetailPriceUnit:    in.RetailPriceUnit,
			Location:           in.Location,
			UpdatedBy:          &user,
			UpdatedAt:          now,
		}
		if err := s.repos.Hardware(tx).Put(ctx, h); err != nil {
			return "", "", err
		}
		return h.ID, "Created item: " + h.Description, nil
	})
	if err != nil {
		return nil, fmt.Errorf("add hardware: %w", err)
	}
	return h, nil
}

func (s *inventoryService) UpdateHardware(ctx context.Context, id string, p HardwarePatch) (*models.HardwareItem, error) {
	if p.empty() {
		return nil, emptyPatch()
	}
	if p.Description != nil {
		if err := required("description", *p.Description); err != nil {
			return nil, err
		}
	}

	var h *models.HardwareItem
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		var err error
		if h, err = s.liveHardware(ctx, tx, id); err != nil {
			return "", "", err
		}
		fields := p.apply(h)
		user := s.username
		h.UpdatedBy = &user
		h.UpdatedAt = now
		if err := s.repos.Hardware(tx).Put(ctx, h); err != nil {
			return "", "", err
		}
		return h.ID, describeChanges("Updated item: "+h.Description, fields), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update hardware[%s]: %w", id, err)
	}
	return h, nil
}

func (s *inventoryService) DeleteHardware(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		h, err := s.liveHardware(ctx, tx, id)
		if err != nil {
			return "", "", err
		}
		user := s.username
		h.IsDeleted = true
		h.UpdatedBy = &user
		h.UpdatedAt = now
		if err := s.repos.Hardware(tx).Put(ctx, h); err != nil {
			return "", "", err
		}
		desc := h.Description
		if desc == "" {
			desc = unknownItem
		}
		return h.ID, "Deleted item: " + desc, nil
	})
	if err != nil {
		return fmt.Errorf("delete hardware[%s]: %w", id, err)
	}
	return nil
}

func (s *inventoryService) liveHardware(ctx context.Context, db dbx.DBTX, id string) (*models.HardwareItem, error) {
	h, err := s.repos.Hardware(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return h, nil
}

// notes

type NotePatch struct {
	Title *string
	Body  *string
}

func (s *inventoryService) AddNote(ctx context.Context, title, body string) (*models.Note, error) {
	if err := required("title", title); err != nil {
		return nil, err
	}
	var n *models.Note
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		n = &models.Note{ID: uuid.NewString(), Title: title, Body: body, CreatedAt: now, UpdatedAt: now}
		if err := s.repos.Notes(tx).Put(ctx, n); err != nil {
			return "", "", err
		}
		return n.ID, "Created note: " + n.Title, nil
	})
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return n, nil
}

func (s *inventoryService) UpdateNote(ctx context.Context, id string, p NotePatch) (*models.Note, error) {
	var fields []string
	if p.Title != nil {
		if err := required("title", *p.Title); err != nil {
			return nil, err
		}
		fields = append(fields, "title")
	}
	if p.Body != nil {
		fields = append(fields, "body")
	}
	if len(fields) == 0 {
		return nil, emptyPatch()
	}

	var n *models.Note
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		var err error
		if n, err = s.liveNote(ctx, tx, id); err != nil {
			return "", "", err
		}
		if p.Title != nil {
			n.Title = *p.Title
		}
		if p.Body != nil {
			n.Body = *p.Body
		}
		n.UpdatedAt = now
		if err := s.repos.Notes(tx).Put(ctx, n); err != nil {
			return "", "", err
		}
		return n.ID, describeChanges("Updated note: "+n.Title, fields), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update note[%s]: %w", id, err)
	}
	return n, nil
}

func (s *inventoryService) DeleteNote(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(ctx context.Context, tx dbx.DBTX, now time.Time) (string, string, error) {
		n, err := s.liveNote(ctx, tx, id)
		if err != nil {
			return "", "", err
		}
		n.IsDeleted = true
		n.UpdatedAt = now
		if err := s.repos.Notes(tx).Put(ctx, n); err != nil {
			return "", "", err
		}
		return n.ID, "Deleted note: " + n.Title, nil
	})
	if err != nil {
		return fmt.Errorf("delete note[%s]: %w", id, err)
	}
	return nil
}

func (s *inventoryService) liveNote(ctx context.Context, db dbx.DBTX, id string) (*models.Note, error) {
	n, err := s.repos.Notes(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return n, nil
}

// reads

// HardwareFilter narrows ListHardware. Zero value lists every live item.
type HardwareFilter struct {
	CategoryID     string
	OutOfStockOnly bool
	// Query is a case-insensitive substring of the description.
	Query string
}

func (f HardwareFilter) match(h *models.HardwareItem) bool {
	if f.CategoryID != "" && h.CategoryID != f.CategoryID {
		return false
	}
	if f.OutOfStockOnly && !h.IsOutOfStock() {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(h.Description), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

func (s *inventoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Categories(s.db).List(ctx, false)
}

func (s *inventoryService) ListHardware(ctx context.Context, f HardwareFilter) ([]models.HardwareItem, error) {
	items, err := s.repos.Hardware(s.db).List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for i := range items {
		if f.match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

func (s *inventoryService) ListNotes(ctx context.Context) ([]models.Note, error) {
	return s.repos.Notes(s.db).List(ctx, false)
}

func (s *inventoryService) GetHardware(ctx context.Context, id string) (*models.HardwareItem, error) {
	return s.liveHardware(ctx, s.db, id)
}

func (s *inventoryService) CategoryName(ctx context.Context, id string) (string, error) {
	if id == "" {
		return UncategorizedName, nil
	}
	c, err := s.repos.Categories(s.db).Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return UncategorizedName, nil
	}
	if err != nil {
		return "", err
	}
	if c.IsDeleted {
		return UncategorizedName, nil
	}
	return c.Name, nil
}

func (s *inventoryService) AuditTrail(ctx context.Context, itemID string) ([]models.AuditLogEntry, error) {
	return s.repos.AuditLogs(s.db).ListByItem(ctx, itemID)
}

func (s *inventoryService) RecentAudit(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return s.repos.AuditLogs(s.db).List(ctx, limit)
}

func (s *inventoryService) UnsyncedAuditCount(ctx context.Context) (int, error) {
	return s.repos.AuditLogs(s.db).CountPending(ctx)
}

func (s *inventoryService) SystemLogs(ctx context.Context, limit int) ([]models.SystemLogEntry, error) {
	return s.repos.SystemLogs(s.db).List(ctx, limit)
}

func (s *inventoryService) ClearDatabase(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, wipe := range []func(context.Context) error{
			s.repos.Categories(tx).Clear,
			s.repos.Hardware(tx).Clear,
			s.repos.Notes(tx).Clear,
			s.repos.AuditLogs(tx).Clear,
			s.repos.SystemLogs(tx).Clear,
			s.repos.Metadata(tx).Clear,
		} {
			if err := wipe(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear database: %w", err)
	}
	s.logger.Warn(ctx, "local database cleared")
	return nil
}
