package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/backup"
	"github.com/dmitrijs2005/stockkeeper/internal/client/services"
	"github.com/dmitrijs2005/stockkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

const (
	defaultLogCount   = 20
	defaultAuditCount = 20
	timeLayout        = "2006-01-02 15:04:05"
)

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func (a *App) ask(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

func requireID(args []string, usage string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func formatPrice(p *float64, unit *string) string {
	if p == nil {
		return "-"
	}
	s := fmt.Sprintf("%.2f", *p)
	if unit != nil && *unit != "" {
		s += "/" + *unit
	}
	return s
}

// sync

func (a *App) Sync(ctx context.Context) error {
	res, err := a.sync.RunSync(ctx)
	if errors.Is(err, syncer.ErrSyncInProgress) {
		a.printf("A sync is already running.\n")
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("Synced: pushed %d, pulled %d, skipped %d (%s)\n",
		res.Pushed.Total(), res.Pull.Fetched.Total(), res.Pull.Skipped, res.Duration.Round(time.Millisecond))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	cursor, err := a.sync.LastSyncedAt(ctx)
	if err != nil {
		return err
	}
	pending, err := a.sync.Pending(ctx)
	if err != nil {
		return err
	}

	last := "never"
	if cursor.After(models.Epoch) {
		last = formatTime(cursor)
	}

	a.printf("Mode:        %s\n", a.Mode())
	a.printf("Sync state:  %s\n", a.sync.State())
	a.printf("Last synced: %s\n", last)
	a.printf("Pending:     %d categories, %d items, %d notes, %d audit entries\n",
		pending.Categories, pending.Hardware, pending.Notes, pending.AuditLogs)
	if lastErr := a.sync.LastError(); lastErr != nil {
		a.printf("Last error:  %s failed: %v\n", a.sync.FailedStage(), lastErr)
	}
	return nil
}

func (a *App) Logs(ctx context.Context, args []string) error {
	n, err := parseLimit(args, defaultLogCount)
	if err != nil {
		return err
	}
	logs, err := a.inventory.SystemLogs(ctx, n)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		a.printf("No sync logs.\n")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatTime(l.Timestamp), l.Level, l.ErrorMessage)
	}
	return w.Flush()
}

// categories

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.inventory.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		a.printf("No categories.\n")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tCOLOR")
	for _, c := range cats {
		color := "-"
		if c.Color != nil {
			color = *c.Color
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, color)
	}
	return w.Flush()
}

func (a *App) AddCategory(ctx context.Context) error {
	name, err := a.ask("Category name")
	if err != nil {
		return err
	}
	color, err := a.ask("Color (e.g. #3b82f6, empty for none)")
	if err != nil {
		return err
	}
	var colorPtr *string
	if color != "" {
		colorPtr = &color
	}

	c, err := a.inventory.AddCategory(ctx, name, colorPtr)
	if err != nil {
		return err
	}
	a.printf("Category added: %s\n", c.ID)
	return nil
}

func (a *App) DeleteCategory(ctx context.Context, args []string) error {
	id, err := requireID(args, "delcat <id>")
	if err != nil {
		return err
	}
	if err := a.inventory.DeleteCategory(ctx, id); err != nil {
		return err
	}
	a.printf("Category deleted.\n")
	return nil
}

// hardware

func (a *App) List(ctx context.Context, args []string) error {
	var f services.HardwareFilter
	if len(args) > 0 {
		if args[0] == "oos" {
			f.OutOfStockOnly = true
		} else {
			f.Query = strings.Join(args, " ")
		}
	}

	items, err := a.inventory.ListHardware(ctx, f)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.printf("No items.\n")
		return nil
	}

	names := make(map[string]string)
	w := a.table()
	fmt.Fprintln(w, "ID\tDESCRIPTION\tCATEGORY\tQUANTITY\tRETAIL\tWHOLESALE\tLOCATION")
	for _, h := range items {
		name, ok := names[h.CategoryID]
		if !ok {
			if name, err = a.inventory.CategoryName(ctx, h.CategoryID); err != nil {
				return err
			}
			names[h.CategoryID] = name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", h.ID, h.Description, name, h.Quantity,
			formatPrice(h.RetailPrice, h.RetailPriceUnit),
			formatPrice(h.WholesalePrice, h.WholesalePriceUnit),
			h.Location)
	}
	return w.Flush()
}

func (a *App) Add(ctx context.Context) error {
	var in services.HardwareInput
	var err error

	if in.Description, err = a.ask("Description"); err != nil {
		return err
	}
	if in.CategoryID, err = a.ask("Category id (empty for none)"); err != nil {
		return err
	}
	if in.Quantity, err = a.ask("Quantity (e.g. 5 ctns)"); err != nil {
		return err
	}
	if in.RetailPrice, in.RetailPriceUnit, err = a.askPrice("Retail price"); err != nil {
		return err
	}
	if in.WholesalePrice, in.WholesalePriceUnit, err = a.askPrice("Wholesale price"); err != nil {
		return err
	}
	if in.Location, err = a.ask("Location"); err != nil {
		return err
	}

	h, err := a.inventory.AddHardware(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Item added: %s\n", h.ID)
	return nil
}

// askPrice reads a price and, when one is given, its unit.
func (a *App) askPrice(prompt string) (*float64, *string, error) {
	s, err := a.ask(prompt + " (empty for none)")
	if err != nil {
		return nil, nil, err
	}
	price, err := parsePrice(s)
	if err != nil || price == nil {
		return nil, nil, err
	}
	unit, err := a.ask(prompt + " unit (e.g. pcs)")
	if err != nil {
		return nil, nil, err
	}
	if unit == "" {
		return price, nil, nil
	}
	return price, &unit, nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := requireID(args, "edit <id>")
	if err != nil {
		return err
	}
	h, err := a.inventory.GetHardware(ctx, id)
	if err != nil {
		return err
	}

	a.printf("Press Enter to keep the current value.\n")
	var p services.HardwarePatch
	if p.Description, err = GetOptionalText(a.reader, "Description", h.Description, a.out); err != nil {
		return err
	}
	if p.CategoryID, err = GetOptionalText(a.reader, "Category id", h.CategoryID, a.out); err != nil {
		return err
	}
	if p.Quantity, err = GetOptionalText(a.reader, "Quantity", h.Quantity, a.out); err != nil {
		return err
	}
	retail, err := GetOptionalText(a.reader, "Retail price", formatPrice(h.RetailPrice, nil), a.out)
	if err != nil {
		return err
	}
	if retail != nil {
		if p.RetailPrice, err = parsePrice(*retail); err != nil {
			return err
		}
	}
	wholesale, err := GetOptionalText(a.reader, "Wholesale price", formatPrice(h.WholesalePrice, nil), a.out)
	if err != nil {
		return err
	}
	if wholesale != nil {
		if p.WholesalePrice, err = parsePrice(*wholesale); err != nil {
			return err
		}
	}
	if p.Location, err = GetOptionalText(a.reader, "Location", h.Location, a.out); err != nil {
		return err
	}

	if p == (services.HardwarePatch{}) {
		a.printf("Nothing changed.\n")
		return nil
	}
	if _, err := a.inventory.UpdateHardware(ctx, id, p); err != nil {
		return err
	}
	a.printf("Item updated.\n")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := requireID(args, "del <id>")
	if err != nil {
		return err
	}
	if err := a.inventory.DeleteHardware(ctx, id); err != nil {
		return err
	}
	a.printf("Item deleted.\n")
	return nil
}

// notes

func (a *App) Notes(ctx context.Context) error {
	notes, err := a.inventory.ListNotes(ctx)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		a.printf("No notes.\n")
		return nil
	}
	for _, n := range notes {
		a.printf("[%s] %s (%s)\n", n.ID, n.Title, formatTime(n.UpdatedAt))
		if n.Body != "" {
			a.printf("  %s\n", strings.ReplaceAll(n.Body, "\n", "\n  "))
		}
	}
	return nil
}

func (a *App) AddNote(ctx context.Context) error {
	title, err := a.ask("Title")
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, "Text", a.out)
	if err != nil {
		return err
	}
	n, err := a.inventory.AddNote(ctx, title, body)
	if err != nil {
		return err
	}
	a.printf("Note added: %s\n", n.ID)
	return nil
}

func (a *App) DeleteNote(ctx context.Context, args []string) error {
	id, err := requireID(args, "delnote <id>")
	if err != nil {
		return err
	}
	if err := a.inventory.DeleteNote(ctx, id); err != nil {
		return err
	}
	a.printf("Note deleted.\n")
	return nil
}

// audit, backup, clear

func (a *App) Audit(ctx context.Context, args []string) error {
	var (
		entries []models.AuditLogEntry
		err     error
	)
	if len(args) > 0 {
		entries, err = a.inventory.AuditTrail(ctx, args[0])
	} else {
		entries, err = a.inventory.RecentAudit(ctx, defaultAuditCount)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.printf("No audit entries.\n")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "TIME\tUSER\tCHANGE\tSYNCED")
	for _, e := range entries {
		synced := "no"
		if e.IsSynced {
			synced = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTime(e.CreatedAt), e.Username, e.ChangeDescription, synced)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	unsynced, err := a.inventory.UnsyncedAuditCount(ctx)
	if err != nil {
		return err
	}
	if unsynced > 0 {
		a.printf("%d change(s) waiting to be pushed.\n", unsynced)
	}
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	key, err := a.backup.Export(ctx)
	if errors.Is(err, backup.ErrBackupDisabled) {
		a.printf("Backup is not configured (set s3_bucket in the config file).\n")
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("Snapshot uploaded: %s\n", key)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	answer, err := a.ask("This deletes all local data, including unsynced changes. Type 'yes' to confirm")
	if err != nil {
		return err
	}
	if answer != "yes" {
		a.printf("Cancelled.\n")
		return nil
	}
	if err := a.inventory.ClearDatabase(ctx); err != nil {
		return err
	}
	a.printf("Local database cleared!\n")
	return nil
}
