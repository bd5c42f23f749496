package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const helpText = `Available commands:
  sync                 synchronize with the remote store now
  status               sync state, last sync time and pending changes
  logs [n]             recent sync logs
  categories           list categories
  addcat               add a category
  delcat <id>          delete a category
  list [oos|<text>]    list items, out of stock only or matching text
  add                  add an item
  edit <id>            edit an item
  del <id>             delete an item
  notes                list notes
  addnote              add a note
  delnote <id>         delete a note
  audit [item-id]      audit trail of an item, or recent changes
  backup               upload a snapshot to object storage
  clear                wipe the local database
  exit | quit          leave the program`

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests provide a recording stub.
type execIface interface {
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Logs(ctx context.Context, args []string) error
	Categories(ctx context.Context) error
	AddCategory(ctx context.Context) error
	DeleteCategory(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Notes(ctx context.Context) error
	AddNote(ctx context.Context) error
	DeleteNote(ctx context.Context, args []string) error
	Audit(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Clear(ctx context.Context) error
}

// runREPL reads one command per line from in and dispatches it to a. A
// command error is printed and the loop goes on. The loop ends on EOF, on
// "exit"/"quit" or when ctx is done. The prompt is only printed when
// prompt is true (interactive stdin).
//
// Each command runs with guard held and only if ctx is still live once the
// guard is taken, so a caller that locks guard after cancelling ctx knows no
// command is running or will start.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer, prompt bool, guard sync.Locker) {
	for ctx.Err() == nil {
		if prompt {
			fmt.Fprintf(out, "sk %s> ", statusFn())
		}
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if !dispatch(ctx, a, parts[0], parts[1:], out, guard) {
			return
		}
	}
}

// dispatch runs one command and reports whether the loop should go on.
func dispatch(ctx context.Context, a execIface, cmd string, args []string, out io.Writer, guard sync.Locker) bool {
	guard.Lock()
	defer guard.Unlock()
	if ctx.Err() != nil {
		return false
	}

	var cmdErr error
	switch cmd {
	case "help":
		fmt.Fprintln(out, helpText)
	case "sync":
		cmdErr = a.Sync(ctx)
	case "status":
		cmdErr = a.Status(ctx)
	case "logs":
		cmdErr = a.Logs(ctx, args)
	case "categories":
		cmdErr = a.Categories(ctx)
	case "addcat":
		cmdErr = a.AddCategory(ctx)
	case "delcat":
		cmdErr = a.DeleteCategory(ctx, args)
	case "l", "list":
		cmdErr = a.List(ctx, args)
	case "add":
		cmdErr = a.Add(ctx)
	case "edit":
		cmdErr = a.Edit(ctx, args)
	case "del":
		cmdErr = a.Delete(ctx, args)
	case "notes":
		cmdErr = a.Notes(ctx)
	case "addnote":
		cmdErr = a.AddNote(ctx)
	case "delnote":
		cmdErr = a.DeleteNote(ctx, args)
	case "audit":
		cmdErr = a.Audit(ctx, args)
	case "backup":
		cmdErr = a.Backup(ctx)
	case "clear":
		cmdErr = a.Clear(ctx)
	case "exit", "quit":
		fmt.Fprintln(out, "Bye!")
		return false
	default:
		fmt.Fprintln(out, "Unknown command:", cmd)
	}

	if cmdErr != nil {
		fmt.Fprintln(out, "Error:", cmdErr)
	}
	return true
}
