package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"media-gallery/internal/gallery"
	"media-gallery/internal/kv"
	"media-gallery/internal/session"
	"media-gallery/internal/store"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
)

// errAborted is returned when the user declines a confirmation prompt.
var errAborted = errors.New("aborted")

type app struct {
	kv          kv.Store
	store       *store.Store
	in          io.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool
}

func main() {
	assumeYes := flag.Bool("y", false, "do not ask for confirmation")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, kv.DefaultFileName)

	db, err := kv.Open(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}

	a := &app{
		kv:          db,
		store:       store.New(db, nil),
		in:          os.Stdin,
		out:         os.Stdout,
		assumeYes:   *assumeYes,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}

	runErr := a.run(ctx, flag.Args())
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Media Gallery Snapshot Tool")
	fmt.Println("")
	fmt.Println("Usage: galleryctl [-y] <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  show         - List persisted records and permission status")
	fmt.Println("  delete <id>  - Remove one record")
	fmt.Println("  clear        - Remove every record")
	fmt.Println("  grant        - Persist permission as granted")
	fmt.Println("  deny         - Persist permission as denied")
	fmt.Println("  reset        - Forget the permission status")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func (a *app) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	switch args[0] {
	case "show":
		return a.show(ctx)
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: galleryctl delete <id>")
		}
		return a.deleteRecord(ctx, args[1])
	case "clear":
		return a.clear(ctx)
	case "grant":
		return a.setPermission(ctx, session.StatusGranted)
	case "deny":
		return a.setPermission(ctx, session.StatusDenied)
	case "reset":
		return a.setPermission(ctx, session.StatusUndetermined)
	default:
		return fmt.Errorf("unknown command: %s", sanitizeCommand(args[0]))
	}
}

// sanitizeCommand replaces anything other than [a-zA-Z0-9_-] with '_' so
// arbitrary input is never echoed to the terminal.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (a *app) show(ctx context.Context) error {
	status, err := a.permission(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Permission: %s\n", status)

	records, err := a.store.Persisted(ctx)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		fmt.Fprintln(a.out, "Snapshot:   none persisted")
		return nil
	case errors.Is(err, store.ErrMalformedSnapshot):
		fmt.Fprintf(a.out, "Snapshot:   unreadable (%v)\n", err)
		fmt.Fprintln(a.out, "            the server shows an empty gallery; run 'galleryctl clear' to reset it")
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(a.out, "Snapshot:   %d records\n", len(records))
	if len(records) == 0 {
		return nil
	}

	fmt.Fprintln(a.out)
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tALBUM\tSIZE\tCAPTURED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.DisplayName, r.Kind, r.AlbumName,
			gallery.FormatSize(r.ByteSize), gallery.FormatDate(r.CapturedAt, time.Local))
	}
	return tw.Flush()
}

func (a *app) deleteRecord(ctx context.Context, id string) error {
	if err := a.load(ctx); err != nil {
		return err
	}

	rec, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("no record with id %s", id)
	}
	if err := a.confirm(fmt.Sprintf("Delete %s (%s)?", rec.DisplayName, rec.ID)); err != nil {
		return err
	}

	if _, err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s. %d records remain.\n", rec.DisplayName, a.store.Len())
	return nil
}

func (a *app) clear(ctx context.Context) error {
	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Remove all %d records?", a.store.Len())); err != nil {
		return err
	}
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Snapshot cleared.")
	return nil
}

func (a *app) setPermission(ctx context.Context, status session.Status) error {
	var err error
	if status == session.StatusUndetermined {
		err = a.kv.Delete(ctx, kv.PermissionKey)
	} else {
		err = a.kv.Set(ctx, kv.PermissionKey, string(status))
	}
	if err != nil {
		return fmt.Errorf("failed to update permission: %w", err)
	}
	fmt.Fprintf(a.out, "Permission set to %s.\n", status)
	return nil
}

func (a *app) permission(ctx context.Context) (session.Status, error) {
	value, err := a.kv.Get(ctx, kv.PermissionKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return "", fmt.Errorf("failed to read permission: %w", err)
	}
	return session.ParseStatus(value), nil
}

func (a *app) load(ctx context.Context) error {
	if err := a.store.Restore(ctx); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// confirm asks a yes/no question. Without a terminal it only proceeds when
// -y was given.
func (a *app) confirm(prompt string) error {
	if a.assumeYes {
		return nil
	}
	if !a.interactive {
		return fmt.Errorf("stdin is not a terminal; pass -y to confirm")
	}

	fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}
