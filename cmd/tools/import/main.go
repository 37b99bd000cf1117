// Command import loads an inventory table and replaces the devices table
// with its contents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"inventory-dashboard/internal/store"
	"inventory-dashboard/pkg/inventory"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file    = fs.String("file", "", "Inventory table (.csv or .xlsx)")
		mapping = fs.String("mapping", "", "YAML column mapping (optional)")
		table   = fs.String("table", envOr("DEVICES_TABLE", "devices"), "Destination table")
		dsn     = fs.String("dsn", os.Getenv("DB_DSN"), "PostgreSQL connection string (default $DB_DSN)")
		dryRun  = fs.Bool("dry-run", false, "Validate and summarize without writing")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fmt.Fprintln(stderr, "Usage: import --file=path.xlsx [--mapping=...] [--table=devices] [--dry-run]")
		return 2
	}

	opts, err := inventory.OptionsFromMapping(*mapping)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	inv, err := inventory.Load(*file, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printRowErrors(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "Importing %s into %s (dry_run=%v)\n", *file, *table, *dryRun)
	fmt.Fprintln(stdout, strings.Repeat("=", 60))
	sum := inv.Summarize()
	fmt.Fprintf(stdout, "Devices: %d\n", sum.Total)
	fmt.Fprintf(stdout, "Active warranty: %d\n", sum.ActiveWarranty)
	for _, g := range sum.ByCondition {
		fmt.Fprintf(stdout, "%s: %d\n", g.Label, g.Count)
	}

	if *dryRun {
		return 0
	}
	if *dsn == "" {
		fmt.Fprintln(stderr, "Error: DB_DSN or --dsn is required unless --dry-run is set")
		return 1
	}

	st, err := store.Open(ctx, *dsn, *table)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	res, err := st.Replace(ctx, inv)
	if err != nil {
		fmt.Fprintf(stderr, "Import failed: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, strings.Repeat("=", 60))
	fmt.Fprintf(stdout, "Batch: %s\n", res.BatchID)
	fmt.Fprintf(stdout, "Inserted: %d\n", res.Inserted)
	fmt.Fprintf(stdout, "Updated: %d\n", res.Updated)
	fmt.Fprintf(stdout, "Removed: %d\n", res.Removed)
	return 0
}

func printRowErrors(w io.Writer, err error) {
	var le *inventory.LoadError
	if !errors.As(err, &le) {
		return
	}
	fmt.Fprintln(w, "Error samples:")
	for _, s := range le.Samples {
		fmt.Fprintf(w, "  %s\n", s)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
