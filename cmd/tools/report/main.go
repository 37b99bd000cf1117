// Command report prints the inventory dashboard for one selection as text.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"inventory-dashboard/internal/report"
	"inventory-dashboard/pkg/inventory"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file          = fs.String("file", "data/DadosPlanilha.csv", "Inventory table (.csv or .xlsx)")
		mapping       = fs.String("mapping", "", "YAML column mapping (optional)")
		sector        = fs.String("sector", inventory.Unselected, "Sector filter")
		warranty      = fs.String("warranty", inventory.Unselected, "Warranty filter (Active or Expired)")
		diskType      = fs.String("disk-type", inventory.Unselected, "Disk type filter")
		equipmentType = fs.String("equipment-type", inventory.Unselected, "Equipment type filter")
	)
	if err := fs.Parse(args); err != nil {
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
		return 1
	}

	sel := inventory.Selection{
		Sector:        *sector,
		Warranty:      *warranty,
		DiskType:      *diskType,
		EquipmentType: *equipmentType,
	}
	if err := report.WriteText(stdout, inventory.BuildDashboard(inv, sel)); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
