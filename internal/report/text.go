package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"inventory-dashboard/pkg/inventory"
)

// WriteText prints a dashboard as plain text: the headline figures, then
// one table per chart.
func WriteText(w io.Writer, dash inventory.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	s := dash.Summary

	fmt.Fprintf(tw, "Department:\t%s\n", s.Department)
	fmt.Fprintf(tw, "Selection:\t%s\n", describeSelection(dash.Selection))
	fmt.Fprintf(tw, "Devices:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Active warranty:\t%d\n", s.ActiveWarranty)

	sections := []struct {
		title  string
		series string
		groups []inventory.GroupCount
	}{
		{"Devices by sector", "", s.BySector},
		{"Devices by year", "Category", s.ByYearCategory},
		{"Devices per year", "", s.YearTotals},
		{"Memory", "Type", s.ByMemory},
		{"Storage", "Disk", s.ByStorage},
		{"Condition", "", s.ByCondition},
	}
	for _, sec := range sections {
		fmt.Fprintf(tw, "\n%s\n", sec.title)
		for _, g := range sec.groups {
			if sec.series != "" {
				fmt.Fprintf(tw, "  %s\t%s\t%d\n", g.Label, g.Series, g.Count)
			} else {
				fmt.Fprintf(tw, "  %s\t%d\n", g.Label, g.Count)
			}
		}
	}
	return tw.Flush()
}

func describeSelection(sel inventory.Selection) string {
	var parts []string
	add := func(name, v string) {
		if v != "" && v != inventory.Unselected {
			parts = append(parts, name+"="+v)
		}
	}
	add("sector", sel.Sector)
	add("warranty", sel.Warranty)
	add("disk_type", sel.DiskType)
	add("equipment_type", sel.EquipmentType)
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}
