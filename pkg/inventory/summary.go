package inventory

import "sort"

// GroupCount is one bar or tile: the number of devices sharing Label
// (and Series, for stacked charts).
type GroupCount struct {
	Label  string `json:"label"`
	Series string `json:"series,omitempty"`
	Count  int    `json:"count"`
}

// Summary carries every figure the dashboard charts need. The counts of
// each grouping add up to Total.
type Summary struct {
	Department     string       `json:"department"`
	Total          int          `json:"total"`
	ActiveWarranty int          `json:"active_warranty"`
	BySector       []GroupCount `json:"by_sector"`
	ByYearCategory []GroupCount `json:"by_year_category"`
	YearTotals     []GroupCount `json:"year_totals"`
	ByMemory       []GroupCount `json:"by_memory"`
	ByStorage      []GroupCount `json:"by_storage"`
	ByCondition    []GroupCount `json:"by_condition"`
}

// Summarize aggregates the inventory.
func (inv *Inventory) Summarize() Summary {
	devices := inv.Devices()

	s := Summary{Total: len(devices)}
	if len(devices) > 0 {
		s.Department = devices[0].Department
	}
	for _, d := range devices {
		if d.Warranty == WarrantyActive {
			s.ActiveWarranty++
		}
	}

	s.BySector = groupCount(devices, func(d Device) (string, string) { return d.Sector, "" })
	s.ByYearCategory = groupCount(devices, func(d Device) (string, string) { return d.Year, string(d.Category) })
	s.YearTotals = groupCount(devices, func(d Device) (string, string) { return d.Year, "" })
	s.ByMemory = groupCount(devices, func(d Device) (string, string) { return d.Memory, d.MemoryType })
	s.ByStorage = groupCount(devices, func(d Device) (string, string) { return d.Storage, d.DiskType })
	s.ByCondition = groupCount(devices, func(d Device) (string, string) { return string(d.Condition), "" })
	return s
}

func groupCount(devices []Device, key func(Device) (string, string)) []GroupCount {
	type pair struct{ label, series string }
	counts := make(map[pair]int)
	for _, d := range devices {
		l, s := key(d)
		counts[pair{l, s}]++
	}

	out := make([]GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, GroupCount{Label: k.label, Series: k.series, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Series < out[j].Series
	})
	return out
}

// Dashboard is everything one dashboard view renders
type Dashboard struct {
	Selection Selection `json:"selection"`
	Options   Options   `json:"options"`
	Summary   Summary   `json:"summary"`
}

// BuildDashboard runs filter and aggregate for one selection. Options and
// the department subtitle come from the unfiltered inventory, so every
// choice stays reachable and the title survives an empty selection.
func BuildDashboard(inv *Inventory, sel Selection) Dashboard {
	summary := inv.Filter(sel).Summarize()
	if inv.Len() > 0 {
		summary.Department = inv.devices[0].Department
	}
	return Dashboard{
		Selection: sel,
		Options:   inv.Options(),
		Summary:   summary,
	}
}
