// Package inventory loads device inventory tables, derives the per-device
// classification columns and computes the counts behind the dashboard.
package inventory

import (
	"net/url"
	"sort"
	"strings"
)

// Unselected is the sidebar choice meaning "no filter on this dimension".
const Unselected = "-"

// Inventory is an immutable set of devices. Filtering returns a new
// Inventory and never touches the receiver.
type Inventory struct {
	devices []Device
}

// New builds an inventory from already derived devices. The slice is copied.
func New(devices []Device) *Inventory {
	return &Inventory{devices: append([]Device(nil), devices...)}
}

// Len returns the number of devices; a nil inventory is empty.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.devices)
}

// Devices returns a copy of the rows in load order.
func (inv *Inventory) Devices() []Device {
	if inv == nil {
		return nil
	}
	return append([]Device(nil), inv.devices...)
}

// Selection holds the chosen value per filterable dimension.
// Empty or Unselected leaves a dimension unfiltered.
type Selection struct {
	Sector        string `json:"sector"`
	Warranty      string `json:"warranty"`
	DiskType      string `json:"disk_type"`
	EquipmentType string `json:"equipment_type"`
}

// ParseSelection reads sector, warranty, disk_type and equipment_type.
func ParseSelection(values url.Values) Selection {
	return Selection{
		Sector:        strings.TrimSpace(values.Get("sector")),
		Warranty:      strings.TrimSpace(values.Get("warranty")),
		DiskType:      strings.TrimSpace(values.Get("disk_type")),
		EquipmentType: strings.TrimSpace(values.Get("equipment_type")),
	}
}

// IsEmpty reports whether no dimension is selected.
func (s Selection) IsEmpty() bool {
	return !selected(s.Sector) && !selected(s.Warranty) && !selected(s.DiskType) && !selected(s.EquipmentType)
}

// Matches is the AND of the selected equality predicates.
func (s Selection) Matches(d Device) bool {
	return match(s.Sector, d.Sector) &&
		match(s.Warranty, string(d.Warranty)) &&
		match(s.DiskType, d.DiskType) &&
		match(s.EquipmentType, d.EquipmentType)
}

func selected(v string) bool {
	return v != "" && v != Unselected
}

func match(want, got string) bool {
	return !selected(want) || want == got
}

// Filter returns the devices matching sel. An empty selection returns the
// receiver itself since inventories are immutable.
func (inv *Inventory) Filter(sel Selection) *Inventory {
	if inv == nil {
		return &Inventory{}
	}
	if sel.IsEmpty() {
		return inv
	}
	out := make([]Device, 0, len(inv.devices))
	for _, d := range inv.devices {
		if sel.Matches(d) {
			out = append(out, d)
		}
	}
	return &Inventory{devices: out}
}

// Options lists the sidebar choices, each starting with Unselected.
type Options struct {
	Sectors        []string `json:"sectors"`
	Warranty       []string `json:"warranty"`
	DiskTypes      []string `json:"disk_types"`
	EquipmentTypes []string `json:"equipment_types"`
}

// Options collects the distinct values per dimension. Sectors are sorted,
// the other lists keep first-appearance order.
func (inv *Inventory) Options() Options {
	var sectors, warranty, disks, equipment distinct
	if inv != nil {
		for _, d := range inv.devices {
			sectors.add(d.Sector)
			warranty.add(string(d.Warranty))
			disks.add(d.DiskType)
			equipment.add(d.EquipmentType)
		}
	}
	sort.Strings(sectors.values)
	return Options{
		Sectors:        withSentinel(sectors.values),
		Warranty:       withSentinel(warranty.values),
		DiskTypes:      withSentinel(disks.values),
		EquipmentTypes: withSentinel(equipment.values),
	}
}

type distinct struct {
	seen   map[string]bool
	values []string
}

func (d *distinct) add(v string) {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if v == "" || d.seen[v] {
		return
	}
	d.seen[v] = true
	d.values = append(d.values, v)
}

func withSentinel(values []string) []string {
	return append([]string{Unselected}, values...)
}
