package internal

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"inventory-dashboard/pkg/inventory"
)

// listParams holds common query parameters for list endpoints
type listParams struct {
	limit  int
	offset int
	q      string
	sort   string
}

// parseListParams parses limit, offset, q, and sort from the request
// Defaults: limit=50 (max 200), offset=0
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	limit := 50
	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			if v > 200 {
				v = 200
			}
			limit = v
		}
	}

	offset := 0
	if s := strings.TrimSpace(values.Get("offset")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	return listParams{
		limit:  limit,
		offset: offset,
		q:      strings.TrimSpace(values.Get("q")),
		sort:   strings.TrimSpace(values.Get("sort")),
	}
}

type deviceOrder func(a, b inventory.Device) int

// deviceSortKeys is the whitelist of sortable fields.
var deviceSortKeys = map[string]deviceOrder{
	"service_tag":      func(a, b inventory.Device) int { return strings.Compare(a.ServiceTag, b.ServiceTag) },
	"sector":           func(a, b inventory.Device) int { return strings.Compare(a.Sector, b.Sector) },
	"equipment_type":   func(a, b inventory.Device) int { return strings.Compare(a.EquipmentType, b.EquipmentType) },
	"disk_type":        func(a, b inventory.Device) int { return strings.Compare(a.DiskType, b.DiskType) },
	"condition":        func(a, b inventory.Device) int { return strings.Compare(string(a.Condition), string(b.Condition)) },
	"warranty":         func(a, b inventory.Device) int { return strings.Compare(string(a.Warranty), string(b.Warranty)) },
	"age_years":        func(a, b inventory.Device) int { return cmp.Compare(a.AgeYears, b.AgeYears) },
	"cpu_generation":   func(a, b inventory.Device) int { return cmp.Compare(a.CPUGeneration, b.CPUGeneration) },
	"acquisition_date": func(a, b inventory.Device) int { return compareTime(a.AcquisitionDate, b.AcquisitionDate) },
	"expiration_date":  func(a, b inventory.Device) int { return compareTime(a.ExpirationDate, b.ExpirationDate) },
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

// sortDevices orders devices in place using a whitelist of allowed keys.
// Input sort is comma-separated; prefix with '-' for DESC. Unknown keys are
// ignored and an empty sort keeps load order.
func sortDevices(devices []inventory.Device, sortParam string) {
	var orders []deviceOrder
	for _, raw := range strings.Split(sortParam, ",") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		desc := false
		if strings.HasPrefix(s, "-") {
			desc = true
			s = strings.TrimPrefix(s, "-")
		}
		order, ok := deviceSortKeys[s]
		if !ok {
			continue
		}
		if desc {
			asc := order
			order = func(a, b inventory.Device) int { return asc(b, a) }
		}
		orders = append(orders, order)
	}
	if len(orders) == 0 {
		return
	}

	slices.SortStableFunc(devices, func(a, b inventory.Device) int {
		for _, order := range orders {
			if c := order(a, b); c != 0 {
				return c
			}
		}
		return 0
	})
}

// searchDevices keeps devices whose tags, sector, type or CPU contain q,
// ignoring case.
func searchDevices(devices []inventory.Device, q string) []inventory.Device {
	if q == "" {
		return devices
	}
	q = strings.ToLower(q)
	out := devices[:0:0]
	for _, d := range devices {
		for _, field := range []string{d.ServiceTag, d.AssetTag, d.Sector, d.EquipmentType, d.CPU} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// page returns the [offset, offset+limit) window of devices
func page(devices []inventory.Device, p listParams) []inventory.Device {
	if p.offset >= len(devices) {
		return []inventory.Device{}
	}
	end := min(p.offset+p.limit, len(devices))
	return devices[p.offset:end]
}

// sendListResponse writes a paged list with its total
func sendListResponse(w http.ResponseWriter, data any, total int, p listParams) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"meta": map[string]any{
			"total":  total,
			"limit":  p.limit,
			"offset": p.offset,
		},
	})
}
