package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Category buckets a device by age
type Category string

const (
	CategoryGood    Category = "Good"
	CategoryRegular Category = "Regular"
	CategoryOld     Category = "Old"
)

// Condition is the overall hardware assessment of a device
type Condition string

const (
	ConditionPoor         Condition = "Poor"
	ConditionSatisfactory Condition = "Satisfactory"
)

// WarrantyStatus reports whether the vendor warranty still covers a device
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "Active"
	WarrantyExpired WarrantyStatus = "Expired"
)

const (
	// ExemptCPU is old by generation number but still considered adequate.
	ExemptCPU = "AMD Ryzen 7 3700U"

	poorAgeYears      = 9
	poorCPUGeneration = 6
)

// poorMemoryGB lists memory sizes that are too small for current workloads.
var poorMemoryGB = map[int]bool{4: true, 6: true}

// Device is one inventory row after type casting and derivation.
// Values are never modified once an Inventory has been built.
type Device struct {
	Department      string    `json:"department"`
	Sector          string    `json:"sector"`
	EquipmentType   string    `json:"equipment_type"`
	ServiceTag      string    `json:"service_tag"`
	AssetTag        string    `json:"asset_tag"`
	AcquisitionDate time.Time `json:"acquisition_date"`
	ExpirationDate  time.Time `json:"expiration_date"`
	AgeYears        int       `json:"age_years"`
	AgeLabel        string    `json:"age_label"`
	CPU             string    `json:"cpu"`
	CPUGeneration   int       `json:"cpu_generation"`
	Memory          string    `json:"memory"`
	MemoryLayout    string    `json:"memory_layout,omitempty"`
	MemoryType      string    `json:"memory_type"`
	DiskType        string    `json:"disk_type"`
	Storage         string    `json:"storage"`

	// Derived columns
	Year      string         `json:"year"`
	Category  Category       `json:"category"`
	Condition Condition      `json:"condition"`
	Warranty  WarrantyStatus `json:"warranty"`
}

// Categorize maps an age in years to its category: up to 5 is Good,
// up to 9 is Regular and anything older is Old.
func Categorize(ageYears int) Category {
	switch {
	case ageYears <= 5:
		return CategoryGood
	case ageYears <= 9:
		return CategoryRegular
	default:
		return CategoryOld
	}
}

// Classify returns Poor when any of the following holds, Satisfactory otherwise:
//   - the device is 9 years or older
//   - the CPU is generation 6 or earlier (ExemptCPU excepted)
//   - memory is 4 GB or 6 GB
//   - the disk is an HDD
func Classify(d Device) Condition {
	if d.AgeYears >= poorAgeYears {
		return ConditionPoor
	}
	if d.CPUGeneration <= poorCPUGeneration && !strings.EqualFold(strings.TrimSpace(d.CPU), ExemptCPU) {
		return ConditionPoor
	}
	if gb, ok := MemoryGB(d.Memory); ok && poorMemoryGB[gb] {
		return ConditionPoor
	}
	if strings.EqualFold(strings.TrimSpace(d.DiskType), "HDD") {
		return ConditionPoor
	}
	return ConditionSatisfactory
}

// WarrantyAt compares calendar days: a warranty expiring today is still active.
func WarrantyAt(expiration, now time.Time) WarrantyStatus {
	if dateOnly(now).After(dateOnly(expiration)) {
		return WarrantyExpired
	}
	return WarrantyActive
}

// AgeLabel spells out an age for display.
func AgeLabel(ageYears int) string {
	switch {
	case ageYears < 1:
		return "New"
	case ageYears == 1:
		return "1 year"
	default:
		return fmt.Sprintf("%d years", ageYears)
	}
}

// MemoryGB extracts the size in gigabytes from labels such as "08 GB",
// "4GB" or "1 TB". A bare number is read as gigabytes.
func MemoryGB(label string) (int, bool) {
	s := strings.TrimSpace(label)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, false
	}
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	switch unit := strings.ToUpper(strings.TrimSpace(s[end:])); unit {
	case "", "G", "GB":
		return n, true
	case "T", "TB":
		return n * 1024, true
	default:
		return 0, false
	}
}

// Derive returns d with Year, Category, Condition and Warranty computed
// relative to now. Stored rows are derived again on every read since
// warranty status moves with the clock.
func Derive(d Device, now time.Time) Device {
	d.derive(now)
	return d
}

func (d *Device) derive(now time.Time) {
	d.Year = strconv.Itoa(d.AcquisitionDate.Year())
	d.Category = Categorize(d.AgeYears)
	d.Condition = Classify(*d)
	d.Warranty = WarrantyAt(d.ExpirationDate, now)
}

func dateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
