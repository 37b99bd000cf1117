package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"
)

// Format is the encoding of an input table
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultDateLayouts are tried in order when a date cell holds text.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// LoadOptions controls how a table is read
type LoadOptions struct {
	Columns     ColumnMap        // default DefaultColumns()
	DateLayouts []string         // default DefaultDateLayouts
	Now         func() time.Time // reference clock for age and warranty, default time.Now
	MaxErrors   int              // row error samples kept, default 50
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Columns == nil {
		o.Columns = DefaultColumns()
	}
	if len(o.DateLayouts) == 0 {
		o.DateLayouts = DefaultDateLayouts
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MaxErrors <= 0 {
		o.MaxErrors = 50
	}
	return o
}

// FormatFromName picks the table format from a file extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load reads the inventory table at path. The file must exist and end in
// .csv or .xlsx; any invalid row fails the whole load.
func Load(path string, opts LoadOptions) (*Inventory, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format, opts)
}

// Read parses a table of the given format from r.
func Read(r io.Reader, format Format, opts LoadOptions) (*Inventory, error) {
	opts = opts.withDefaults()

	var (
		table [][]cell
		err   error
	)
	switch format {
	case FormatCSV:
		table, err = readCSV(r)
	case FormatXLSX:
		table, err = readXLSX(r, opts.Columns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return build(table, opts)
}

// cell is one table value. XLSX date cells carry their time directly and
// XLSX numeric cells keep their stored value in raw.
type cell struct {
	text    string
	raw     string
	numeric bool
	time    time.Time
	isTime  bool
}

func readCSV(r io.Reader) ([][]cell, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var table [][]cell
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		row := make([]cell, len(rec))
		for i, v := range rec {
			row[i] = cell{text: strings.TrimSpace(v)}
		}
		table = append(table, row)
	}
	return table, nil
}

// readXLSX returns the first sheet whose header row has every required
// column, or the first sheet when none does so the header error surfaces.
func readXLSX(r io.Reader, cols ColumnMap) ([][]cell, error) {
	// xlsx.OpenReaderAt wants an io.ReaderAt, so buffer the upload
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel file: %w", err)
	}
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}

	var fallback [][]cell
	for i, sheet := range wb.Sheets {
		table, err := sheetCells(sheet, wb.Date1904)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			fallback = table
		}
		if len(table) == 0 {
			continue
		}
		if _, err := cols.resolve(texts(table[0])); err == nil {
			return table, nil
		}
	}
	return fallback, nil
}

func sheetCells(sheet *xlsx.Sheet, date1904 bool) ([][]cell, error) {
	table := make([][]cell, 0, sheet.MaxRow)
	for r := 0; r < sheet.MaxRow; r++ {
		row, err := sheet.Row(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s row %d: %w", sheet.Name, r+1, err)
		}
		cells := make([]cell, sheet.MaxCol)
		for c := 0; c < sheet.MaxCol; c++ {
			xc := row.GetCell(c)
			v := cell{text: strings.TrimSpace(xc.String())}
			if xc.Type() == xlsx.CellTypeNumeric {
				v.raw, v.numeric = strings.TrimSpace(xc.Value), true
			}
			if xc.IsTime() {
				if t, err := xc.GetTime(date1904); err == nil {
					v.time, v.isTime = t, true
				}
			}
			cells[c] = v
		}
		table = append(table, cells)
	}
	return table, nil
}

func build(table [][]cell, opts LoadOptions) (*Inventory, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("empty table: %w", ErrMissingColumn)
	}
	header := texts(table[0])
	idx, err := opts.Columns.resolve(header)
	if err != nil {
		return nil, err
	}

	now := opts.Now()
	loadErr := &LoadError{}
	seen := make(map[string]int)
	devices := make([]Device, 0, len(table)-1)

	for i, row := range table[1:] {
		if isBlank(row) {
			continue
		}
		p := &rowParser{row: row, header: header, idx: idx, num: i + 2, layouts: opts.DateLayouts}
		d := p.device(now)
		if len(p.errs) > 0 {
			for _, re := range p.errs {
				loadErr.add(re, opts.MaxErrors)
			}
			continue
		}
		if first, dup := seen[d.ServiceTag]; dup {
			loadErr.add(RowError{
				Row:     p.num,
				Column:  p.column(FieldServiceTag),
				Message: fmt.Sprintf("duplicate service tag %q, first seen on row %d", d.ServiceTag, first),
			}, opts.MaxErrors)
			continue
		}
		seen[d.ServiceTag] = p.num
		devices = append(devices, d)
	}

	if loadErr.Errors > 0 {
		return nil, loadErr
	}
	return &Inventory{devices: devices}, nil
}

// rowParser casts one data row, collecting an error per bad cell
type rowParser struct {
	row     []cell
	header  []string
	idx     map[string]int
	num     int
	layouts []string
	errs    []RowError
}

func (p *rowParser) device(now time.Time) Device {
	d := Device{
		Department:      p.text(FieldDepartment),
		Sector:          p.text(FieldSector),
		EquipmentType:   p.text(FieldEquipmentType),
		ServiceTag:      p.identifier(FieldServiceTag, true),
		AssetTag:        p.identifier(FieldAssetTag, false),
		AcquisitionDate: p.date(FieldAcquisitionDate),
		ExpirationDate:  p.date(FieldExpirationDate),
		AgeLabel:        p.text(FieldAgeLabel),
		CPU:             p.text(FieldCPU),
		CPUGeneration:   p.integer(FieldCPUGeneration),
		Memory:          p.text(FieldMemory),
		MemoryLayout:    p.text(FieldMemoryLayout),
		MemoryType:      p.text(FieldMemoryType),
		DiskType:        p.text(FieldDiskType),
		Storage:         p.text(FieldStorage),
	}

	if p.text(FieldAgeYears) == "" {
		d.AgeYears = now.Year() - d.AcquisitionDate.Year()
	} else {
		d.AgeYears = p.integer(FieldAgeYears)
	}
	if d.AgeYears < 0 {
		p.fail(FieldAgeYears, fmt.Sprintf("age %d is negative", d.AgeYears))
	}
	if d.AgeLabel == "" {
		d.AgeLabel = AgeLabel(d.AgeYears)
	}

	d.derive(now)
	return d
}

func (p *rowParser) get(field string) cell {
	i, ok := p.idx[field]
	if !ok || i < 0 || i >= len(p.row) {
		return cell{}
	}
	return p.row[i]
}

func (p *rowParser) text(field string) string {
	return p.get(field).text
}

func (p *rowParser) required(field string) string {
	v := p.text(field)
	if v == "" {
		p.fail(field, "value is required")
	}
	return v
}

func (p *rowParser) integer(field string) int {
	v := p.required(field)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	// spreadsheets often store whole numbers as floats
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) &&
		f >= math.MinInt64 && f < math.MaxInt64 {
		return int(f)
	}
	p.fail(field, fmt.Sprintf("%q is not an integer", v))
	return 0
}

func (p *rowParser) date(field string) time.Time {
	c := p.get(field)
	if c.isTime {
		return c.time
	}
	v := p.required(field)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	// only spreadsheet numbers are serials; "2023" in a CSV is not a date
	if c.numeric {
		if serial, err := strconv.ParseFloat(c.raw, 64); err == nil && serial > 0 {
			return xlsx.TimeFromExcelTime(serial, false)
		}
	}
	p.fail(field, fmt.Sprintf("%q does not match date layouts %s", v, strings.Join(p.layouts, ", ")))
	return time.Time{}
}

func (p *rowParser) fail(field, msg string) {
	p.errs = append(p.errs, RowError{Row: p.num, Column: p.column(field), Message: msg})
}

// column names a field by its header in this table.
func (p *rowParser) column(field string) string {
	if i, ok := p.idx[field]; ok && i >= 0 && i < len(p.header) {
		return p.header[i]
	}
	return field
}

// identifier reads an id column as text. Numeric XLSX cells are formatted
// from their stored value so long ids never turn into "1.23E+11".
func (p *rowParser) identifier(field string, required bool) string {
	c := p.get(field)
	if c.numeric {
		if f, err := strconv.ParseFloat(c.raw, 64); err == nil && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	if required {
		return identifier(p.required(field))
	}
	return identifier(c.text)
}

// identifier undoes float formatting of numeric ids ("12345678.0").
func identifier(v string) string {
	if whole, frac, ok := strings.Cut(v, "."); ok && isDigits(whole) && strings.Trim(frac, "0") == "" {
		return whole
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBlank(row []cell) bool {
	for _, c := range row {
		if c.text != "" || c.isTime {
			return false
		}
	}
	return true
}

func texts(row []cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.text
	}
	return out
}
