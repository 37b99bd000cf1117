package inventory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Field keys used by ColumnMap and mapping files.
const (
	FieldDepartment      = "department"
	FieldSector          = "sector"
	FieldEquipmentType   = "equipment_type"
	FieldServiceTag      = "service_tag"
	FieldAssetTag        = "asset_tag"
	FieldAcquisitionDate = "acquisition_date"
	FieldExpirationDate  = "expiration_date"
	FieldAgeYears        = "age_years"
	FieldAgeLabel        = "age_label"
	FieldCPU             = "cpu"
	FieldCPUGeneration   = "cpu_generation"
	FieldMemory          = "memory"
	FieldMemoryLayout    = "memory_layout"
	FieldMemoryType      = "memory_type"
	FieldDiskType        = "disk_type"
	FieldStorage         = "storage"
)

// optionalFields may be absent from the header row. A missing age is
// computed from the acquisition date.
var optionalFields = map[string]bool{
	FieldAgeYears:     true,
	FieldAgeLabel:     true,
	FieldMemoryLayout: true,
}

// ColumnMap maps a field key to the header names it may appear under.
// The first header found in the table wins.
type ColumnMap map[string][]string

// DefaultColumns returns the spreadsheet headers used by the inventory
// export, plus English aliases.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		FieldDepartment:      {"Departamento", "Department"},
		FieldSector:          {"Setor", "Sector"},
		FieldEquipmentType:   {"TipoEquipamento", "Equipment Type"},
		FieldServiceTag:      {"ServiceTag", "Service Tag"},
		FieldAssetTag:        {"Patrimônio", "Patrimonio", "Asset Tag"},
		FieldAcquisitionDate: {"Aquisição", "Aquisicao", "Acquisition Date"},
		FieldExpirationDate:  {"Expiração", "Expiracao", "Expiration Date"},
		FieldAgeYears:        {"Idade", "Age"},
		FieldAgeLabel:        {"IdadeExtenso", "Age Label"},
		FieldCPU:             {"CPU"},
		FieldCPUGeneration:   {"Geração", "Geracao", "CPU Generation"},
		FieldMemory:          {"Memória", "Memoria", "Memory"},
		FieldMemoryLayout:    {"DescriçãoMemória", "DescricaoMemoria", "Memory Layout"},
		FieldMemoryType:      {"TipoMemória", "TipoMemoria", "Memory Type"},
		FieldDiskType:        {"TipoDisco", "Disk Type"},
		FieldStorage:         {"Armazenamento", "Storage"},
	}
}

// mappingFile is the YAML layout accepted by LoadColumnMap
type mappingFile struct {
	Version int                 `yaml:"version"`
	Columns map[string][]string `yaml:"columns"`
}

// LoadColumnMap reads a YAML mapping file and merges it over DefaultColumns.
// A field listed in the file replaces the default headers for that field.
func LoadColumnMap(path string) (ColumnMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return ParseColumnMap(data)
}

// ParseColumnMap is LoadColumnMap for in-memory YAML.
func ParseColumnMap(data []byte) (ColumnMap, error) {
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}
	if mf.Version > 1 {
		return nil, fmt.Errorf("unsupported mapping version %d", mf.Version)
	}

	cols := DefaultColumns()
	for field, headers := range mf.Columns {
		if _, known := cols[field]; !known {
			return nil, fmt.Errorf("unknown field %q in mapping", field)
		}
		if len(headers) == 0 {
			return nil, fmt.Errorf("field %q has no headers", field)
		}
		cols[field] = headers
	}
	return cols, nil
}

// resolve finds the column index of every field in header. Optional
// fields that are absent get index -1.
func (c ColumnMap) resolve(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	idx := make(map[string]int, len(c))
	var missing []string
	for field, names := range c {
		idx[field] = -1
		for _, name := range names {
			if pos, ok := positions[normalizeHeader(name)]; ok {
				idx[field] = pos
				break
			}
		}
		if idx[field] < 0 && !optionalFields[field] {
			missing = append(missing, names[0])
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &HeaderError{Missing: missing}
	}
	return idx, nil
}

// normalizeHeader folds case, surrounding space, a UTF-8 BOM and
// composed/decomposed accents.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// OptionsFromMapping returns LoadOptions using the mapping file at path,
// or the default columns when path is empty.
func OptionsFromMapping(path string) (LoadOptions, error) {
	if path == "" {
		return LoadOptions{}, nil
	}
	cols, err := LoadColumnMap(path)
	if err != nil {
		return LoadOptions{}, err
	}
	return LoadOptions{Columns: cols}, nil
}
