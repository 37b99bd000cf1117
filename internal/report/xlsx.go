// Package report renders filtered devices and dashboards for export.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"inventory-dashboard/pkg/inventory"
)

// XLSXContentType is the MIME type of WriteXLSX output
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetName  = "Inventario"
	dateLayout = "2006-01-02"
)

// xlsxHeaders match the loader's default column names, so an export can be
// uploaded again. The last four columns are derived.
var xlsxHeaders = []any{
	"Departamento", "Setor", "TipoEquipamento", "ServiceTag", "Patrimônio",
	"Aquisição", "Expiração", "Idade", "IdadeExtenso", "CPU", "Geração",
	"Memória", "DescriçãoMemória", "TipoMemória", "TipoDisco", "Armazenamento",
	"Ano", "Categoria", "Condição", "Garantia",
}

func xlsxRow(d inventory.Device) []any {
	return []any{
		d.Department, d.Sector, d.EquipmentType, d.ServiceTag, d.AssetTag,
		d.AcquisitionDate.Format(dateLayout), d.ExpirationDate.Format(dateLayout),
		d.AgeYears, d.AgeLabel, d.CPU, d.CPUGeneration,
		d.Memory, d.MemoryLayout, d.MemoryType, d.DiskType, d.Storage,
		d.Year, string(d.Category), string(d.Condition), string(d.Warranty),
	}
}

// WriteXLSX writes devices as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, devices []inventory.Device) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(xlsxHeaders))
	if err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, d := range devices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(d)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s: %w", d.ServiceTag, err)
		}
	}

	f.SetColWidth(sheetName, "A", "C", 18)
	f.SetColWidth(sheetName, "J", "J", 30)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
