// Package testutil holds fixtures shared by tests outside pkg/inventory.
package testutil

import (
	"strings"
	"testing"
	"time"

	"inventory-dashboard/pkg/inventory"
)

// FixedNow is the reference date every fixture is derived against
var FixedNow = time.Date(2025, time.June, 1, 10, 30, 0, 0, time.UTC)

const fixtureHeader = "Departamento,Setor,TipoEquipamento,ServiceTag,Patrimônio,Aquisição,Expiração,Idade,IdadeExtenso,CPU,Geração,Memória,DescriçãoMemória,TipoMemória,TipoDisco,Armazenamento"

// FixtureRows, derived at FixedNow:
//
//	ABC1234 TI          Old     Poor          Expired
//	XYZ9876 Financeiro  Good    Satisfactory  Active
//	RYZ0001 TI          Regular Satisfactory  Expired
//	MEM0004 Atendimento Good    Poor          Active
var FixtureRows = []string{
	"Andar Administrativo,TI,Desktop,ABC1234,12345678,2015-03-10,2018-03-10,10,10 anos,Intel i5-4460S,4,08 GB,2 x 4GB DDR3,DDR3,HDD,1TB",
	"Andar Administrativo,Financeiro,Notebook,XYZ9876,87654321,2023-01-15,2027-01-15,2,2 anos,Intel i5-1335U,13,16 GB,2 x 8GB DDR4,DDR4,SSD,512GB",
	"Andar Administrativo,TI,Notebook,RYZ0001,11112222,2019-07-01,2024-07-01,6,6 anos,AMD Ryzen 7 3700U,3,16 GB,2 x 8GB DDR4,DDR4,SSD,256GB",
	"Andar Administrativo,Atendimento,Desktop,MEM0004,33334444,2021-05-20,2025-06-01,4,4 anos,Intel i3-1005G1,10,04 GB,1 x 4GB DDR4,DDR4,SSD,128GB",
}

// CSV renders rows under the standard header
func CSV(rows ...string) string {
	return fixtureHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

// LoadOptions pins the clock to FixedNow
func LoadOptions() inventory.LoadOptions {
	return inventory.LoadOptions{Now: func() time.Time { return FixedNow }}
}

// Inventory parses FixtureRows
func Inventory(t *testing.T) *inventory.Inventory {
	t.Helper()
	inv, err := inventory.Read(strings.NewReader(CSV(FixtureRows...)), inventory.FormatCSV, LoadOptions())
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}
	return inv
}
