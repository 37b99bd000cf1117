package inventory

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 1, 10, 30, 0, 0, time.UTC)

const fixtureHeader = "Departamento,Setor,TipoEquipamento,ServiceTag,Patrimônio,Aquisição,Expiração,Idade,IdadeExtenso,Garantia,CPU,Geração,Memória,DescriçãoMemória,TipoMemória,TipoDisco,Armazenamento"

var fixtureRows = []string{
	"Andar Administrativo,TI,Desktop,ABC1234,12345678,2015-03-10,2018-03-10,10,10 anos,Expirada,Intel i5-4460S,4,08 GB,2 x 4GB DDR3,DDR3,HDD,1TB",
	"Andar Administrativo,Financeiro,Notebook,XYZ9876,87654321,2023-01-15,2027-01-15,2,2 anos,Ativa,Intel i5-1335U,13,16 GB,2 x 8GB DDR4,DDR4,SSD,512GB",
	"Andar Administrativo,TI,Notebook,RYZ0001,11112222,2019-07-01,2024-07-01,6,6 anos,Expirada,AMD Ryzen 7 3700U,3,16 GB,2 x 8GB DDR4,DDR4,SSD,256GB",
	"Andar Administrativo,Atendimento,Desktop,MEM0004,33334444,2021-05-20,2025-06-01,4,4 anos,Ativa,Intel i3-1005G1,10,04 GB,1 x 4GB DDR4,DDR4,SSD,128GB",
}

func fixtureCSV(rows ...string) string {
	return fixtureHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func testOptions() LoadOptions {
	return LoadOptions{Now: func() time.Time { return fixedNow }}
}

func loadFixture(t *testing.T) *Inventory {
	t.Helper()
	inv, err := Read(strings.NewReader(fixtureCSV(fixtureRows...)), FormatCSV, testOptions())
	require.NoError(t, err)
	require.Equal(t, len(fixtureRows), inv.Len())
	return inv
}
