package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"inventory-dashboard/internal/testutil"
	"inventory-dashboard/pkg/inventory"
)

func TestWriteXLSX(t *testing.T) {
	inv := testutil.Inventory(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, inv.Devices()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, inv.Len()+1)

	assert.Equal(t, "Departamento", rows[0][0])
	assert.Equal(t, "Garantia", rows[0][len(rows[0])-1])
	assert.Equal(t, "ABC1234", rows[1][3])
	assert.Equal(t, "2015-03-10", rows[1][5])
	assert.Equal(t, []string{"2015", "Old", "Poor", "Expired"}, rows[1][16:20])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteXLSX_ReadsBack(t *testing.T) {
	inv := testutil.Inventory(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, inv.Devices()))

	again, err := inventory.Read(&buf, inventory.FormatXLSX, testutil.LoadOptions())
	require.NoError(t, err)
	require.Equal(t, inv.Len(), again.Len())

	for i, d := range again.Devices() {
		want := inv.Devices()[i]
		assert.Equal(t, want.ServiceTag, d.ServiceTag)
		assert.Equal(t, want.AgeYears, d.AgeYears)
		assert.Equal(t, want.Condition, d.Condition)
		assert.Equal(t, want.Warranty, d.Warranty)
		assert.True(t, want.AcquisitionDate.Equal(d.AcquisitionDate))
	}
}

func TestWriteText(t *testing.T) {
	inv := testutil.Inventory(t)
	sel := inventory.Selection{Sector: "TI", Warranty: inventory.Unselected}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, inventory.BuildDashboard(inv, sel)))
	out := buf.String()

	assert.Contains(t, out, "Andar Administrativo")
	assert.Contains(t, out, "sector=TI")
	assert.NotContains(t, out, "warranty=")
	assert.Contains(t, out, "Devices by sector")
	assert.Regexp(t, `Devices:\s+2\n`, out)
	assert.False(t, strings.Contains(out, "Financeiro"), "filtered sectors must not appear")
}

func TestDescribeSelection(t *testing.T) {
	assert.Equal(t, "all", describeSelection(inventory.Selection{}))
	assert.Equal(t, "all", describeSelection(inventory.Selection{Sector: inventory.Unselected}))
	assert.Equal(t, "disk_type=SSD, equipment_type=Notebook",
		describeSelection(inventory.Selection{DiskType: "SSD", EquipmentType: "Notebook"}))
}
