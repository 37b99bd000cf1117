//go:build integration

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventory-dashboard/internal"
	"inventory-dashboard/internal/config"
	"inventory-dashboard/internal/testutil"
	"inventory-dashboard/pkg/inventory"
)

func readFixture(t *testing.T, rows ...string) *inventory.Inventory {
	t.Helper()
	inv, err := inventory.Read(strings.NewReader(testutil.CSV(rows...)), inventory.FormatCSV, testutil.LoadOptions())
	require.NoError(t, err)
	return inv
}

func TestStoreReplaceAndLoad(t *testing.T) {
	testutil.RequireIntegration(t)
	ctx := context.Background()
	st, _ := testutil.NewTestStore(t)

	// Empty table loads as an empty inventory
	inv, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, inv.Len())

	res, err := st.Replace(ctx, readFixture(t, testutil.FixtureRows...))
	require.NoError(t, err)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 4, res.Inserted)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Removed)

	inv, err = st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, inv.Len())

	// Import order is preserved and derived columns are recomputed
	first := inv.Devices()[0]
	assert.Equal(t, "ABC1234", first.ServiceTag)
	assert.Equal(t, "2015", first.Year)
	assert.Equal(t, inventory.ConditionPoor, first.Condition)
	assert.Equal(t, inventory.WarrantyExpired, first.Warranty)
}

func TestStoreReplaceRemovesStaleDevices(t *testing.T) {
	testutil.RequireIntegration(t)
	ctx := context.Background()
	st, _ := testutil.NewTestStore(t)

	_, err := st.Replace(ctx, readFixture(t, testutil.FixtureRows...))
	require.NoError(t, err)

	// Second import keeps two devices and drops the rest
	res, err := st.Replace(ctx, readFixture(t, testutil.FixtureRows[1], testutil.FixtureRows[3]))
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 2, res.Removed)

	inv, err := st.Load(ctx)
	require.NoError(t, err)
	tags := []string{}
	for _, d := range inv.Devices() {
		tags = append(tags, d.ServiceTag)
	}
	assert.Equal(t, []string{"XYZ9876", "MEM0004"}, tags)
}

func TestImportThroughAPI(t *testing.T) {
	testutil.RequireIntegration(t)
	st, _ := testutil.NewTestStore(t)

	cfg := &config.Config{RateLimitPerSec: 100, RateLimitBurst: 100}
	srv, err := internal.NewServer(cfg, st, st, testutil.LoadOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", "inventory.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(testutil.CSV(testutil.FixtureRows...)))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	srv.Router.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard?sector=TI", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data inventory.Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Summary.Total)
	assert.Equal(t, []string{"-", "Atendimento", "Financeiro", "TI"}, resp.Data.Options.Sectors)
}
