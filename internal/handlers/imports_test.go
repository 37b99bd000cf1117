package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventory-dashboard/internal/auth"
	"inventory-dashboard/internal/report"
	"inventory-dashboard/internal/store"
	"inventory-dashboard/internal/testutil"
	"inventory-dashboard/pkg/inventory"
)

type fakeImporter struct {
	got *inventory.Inventory
	err error
}

func (f *fakeImporter) Replace(_ context.Context, inv *inventory.Inventory) (store.ImportResult, error) {
	f.got = inv
	if f.err != nil {
		return store.ImportResult{}, f.err
	}
	return store.ImportResult{BatchID: "batch-1", Inserted: inv.Len()}, nil
}

// uploadRequest builds a multipart request. An empty filename omits the file.
func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		fw, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) ImportSummary {
	t.Helper()
	var resp struct {
		Data ImportSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestImportsHandler_Upload_Validation(t *testing.T) {
	handler := NewImportsHandler(nil, testutil.LoadOptions(), zaptest.NewLogger(t))
	csv := []byte(testutil.CSV(testutil.FixtureRows...))

	t.Run("Rejects non-multipart content type", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/imports", nil)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		handler.Upload(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "content-type must be multipart/form-data")
	})

	t.Run("Rejects missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "", nil, map[string]string{"dry_run": "true"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_FILE", decodeError(t, w).Code)
	})

	t.Run("Rejects unsupported extension", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.xls", csv, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNSUPPORTED_FORMAT", decodeError(t, w).Code)
	})

	t.Run("Rejects invalid dry_run", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", csv, map[string]string{"dry_run": "yes"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FORM", decodeError(t, w).Code)
	})

	t.Run("Rejects non-numeric max_errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", csv, map[string]string{"max_errors": "many"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "max_errors must be an integer")
	})

	t.Run("Rejects max_errors out of range", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", csv, map[string]string{"max_errors": "5000"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FORM", decodeError(t, w).Code)
	})
}

func TestImportsHandler_Upload_ParseErrors(t *testing.T) {
	handler := NewImportsHandler(&fakeImporter{}, testutil.LoadOptions(), zaptest.NewLogger(t))

	t.Run("Missing column", func(t *testing.T) {
		body := []byte("Departamento,Setor\nAndar,TI\n")
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", body, nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "IMPORT_FAILED", resp.Code)
		details, ok := resp.Details.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details["missing"], "ServiceTag")
	})

	t.Run("Invalid rows", func(t *testing.T) {
		bad := "Andar Administrativo,TI,Desktop,BAD0001,1,not-a-date,2018-03-10,10,10 anos,Intel,4,08 GB,,DDR3,HDD,1TB"
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", []byte(testutil.CSV(bad)), nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		details, ok := resp.Details.(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 1, details["errors"])
	})
}

func TestImportsHandler_Upload_DryRun(t *testing.T) {
	importer := &fakeImporter{}
	handler := NewImportsHandler(importer, testutil.LoadOptions(), zaptest.NewLogger(t))

	w := httptest.NewRecorder()
	req := uploadRequest(t, "inventory.csv", []byte(testutil.CSV(testutil.FixtureRows...)), map[string]string{"dry_run": "true"})
	handler.Upload(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	sum := decodeSummary(t, w)
	assert.True(t, sum.DryRun)
	assert.Equal(t, inventory.FormatCSV, sum.Format)
	assert.Equal(t, len(testutil.FixtureRows), sum.Devices)
	assert.Equal(t, 2, sum.Summary.ActiveWarranty)
	assert.Nil(t, sum.Result)
	assert.Nil(t, importer.got, "dry run must not reach the store")
}

func TestImportsHandler_Upload_XLSX(t *testing.T) {
	importer := &fakeImporter{}
	handler := NewImportsHandler(importer, testutil.LoadOptions(), zaptest.NewLogger(t))

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, testutil.Inventory(t).Devices()))

	req := uploadRequest(t, "INVENTORY.XLSX", buf.Bytes(), nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.ClaimsKey, &auth.Claims{
		Roles:            []string{auth.RoleInventoryAdmin},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ops"},
	}))

	w := httptest.NewRecorder()
	handler.Upload(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	sum := decodeSummary(t, w)
	assert.False(t, sum.DryRun)
	assert.Equal(t, inventory.FormatXLSX, sum.Format)
	require.NotNil(t, sum.Result)
	assert.Equal(t, "batch-1", sum.Result.BatchID)
	assert.Equal(t, len(testutil.FixtureRows), sum.Result.Inserted)
	require.NotNil(t, importer.got)
	assert.Equal(t, len(testutil.FixtureRows), importer.got.Len())
}

func TestImportsHandler_Upload_Store(t *testing.T) {
	csv := []byte(testutil.CSV(testutil.FixtureRows...))

	t.Run("No store configured", func(t *testing.T) {
		handler := NewImportsHandler(nil, testutil.LoadOptions(), zaptest.NewLogger(t))
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", csv, nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "STORE_UNAVAILABLE", decodeError(t, w).Code)
	})

	t.Run("Store failure", func(t *testing.T) {
		handler := NewImportsHandler(&fakeImporter{err: errors.New("connection reset")}, testutil.LoadOptions(), zaptest.NewLogger(t))
		w := httptest.NewRecorder()
		handler.Upload(w, uploadRequest(t, "inventory.csv", csv, nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "test", "count": 42})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "test", response["message"])
	assert.Equal(t, float64(42), response["count"])
}
