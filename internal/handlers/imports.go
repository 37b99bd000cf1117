package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inventory-dashboard/internal/auth"
	"inventory-dashboard/internal/store"
	"inventory-dashboard/pkg/inventory"
)

// Importer persists an uploaded inventory
type Importer interface {
	Replace(ctx context.Context, inv *inventory.Inventory) (store.ImportResult, error)
}

// ImportsHandler handles inventory uploads
type ImportsHandler struct {
	Importer Importer
	Opts     inventory.LoadOptions
	MaxBytes int64
	Logger   *zap.Logger

	validate *validator.Validate
}

// NewImportsHandler creates a new imports handler. importer may be nil, in
// which case only dry runs succeed.
func NewImportsHandler(importer Importer, opts inventory.LoadOptions, logger *zap.Logger) *ImportsHandler {
	return &ImportsHandler{
		Importer: importer,
		Opts:     opts,
		MaxBytes: 20 << 20, // 20 MB
		Logger:   logger,
		validate: validator.New(),
	}
}

// importForm holds the non-file form fields
type importForm struct {
	DryRun    string `validate:"omitempty,oneof=true false"`
	MaxErrors int    `validate:"gte=0,lte=1000"`
}

// ImportSummary is returned for both dry runs and real imports
type ImportSummary struct {
	Filename string              `json:"filename"`
	Format   inventory.Format    `json:"format"`
	DryRun   bool                `json:"dry_run"`
	Devices  int                 `json:"devices"`
	Summary  inventory.Summary   `json:"summary"`
	Result   *store.ImportResult `json:"result,omitempty"`
}

// ErrorResponse is the JSON body of a failed upload
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Upload handles a multipart .csv or .xlsx upload. The table is parsed in
// full before anything is written, so a bad file never touches the store.
func (h *ImportsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Limit body size
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	// Require multipart
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "INVALID_CONTENT_TYPE", "content-type must be multipart/form-data", nil)
		return
	}

	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "invalid multipart form: "+err.Error(), nil)
		return
	}

	form := importForm{DryRun: r.FormValue("dry_run")}
	if v := r.FormValue("max_errors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FORM", "max_errors must be an integer", nil)
			return
		}
		form.MaxErrors = n
	}
	if err := h.validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error(), nil)
		return
	}
	dryRun := form.DryRun == "true"

	// File
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "file is required: "+err.Error(), nil)
		return
	}
	defer file.Close()

	format, err := inventory.FormatFromName(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "only .csv and .xlsx files are accepted", nil)
		return
	}

	opts := h.Opts
	if form.MaxErrors > 0 {
		opts.MaxErrors = form.MaxErrors
	}
	inv, err := inventory.Read(file, format, opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "IMPORT_FAILED", err.Error(), loadErrorDetails(err))
		return
	}

	sum := ImportSummary{
		Filename: header.Filename,
		Format:   format,
		DryRun:   dryRun,
		Devices:  inv.Len(),
		Summary:  inv.Summarize(),
	}
	if dryRun {
		writeData(w, sum)
		return
	}

	if h.Importer == nil {
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "no database configured; use dry_run=true", nil)
		return
	}

	res, err := h.Importer.Replace(r.Context(), inv)
	if err != nil {
		h.Logger.Error("import failed", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "IMPORT_FAILED", "failed to store inventory", nil)
		return
	}
	sum.Result = &res

	fields := []zap.Field{
		zap.String("filename", header.Filename),
		zap.String("batch_id", res.BatchID),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		fields = append(fields, zap.String("subject", claims.Subject))
	}
	h.Logger.Info("inventory imported", fields...)

	writeData(w, sum)
}

// loadErrorDetails exposes the row or header errors of a failed parse
func loadErrorDetails(err error) any {
	var (
		loadErr   *inventory.LoadError
		headerErr *inventory.HeaderError
	)
	switch {
	case errors.As(err, &loadErr):
		return loadErr
	case errors.As(err, &headerErr):
		return headerErr
	}
	return nil
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": v,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	})
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, Details: details})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
