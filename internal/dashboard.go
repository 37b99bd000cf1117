package internal

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"inventory-dashboard/internal/report"
	"inventory-dashboard/pkg/inventory"
)

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	inv, err := s.loadInventory(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	sel := inventory.ParseSelection(r.URL.Query())
	writeData(w, inventory.BuildDashboard(inv, sel))
}

func (s *Server) getOptions(w http.ResponseWriter, r *http.Request) {
	inv, err := s.loadInventory(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeData(w, inv.Options())
}

// filteredDevices loads the inventory and applies the query's selection
// and search term.
func (s *Server) filteredDevices(r *http.Request, p listParams) ([]inventory.Device, error) {
	inv, err := s.loadInventory(r.Context())
	if err != nil {
		return nil, err
	}
	sel := inventory.ParseSelection(r.URL.Query())
	devices := searchDevices(inv.Filter(sel).Devices(), p.q)
	sortDevices(devices, p.sort)
	return devices, nil
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	devices, err := s.filteredDevices(r, p)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	sendListResponse(w, page(devices, p), len(devices), p)
}

func (s *Server) exportDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.filteredDevices(r, parseListParams(r))
	if err != nil {
		writeLoadError(w, err)
		return
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", report.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := report.WriteXLSX(w, devices); err != nil {
		// Headers are gone by now; the client sees a truncated file.
		s.Logger.Error("failed to write export", zap.Error(err))
	}
}
