package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/evcraddock/gatepass/internal/export"
	"github.com/evcraddock/gatepass/internal/visit"
)

// handleExport serves GET /export/{csv|xlsx|pdf} as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format, err := export.ParseFormat(strings.TrimPrefix(r.URL.Path, "/export/"))
	if err != nil {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		apiError(w, "invalid date (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	now := s.now()
	report := visit.BuildReport(f.Apply(s.cache.List()))

	var buf bytes.Buffer
	if err := export.Write(&buf, format, report, now); err != nil {
		s.logger.Error().Err(err).Str("format", string(format)).Msg("rendering export")
		apiError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(format, f.Start, f.End, now)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn().Err(err).Msg("writing export")
	}
}
