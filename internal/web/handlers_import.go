package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/core"
	"github.com/JonMunkholm/crmport/internal/logging"
	"github.com/JonMunkholm/crmport/internal/tabular"
	"github.com/JonMunkholm/crmport/internal/web/templates"
)

const (
	msgImportOK     = "Import completed successfully"
	msgImportFailed = "Import failed with validation errors"
	msgValidated    = "File validation completed"
)

// importResponse is the JSON body of POST /api/import/csv. Errors is only
// present on failure.
type importResponse struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message"`
	Errors   []string                `json:"errors,omitempty"`
	Warnings []string                `json:"warnings"`
	Imported map[core.EntityType]int `json:"imported"`
}

type validateResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Results []core.MemberValidation `json:"results"`
}

// upload is a fully buffered multipart file.
type upload struct {
	name string
	data []byte
}

// readUpload reads the "file" form field, enforcing the configured size
// limit and the .csv/.zip extension check.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.Wrapf(err, "file too large (limit %d bytes)", maxSize)
		}
		return nil, errors.Wrap(errNoFile, err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	name := strings.ToLower(header.Filename)
	if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".zip") {
		return nil, errors.Wrapf(tabular.ErrUnsupportedFormat, "%q", header.Filename)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	return &upload{name: header.Filename, data: data}, nil
}

// handleImport imports an uploaded CSV or ZIP file into the store.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	log := logging.WithFields(r.Context(), "file", up.name, "size", len(up.data))
	log.Info("import requested")

	report, err := s.service.Import(r.Context(), up.data, up.name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", "5")
			status = http.StatusServiceUnavailable
		}
		s.respondError(w, r, err, status)
		return
	}

	status, message := http.StatusOK, msgImportOK
	if !report.Success {
		status, message = http.StatusBadRequest, msgImportFailed
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ImportSummary(message, report).Render(r.Context(), w); err != nil {
			log.Error("render import summary", "error", err)
		}
		return
	}

	resp := importResponse{
		Success:  report.Success,
		Message:  message,
		Warnings: report.Warnings,
		Imported: report.Imported,
	}
	if !report.Success {
		resp.Errors = report.Errors
	}
	writeJSON(w, status, resp)
}

// handleValidate reports per-member validation results without writing.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	results, err := s.service.Validate(up.data, up.name)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ValidationTable(results).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render validation table", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Success: true,
		Message: msgValidated,
		Results: results,
	})
}

// handleImportHistory lists recent import runs and current slot usage.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":    s.service.History(),
		"limiter": s.service.LimiterStatus(),
	})
}
