package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/export"
)

type submissionRequestBody struct {
	UploadID    string                `json:"upload_id"`
	Form        domain.SubmissionForm `json:"form"`
	Confidences map[string]float64    `json:"confidences"`
}

func (rt *Router) submitInternship(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req submissionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := rt.submissions.Submit(r.Context(), ports.SubmissionRequest{
		UploadID:    req.UploadID,
		Form:        req.Form,
		Confidences: req.Confidences,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSubmission(serviceName, string(record.Decision), record.Composite)
		if record.ABCStatus != "" {
			rt.metrics.RecordABCPush(serviceName, record.ABCStatus)
		}
	}

	writeJSON(w, http.StatusCreated, record)
}

func (rt *Router) submissionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/submissions/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "submission id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := rt.submissions.GetSubmission(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		if err := rt.submissions.DeleteSubmission(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "internship_id": id})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// exportSubmissions streams the mentor XLSX workbook.
func (rt *Router) exportSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.requireMentor(r); err != nil {
		writeError(w, err)
		return
	}

	raw, err := rt.exporter.ExportSubmissionsXLSX(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
