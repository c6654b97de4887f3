package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/childbooklet/booklet-server-go/internal/audit"
	apperrors "github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/service"
)

const (
	recordsDefaultLimit = 1000
	recordsMaxLimit     = 1000
)

// ChildHandler serves the field-agent side: batch upload, record search
// and the agent's own upload history.
type ChildHandler struct {
	ingestService *service.IngestService
	childService  *service.ChildService
}

func NewChildHandler(ingestService *service.IngestService, childService *service.ChildService) *ChildHandler {
	return &ChildHandler{ingestService: ingestService, childService: childService}
}

func (h *ChildHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/batch", h.BatchUpload)
	r.Get("/search", h.Search)
	return r
}

func (h *ChildHandler) BatchUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Records          []model.ChildRecord `json:"records"`
		UploaderName     string              `json:"uploaderName"`
		UploaderEmail    string              `json:"uploaderEmail"`
		UploaderLocation string              `json:"uploaderLocation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}
	if req.Records == nil {
		writeError(w, apperrors.ValidationError("Records array required"))
		return
	}

	uploader := model.Uploader{
		Name:     req.UploaderName,
		Email:    req.UploaderEmail,
		Location: req.UploaderLocation,
	}
	report := h.ingestService.Ingest(r.Context(), req.Records, uploader)

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventBatchUpload,
		Subject: uploader.Attribution(),
		Details: map[string]interface{}{
			"total":      report.Summary.Total,
			"uploaded":   report.Summary.Uploaded,
			"duplicates": report.Summary.Duplicates,
			"failed":     report.Summary.Failed,
			"skipped":    report.Summary.Skipped,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"results": report.Results,
		"summary": report.Summary,
		"message": fmt.Sprintf("Successfully processed %d records", report.Summary.Total),
	})
}

func (h *ChildHandler) Search(w http.ResponseWriter, r *http.Request) {
	record, err := h.childService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	if record == nil {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": true, "record": record})
}

func (h *ChildHandler) UserRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.UploaderQuery{
		Email:        q.Get("userEmail"),
		Name:         q.Get("userName"),
		Phone:        q.Get("userPhone"),
		IndividualID: q.Get("individualId"),
	}

	records, err := h.childService.RecordsForUploader(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}
