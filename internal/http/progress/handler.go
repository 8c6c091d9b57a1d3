package progress

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/importer"
	"github.com/MrJamesThe3rd/costree/internal/progress"
)

type Handler struct {
	importSvc   *importer.Service
	budgetSvc   *budget.Service
	progressSvc *progress.Service
	maxUpload   int64
}

func NewHandler(importSvc *importer.Service, budgetSvc *budget.Service, progressSvc *progress.Service, maxUpload int64) *Handler {
	return &Handler{
		importSvc:   importSvc,
		budgetSvc:   budgetSvc,
		progressSvc: progressSvc,
		maxUpload:   maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importProgress)
	r.Get("/{costCenter}", h.list)
}

type itemResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ServiceDescription string     `json:"service_description"`
	AccumulatedValue   float64    `json:"accumulated_value"`
	BudgetGroupCode    string     `json:"budget_group_code,omitempty"`
	Date               *time.Time `json:"date,omitempty"`
	IsIndirectCost     bool       `json:"is_indirect_cost"`
	OriginalBudgetID   string     `json:"original_budget_id,omitempty"`
	OriginSheet        string     `json:"origin_sheet,omitempty"`
	CostCenter         string     `json:"cost_center,omitempty"`
}

type importResponse struct {
	Imported  int            `json:"imported"`
	Merged    int            `json:"merged"`
	Suggested int            `json:"suggested"`
	Total     float64        `json:"total"`
	Saved     bool           `json:"saved"`
	Failed    bool           `json:"failed"`
	Error     string         `json:"error,omitempty"`
	Items     []itemResponse `json:"items"`
}

func toItemResponse(it progress.Item) itemResponse {
	resp := itemResponse{
		ID:                 it.ID,
		ServiceDescription: it.ServiceDescription,
		AccumulatedValue:   it.AccumulatedValue,
		BudgetGroupCode:    it.BudgetGroupCode,
		IsIndirectCost:     it.IsIndirectCost,
		OriginalBudgetID:   it.OriginalBudgetID,
		OriginSheet:        it.OriginSheet,
		CostCenter:         it.CostCenter,
	}

	if !it.Date.IsZero() {
		d := it.Date
		resp.Date = &d
	}

	return resp
}

func toItemResponses(items []progress.Item) []itemResponse {
	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}

	return resp
}

func (h *Handler) importProgress(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	costCenter := r.FormValue("cost_center")
	save, _ := strconv.ParseBool(r.FormValue("save"))

	if save && costCenter == "" {
		http.Error(w, "cost_center is required to save", http.StatusBadRequest)
		return
	}

	var roots []*budget.Node

	if costCenter != "" {
		roots, err = h.budgetSvc.Tree(r.Context(), costCenter)
		if err != nil && !errors.Is(err, budget.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	res := h.importSvc.ImportProgress(r.Context(), header.Filename, file, roots)

	resp := importResponse{
		Imported:  res.Report.Imported(),
		Merged:    res.Report.Merged,
		Suggested: res.Report.Suggested,
		Total:     progress.Sum(res.Items),
		Failed:    res.Report.Failed,
		Error:     res.Report.Error,
		Items:     toItemResponses(res.Items),
	}

	if res.Report.Failed {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	status := http.StatusOK

	if save {
		merged, err := h.progressSvc.Merge(r.Context(), costCenter, res.Items)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp.Items = toItemResponses(merged)
		resp.Total = progress.Sum(merged)
		resp.Saved = true
		status = http.StatusCreated
	}

	writeJSON(w, status, resp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.progressSvc.List(r.Context(), chi.URLParam(r, "costCenter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponses(items))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
