package budget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/export"
	"github.com/MrJamesThe3rd/costree/internal/importer"
)

type Handler struct {
	importSvc *importer.Service
	budgetSvc *budget.Service
	exportSvc *export.Service
	maxUpload int64
}

func NewHandler(importSvc *importer.Service, budgetSvc *budget.Service, exportSvc *export.Service, maxUpload int64) *Handler {
	return &Handler{
		importSvc: importSvc,
		budgetSvc: budgetSvc,
		exportSvc: exportSvc,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.listCostCenters)
	r.Post("/import", h.importBudget)
	r.Get("/consolidated", h.consolidated)
	r.Get("/{costCenter}", h.tree)
	r.Get("/{costCenter}/export", h.export)
}

func (h *Handler) importBudget(w http.ResponseWriter, r *http.Request) {
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

	res := h.importSvc.ImportBudget(r.Context(), header.Filename, file)

	resp := importResponse{
		treeResponse: toTreeResponse(costCenter, res.Roots),
		Report:       toReportResponse(res.Report),
	}

	if res.Report.Failed {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	status := http.StatusOK

	if save {
		if err := h.budgetSvc.Save(r.Context(), costCenter, res.Roots); err != nil {
			writeError(w, err)
			return
		}

		resp.treeResponse = toTreeResponse(costCenter, res.Roots)
		resp.Saved = true
		status = http.StatusCreated
	}

	writeJSON(w, status, resp)
}

func (h *Handler) listCostCenters(w http.ResponseWriter, r *http.Request) {
	ccs, err := h.budgetSvc.CostCenters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if ccs == nil {
		ccs = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"cost_centers": ccs})
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	costCenter := chi.URLParam(r, "costCenter")

	roots, err := h.budgetSvc.Tree(r.Context(), costCenter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTreeResponse(costCenter, roots))
}

func (h *Handler) consolidated(w http.ResponseWriter, r *http.Request) {
	roots, err := h.budgetSvc.Consolidated(r.Context(), r.URL.Query()["cost_center"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTreeResponse(budget.Consolidated, roots))
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	costCenter := chi.URLParam(r, "costCenter")

	var buf bytes.Buffer
	if err := h.exportSvc.Export(r.Context(), costCenter, &buf); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"orcamento_%s.xlsx\"", time.Now().Format("20060102")))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "cost_center", costCenter, "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, budget.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, budget.ErrReservedCostCenter):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
