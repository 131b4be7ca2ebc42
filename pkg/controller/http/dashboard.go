package http

import (
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
)

// maxLogsLimit caps /api/logs?limit=
const maxLogsLimit = 1000

// DashboardHandler serves the read-only dashboard API
type DashboardHandler struct {
	dashboardUC interfaces.DashboardUseCase
}

func NewDashboardHandler(dashboardUC interfaces.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.dashboardUC.Summary(ctx)
	if err != nil {
		errutil.Handle(ctx, "Failed to build dashboard summary", err)
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, summary)
}

type logsResponse struct {
	Logs []string `json:"logs"`
}

func (h *DashboardHandler) Logs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(ctx, w, goerr.New("limit must be a positive integer", goerr.V("limit", raw)), http.StatusBadRequest)
			return
		}
		limit = min(n, maxLogsLimit)
	}

	entries, err := h.dashboardUC.Logs(ctx, limit)
	if err != nil {
		errutil.Handle(ctx, "Failed to read logs", err)
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	resp := logsResponse{Logs: make([]string, len(entries))}
	for i, e := range entries {
		resp.Logs[i] = e.String()
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
