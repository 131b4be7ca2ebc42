package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
)

// ManualHandler triggers a deployment regardless of any push
type ManualHandler struct {
	deployUC interfaces.DeployUseCase
}

func NewManualHandler(deployUC interfaces.DeployUseCase) *ManualHandler {
	return &ManualHandler{deployUC: deployUC}
}

func (h *ManualHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle, err := h.deployUC.TriggerDeploy(ctx, model.TriggerSourceManual, "")
	if err != nil {
		if goerr.HasTag(err, types.ErrTagDeployInProgress) {
			writeJSON(ctx, w, http.StatusConflict, &statusResponse{Status: "deploy in progress"})
			return
		}

		errutil.Handle(ctx, "Manual deploy failed", err)
		writeJSON(ctx, w, http.StatusInternalServerError, &statusResponse{
			Status: "deploy failed",
			Error:  err.Error(),
		})
		return
	}

	if handle.Status == model.DeploymentQueued {
		writeJSON(ctx, w, http.StatusAccepted, &statusResponse{
			Status:       "deployment queued",
			DeploymentID: handle.ID,
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, &statusResponse{
		Status:       "deployment triggered",
		DeploymentID: handle.ID,
	})
}
