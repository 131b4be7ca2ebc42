package http

import (
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		webhookUC: webhookUC,
	}
}

// Handle processes webhook requests. Verification and dispatch happen in the
// use case; the handler only maps the outcome to a response.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()

	delivery := &model.WebhookDelivery{
		EventName:  r.Header.Get("X-GitHub-Event"),
		DeliveryID: r.Header.Get("X-GitHub-Delivery"),
		Signature:  r.Header.Get("X-Hub-Signature-256"),
		Body:       body,
		ReadError:  err,
		ReceivedAt: time.Now(),
	}

	result := h.webhookUC.HandleDelivery(ctx, delivery)
	status, resp := webhookResponse(result)
	writeJSON(ctx, w, status, resp)
}

func webhookResponse(result *model.WebhookResult) (int, *statusResponse) {
	switch result.Outcome {
	case model.WebhookOutcomePong:
		return http.StatusOK, &statusResponse{Status: "pong"}

	case model.WebhookOutcomeIgnored:
		return http.StatusOK, &statusResponse{Status: "ignored", Reason: result.Reason}

	case model.WebhookOutcomeIgnoredEvent:
		return http.StatusOK, &statusResponse{Status: "ignored event"}

	case model.WebhookOutcomeTriggered:
		return http.StatusOK, &statusResponse{Status: "deployment triggered"}

	case model.WebhookOutcomeQueued:
		return http.StatusAccepted, &statusResponse{Status: "deployment queued"}

	case model.WebhookOutcomeBusy:
		return http.StatusConflict, &statusResponse{Status: "deploy in progress"}

	case model.WebhookOutcomeRejected:
		return http.StatusForbidden, &statusResponse{Status: "invalid signature"}

	case model.WebhookOutcomeBadRequest:
		return http.StatusBadRequest, &statusResponse{Status: "bad request", Error: errorText(result.Error)}

	default:
		return http.StatusInternalServerError, &statusResponse{Status: "deploy failed", Error: errorText(result.Error)}
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
