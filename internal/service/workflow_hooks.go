package service

import (
	"context"

	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
)

// Notifier receives best-effort notifications once a transition has committed.
type Notifier interface {
	Notify(ctx context.Context, kind models.NotificationKind, targetID string, payload map[string]interface{})
}

// DashboardInvalidator drops cached aggregates after state changes.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// TransitionHooks are the side effects shared by every workflow service. Any
// field may be nil.
type TransitionHooks struct {
	Notifier  Notifier
	Metrics   *MetricsService
	Dashboard DashboardInvalidator
}

func (h TransitionHooks) record(domain, action string, outcome workflow.Outcome) {
	h.Metrics.RecordTransition(domain, action, string(outcome))
}

// unknownAction labels actions no transition table defines, keeping client
// input out of metric labels.
const unknownAction = "unknown"

func actionLabel(guard *workflow.Guard, domain workflow.Domain, action string) string {
	if rule, ok := guard.Dispatcher().Rule(domain, action); ok {
		return rule.Action
	}
	return unknownAction
}

// committed runs after the datastore write succeeded. Neither step can fail the caller.
func (h TransitionHooks) committed(ctx context.Context, kind models.NotificationKind, targetID string, payload map[string]interface{}) {
	if h.Dashboard != nil {
		h.Dashboard.Invalidate(ctx)
	}
	h.Notify(ctx, kind, targetID, payload)
}

// Notify sends a notification without touching cached aggregates.
func (h TransitionHooks) Notify(ctx context.Context, kind models.NotificationKind, targetID string, payload map[string]interface{}) {
	if h.Notifier != nil {
		h.Notifier.Notify(ctx, kind, targetID, payload)
	}
}

func actorPayload(actor *models.JWTClaims, fields map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	if actor != nil {
		payload["actorId"] = actor.UserID
		payload["actorRole"] = string(actor.Role)
	}
	return payload
}

func actorID(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}
