package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/service"
)

// SessionHandler exposes derived session state for reporting.
type SessionHandler struct {
	sessions    *service.SessionService
	permissions service.PermissionChecker
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *service.SessionService, permissions service.PermissionChecker) *SessionHandler {
	return &SessionHandler{sessions: sessions, permissions: permissions}
}

// Register registers the session routes with the API.
func (h *SessionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getSession",
		Method:      "GET",
		Path:        "/v1/sessions/{session_id}",
		Summary:     "Get reconciled session state",
		Description: "Derives the playback session state from its event stream. Requires the analytics:read permission.",
		Tags:        []string{"Sessions"},
	}, h.Get)
}

// GetSessionInput is the input for session reconciliation.
type GetSessionInput struct {
	SessionID string `path:"session_id" doc:"Client-generated session correlation id"`
	UserID    string `header:"X-User-ID" doc:"Authenticated user id"`
}

// GetSessionOutput is the output for session reconciliation.
type GetSessionOutput struct {
	Body service.SessionSummary
}

// Get reconciles and returns one session.
func (h *SessionHandler) Get(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if !h.permissions.Has(ctx, input.UserID, PermAnalyticsRead) {
		return nil, huma.Error403Forbidden("missing permission: " + PermAnalyticsRead)
	}

	summary, err := h.sessions.Reconcile(ctx, input.SessionID)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &GetSessionOutput{Body: *summary}, nil
}
