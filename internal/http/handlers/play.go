package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/service"
)

// PlayHandler issues playback grants.
type PlayHandler struct {
	grants *service.GrantService
}

// NewPlayHandler creates a new play handler.
func NewPlayHandler(grants *service.GrantService) *PlayHandler {
	return &PlayHandler{grants: grants}
}

// Register registers the playback routes with the API.
func (h *PlayHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "issuePlayGrant",
		Method:      "GET",
		Path:        "/v1/movies/{id}/play",
		Summary:     "Issue a play grant",
		Description: "Issues a time-bounded grant bundling signed source, subtitle, and overlay data for one playback attempt",
		Tags:        []string{"Playback"},
	}, h.Issue)
}

// IssuePlayGrantInput is the input for grant issuance.
type IssuePlayGrantInput struct {
	ID     string `path:"id" doc:"Movie ID (ULID)"`
	TTL    *int   `query:"ttl" doc:"Grant lifetime in seconds; defaults to the configured TTL, clamped to the maximum"`
	UserID string `header:"X-User-ID" doc:"Authenticated user id, if any"`
}

// IssuePlayGrantOutput is the output for grant issuance.
type IssuePlayGrantOutput struct {
	Body service.IssuedGrant
}

// Issue resolves the movie and returns a fresh grant.
func (h *PlayHandler) Issue(ctx context.Context, input *IssuePlayGrantInput) (*IssuePlayGrantOutput, error) {
	movieID, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("not found")
	}

	grant, err := h.grants.Issue(ctx, movieID, input.TTL, input.UserID)
	if err != nil {
		return nil, mapServiceError(err)
	}

	return &IssuePlayGrantOutput{Body: *grant}, nil
}
