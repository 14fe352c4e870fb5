package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/service"
)

// SponsorHandler handles the admin sponsor and placement endpoints.
type SponsorHandler struct {
	sponsors    *service.SponsorService
	permissions service.PermissionChecker
}

// NewSponsorHandler creates a new sponsor handler.
func NewSponsorHandler(sponsors *service.SponsorService, permissions service.PermissionChecker) *SponsorHandler {
	return &SponsorHandler{sponsors: sponsors, permissions: permissions}
}

// Register registers the sponsor routes with the API.
func (h *SponsorHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listSponsors",
		Method:      "GET",
		Path:        "/api/v1/sponsors",
		Summary:     "List sponsors",
		Tags:        []string{"Sponsors"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getSponsor",
		Method:      "GET",
		Path:        "/api/v1/sponsors/{id}",
		Summary:     "Get a sponsor",
		Tags:        []string{"Sponsors"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "createSponsor",
		Method:      "POST",
		Path:        "/api/v1/sponsors",
		Summary:     "Create a sponsor",
		Tags:        []string{"Sponsors"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "updateSponsor",
		Method:      "PUT",
		Path:        "/api/v1/sponsors/{id}",
		Summary:     "Update a sponsor",
		Tags:        []string{"Sponsors"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteSponsor",
		Method:        "DELETE",
		Path:          "/api/v1/sponsors/{id}",
		Summary:       "Delete a sponsor",
		Tags:          []string{"Sponsors"},
		DefaultStatus: http.StatusNoContent,
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "addSponsorPlacement",
		Method:      "POST",
		Path:        "/api/v1/sponsors/{id}/placements",
		Summary:     "Attach an overlay placement",
		Description: "Overlay windows must satisfy 0 <= start < end and opacity must lie in [0,1]; out-of-range values are rejected, never clamped.",
		Tags:        []string{"Sponsors"},
	}, h.AddPlacement)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteSponsorPlacement",
		Method:        "DELETE",
		Path:          "/api/v1/sponsors/{id}/placements/{placement_id}",
		Summary:       "Remove an overlay placement",
		Tags:          []string{"Sponsors"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeletePlacement)
}

func (h *SponsorHandler) authorize(ctx context.Context, userID string) error {
	if !h.permissions.Has(ctx, userID, PermCatalogManage) {
		return huma.Error403Forbidden("missing permission: " + PermCatalogManage)
	}
	return nil
}

// SponsorRequest is the write payload for sponsors.
type SponsorRequest struct {
	Name         string `json:"name" maxLength:"255"`
	ContactEmail string `json:"contact_email,omitempty" maxLength:"255"`
	Enabled      *bool  `json:"enabled,omitempty"`
}

// ListSponsorsInput is the input for listing sponsors.
type ListSponsorsInput struct {
	UserID string `header:"X-User-ID"`
}

// ListSponsorsOutput is the output for listing sponsors.
type ListSponsorsOutput struct {
	Body struct {
		Items []SponsorResponse `json:"items"`
		Total int               `json:"total"`
	}
}

// List returns all sponsors.
func (h *SponsorHandler) List(ctx context.Context, input *ListSponsorsInput) (*ListSponsorsOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}

	sponsors, err := h.sponsors.List(ctx)
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &ListSponsorsOutput{}
	resp.Body.Items = make([]SponsorResponse, 0, len(sponsors))
	for _, s := range sponsors {
		resp.Body.Items = append(resp.Body.Items, SponsorFromModel(s))
	}
	resp.Body.Total = len(sponsors)
	return resp, nil
}

// GetSponsorInput is the input for fetching one sponsor.
type GetSponsorInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Sponsor ID (ULID)"`
}

// GetSponsorOutput is the output for fetching one sponsor.
type GetSponsorOutput struct {
	Body SponsorResponse
}

// Get returns one sponsor with placements.
func (h *SponsorHandler) Get(ctx context.Context, input *GetSponsorInput) (*GetSponsorOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid sponsor ID format", err)
	}

	sponsor, err := h.sponsors.Get(ctx, id)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &GetSponsorOutput{Body: SponsorFromModel(sponsor)}, nil
}

// CreateSponsorInput is the input for creating a sponsor.
type CreateSponsorInput struct {
	UserID string `header:"X-User-ID"`
	Body   SponsorRequest
}

// CreateSponsorOutput is the output for creating a sponsor.
type CreateSponsorOutput struct {
	Body SponsorResponse
}

// Create stores a new sponsor.
func (h *SponsorHandler) Create(ctx context.Context, input *CreateSponsorInput) (*CreateSponsorOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}

	sponsor := &models.Sponsor{
		Name:         input.Body.Name,
		ContactEmail: input.Body.ContactEmail,
		Enabled:      input.Body.Enabled,
	}
	if err := h.sponsors.Create(ctx, sponsor); err != nil {
		return nil, mapServiceError(err)
	}
	return &CreateSponsorOutput{Body: SponsorFromModel(sponsor)}, nil
}

// UpdateSponsorInput is the input for updating a sponsor.
type UpdateSponsorInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Sponsor ID (ULID)"`
	Body   SponsorRequest
}

// UpdateSponsorOutput is the output for updating a sponsor.
type UpdateSponsorOutput struct {
	Body SponsorResponse
}

// Update stores changes to a sponsor.
func (h *SponsorHandler) Update(ctx context.Context, input *UpdateSponsorInput) (*UpdateSponsorOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid sponsor ID format", err)
	}

	sponsor, err := h.sponsors.Get(ctx, id)
	if err != nil {
		return nil, mapServiceError(err)
	}
	sponsor.Name = input.Body.Name
	sponsor.ContactEmail = input.Body.ContactEmail
	if input.Body.Enabled != nil {
		sponsor.Enabled = input.Body.Enabled
	}
	if err := h.sponsors.Update(ctx, sponsor); err != nil {
		return nil, mapServiceError(err)
	}
	return &UpdateSponsorOutput{Body: SponsorFromModel(sponsor)}, nil
}

// DeleteSponsorInput is the input for deleting a sponsor.
type DeleteSponsorInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Sponsor ID (ULID)"`
}

// DeleteSponsorOutput is the (empty) output for deleting a sponsor.
type DeleteSponsorOutput struct{}

// Delete removes a sponsor and its placements.
func (h *SponsorHandler) Delete(ctx context.Context, input *DeleteSponsorInput) (*DeleteSponsorOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid sponsor ID format", err)
	}
	if err := h.sponsors.Delete(ctx, id); err != nil {
		return nil, mapServiceError(err)
	}
	return &DeleteSponsorOutput{}, nil
}

// AddPlacementInput is the input for attaching an overlay placement.
type AddPlacementInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Sponsor ID (ULID)"`
	Body   struct {
		MovieID string   `json:"movie_id,omitempty" doc:"Optional movie scope; empty applies to all movies"`
		Type    string   `json:"type" enum:"image,html"`
		Corner  string   `json:"placement" enum:"tl,tr,bl,br"`
		Start   int      `json:"start" doc:"Playback offset in seconds the overlay appears at"`
		End     int      `json:"end" doc:"Playback offset in seconds the overlay disappears at"`
		URL     string   `json:"url,omitempty" maxLength:"2048"`
		HTML    string   `json:"html,omitempty" maxLength:"8192"`
		Href    string   `json:"href,omitempty" maxLength:"2048"`
		Opacity *float64 `json:"opacity,omitempty" doc:"Render opacity in [0,1]; defaults to 1"`
		Active  *bool    `json:"active,omitempty"`
	}
}

// AddPlacementOutput is the output for attaching an overlay placement.
type AddPlacementOutput struct {
	Body PlacementResponse
}

// AddPlacement attaches an overlay placement to a sponsor.
func (h *SponsorHandler) AddPlacement(ctx context.Context, input *AddPlacementInput) (*AddPlacementOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	sponsorID, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid sponsor ID format", err)
	}

	placement := &models.SponsorPlacement{
		SponsorID:    sponsorID,
		Type:         models.OverlayType(input.Body.Type),
		Corner:       models.OverlayCorner(input.Body.Corner),
		StartSeconds: input.Body.Start,
		EndSeconds:   input.Body.End,
		URL:          input.Body.URL,
		HTML:         input.Body.HTML,
		Href:         input.Body.Href,
		Opacity:      1,
		Active:       input.Body.Active,
	}
	if input.Body.Opacity != nil {
		placement.Opacity = *input.Body.Opacity
	}
	if input.Body.MovieID != "" {
		movieID, err := models.ParseULID(input.Body.MovieID)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid movie ID format", err)
		}
		placement.MovieID = &movieID
	}

	if err := h.sponsors.AddPlacement(ctx, placement); err != nil {
		return nil, mapServiceError(err)
	}
	return &AddPlacementOutput{Body: PlacementFromModel(placement)}, nil
}

// DeletePlacementInput is the input for removing an overlay placement.
type DeletePlacementInput struct {
	UserID      string `header:"X-User-ID"`
	ID          string `path:"id" doc:"Sponsor ID (ULID)"`
	PlacementID string `path:"placement_id" doc:"Placement ID (ULID)"`
}

// DeletePlacementOutput is the (empty) output for removing a placement.
type DeletePlacementOutput struct{}

// DeletePlacement removes an overlay placement.
func (h *SponsorHandler) DeletePlacement(ctx context.Context, input *DeletePlacementInput) (*DeletePlacementOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	placementID, err := models.ParseULID(input.PlacementID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid placement ID format", err)
	}
	if err := h.sponsors.DeletePlacement(ctx, placementID); err != nil {
		return nil, mapServiceError(err)
	}
	return &DeletePlacementOutput{}, nil
}
