package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/service"
)

// GenreHandler handles the admin genre endpoints.
type GenreHandler struct {
	genres      *service.GenreService
	permissions service.PermissionChecker
}

// NewGenreHandler creates a new genre handler.
func NewGenreHandler(genres *service.GenreService, permissions service.PermissionChecker) *GenreHandler {
	return &GenreHandler{genres: genres, permissions: permissions}
}

// Register registers the genre routes with the API.
func (h *GenreHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listGenres",
		Method:      "GET",
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Tags:        []string{"Genres"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "createGenre",
		Method:      "POST",
		Path:        "/api/v1/genres",
		Summary:     "Create a genre",
		Tags:        []string{"Genres"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "updateGenre",
		Method:      "PUT",
		Path:        "/api/v1/genres/{id}",
		Summary:     "Update a genre",
		Tags:        []string{"Genres"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteGenre",
		Method:        "DELETE",
		Path:          "/api/v1/genres/{id}",
		Summary:       "Delete a genre",
		Tags:          []string{"Genres"},
		DefaultStatus: http.StatusNoContent,
	}, h.Delete)
}

func (h *GenreHandler) authorize(ctx context.Context, userID string) error {
	if !h.permissions.Has(ctx, userID, PermCatalogManage) {
		return huma.Error403Forbidden("missing permission: " + PermCatalogManage)
	}
	return nil
}

// GenreRequest is the write payload for genres.
type GenreRequest struct {
	Name string `json:"name" maxLength:"100"`
	Slug string `json:"slug" maxLength:"100"`
}

// ListGenresInput is the input for listing genres.
type ListGenresInput struct {
	UserID string `header:"X-User-ID"`
}

// ListGenresOutput is the output for listing genres.
type ListGenresOutput struct {
	Body struct {
		Items []GenreResponse `json:"items"`
		Total int             `json:"total"`
	}
}

// List returns all genres.
func (h *GenreHandler) List(ctx context.Context, input *ListGenresInput) (*ListGenresOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}

	genres, err := h.genres.List(ctx)
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &ListGenresOutput{}
	resp.Body.Items = make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		resp.Body.Items = append(resp.Body.Items, GenreResponse{ID: g.ID.String(), Name: g.Name, Slug: g.Slug})
	}
	resp.Body.Total = len(genres)
	return resp, nil
}

// CreateGenreInput is the input for creating a genre.
type CreateGenreInput struct {
	UserID string `header:"X-User-ID"`
	Body   GenreRequest
}

// CreateGenreOutput is the output for creating a genre.
type CreateGenreOutput struct {
	Body GenreResponse
}

// Create stores a new genre.
func (h *GenreHandler) Create(ctx context.Context, input *CreateGenreInput) (*CreateGenreOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: input.Body.Name, Slug: input.Body.Slug}
	if err := h.genres.Create(ctx, genre); err != nil {
		return nil, mapServiceError(err)
	}
	return &CreateGenreOutput{Body: GenreResponse{ID: genre.ID.String(), Name: genre.Name, Slug: genre.Slug}}, nil
}

// UpdateGenreInput is the input for updating a genre.
type UpdateGenreInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Genre ID (ULID)"`
	Body   GenreRequest
}

// UpdateGenreOutput is the output for updating a genre.
type UpdateGenreOutput struct {
	Body GenreResponse
}

// Update stores changes to a genre.
func (h *GenreHandler) Update(ctx context.Context, input *UpdateGenreInput) (*UpdateGenreOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid genre ID format", err)
	}

	genre, err := h.genres.Get(ctx, id)
	if err != nil {
		return nil, mapServiceError(err)
	}
	genre.Name = input.Body.Name
	genre.Slug = input.Body.Slug
	if err := h.genres.Update(ctx, genre); err != nil {
		return nil, mapServiceError(err)
	}
	return &UpdateGenreOutput{Body: GenreResponse{ID: genre.ID.String(), Name: genre.Name, Slug: genre.Slug}}, nil
}

// DeleteGenreInput is the input for deleting a genre.
type DeleteGenreInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Genre ID (ULID)"`
}

// DeleteGenreOutput is the (empty) output for deleting a genre.
type DeleteGenreOutput struct{}

// Delete removes a genre.
func (h *GenreHandler) Delete(ctx context.Context, input *DeleteGenreInput) (*DeleteGenreOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid genre ID format", err)
	}
	if err := h.genres.Delete(ctx, id); err != nil {
		return nil, mapServiceError(err)
	}
	return &DeleteGenreOutput{}, nil
}
