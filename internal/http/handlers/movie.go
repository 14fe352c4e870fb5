package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/service"
)

// MovieHandler handles the admin movie catalog endpoints.
type MovieHandler struct {
	movies      *service.MovieService
	permissions service.PermissionChecker
}

// NewMovieHandler creates a new movie handler.
func NewMovieHandler(movies *service.MovieService, permissions service.PermissionChecker) *MovieHandler {
	return &MovieHandler{movies: movies, permissions: permissions}
}

// Register registers the movie routes with the API.
func (h *MovieHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listMovies",
		Method:      "GET",
		Path:        "/api/v1/movies",
		Summary:     "List movies",
		Tags:        []string{"Movies"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getMovie",
		Method:      "GET",
		Path:        "/api/v1/movies/{id}",
		Summary:     "Get a movie",
		Description: "Returns a movie with sources, subtitles, and genres",
		Tags:        []string{"Movies"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "createMovie",
		Method:      "POST",
		Path:        "/api/v1/movies",
		Summary:     "Create a movie",
		Tags:        []string{"Movies"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "updateMovie",
		Method:      "PUT",
		Path:        "/api/v1/movies/{id}",
		Summary:     "Update a movie",
		Tags:        []string{"Movies"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteMovie",
		Method:        "DELETE",
		Path:          "/api/v1/movies/{id}",
		Summary:       "Delete a movie",
		Tags:          []string{"Movies"},
		DefaultStatus: http.StatusNoContent,
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "addMovieSource",
		Method:      "POST",
		Path:        "/api/v1/movies/{id}/sources",
		Summary:     "Attach a media source",
		Tags:        []string{"Movies"},
	}, h.AddSource)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteMovieSource",
		Method:        "DELETE",
		Path:          "/api/v1/movies/{id}/sources/{source_id}",
		Summary:       "Remove a media source",
		Tags:          []string{"Movies"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteSource)

	huma.Register(api, huma.Operation{
		OperationID: "addMovieSubtitle",
		Method:      "POST",
		Path:        "/api/v1/movies/{id}/subtitles",
		Summary:     "Attach a subtitle track",
		Tags:        []string{"Movies"},
	}, h.AddSubtitle)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteMovieSubtitle",
		Method:        "DELETE",
		Path:          "/api/v1/movies/{id}/subtitles/{subtitle_id}",
		Summary:       "Remove a subtitle track",
		Tags:          []string{"Movies"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteSubtitle)
}

func (h *MovieHandler) authorize(ctx context.Context, userID string) error {
	if !h.permissions.Has(ctx, userID, PermCatalogManage) {
		return huma.Error403Forbidden("missing permission: " + PermCatalogManage)
	}
	return nil
}

// MovieRequest is the write payload for movies.
type MovieRequest struct {
	Title           string `json:"title" maxLength:"512"`
	Slug            string `json:"slug" maxLength:"255"`
	Synopsis        string `json:"synopsis,omitempty" maxLength:"8192"`
	Year            int    `json:"year,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Status          string `json:"status,omitempty" enum:"draft,published,archived"`
	PosterKey       string `json:"poster_key,omitempty" maxLength:"1024"`
}

func (r MovieRequest) apply(m *models.Movie) {
	m.Title = r.Title
	m.Slug = r.Slug
	m.Synopsis = r.Synopsis
	m.Year = r.Year
	m.DurationSeconds = r.DurationSeconds
	if r.Status != "" {
		m.Status = models.MovieStatus(r.Status)
	} else if m.Status == "" {
		m.Status = models.MovieStatusDraft
	}
	m.PosterKey = r.PosterKey
}

// ListMoviesInput is the input for listing movies.
type ListMoviesInput struct {
	UserID string `header:"X-User-ID"`
	Offset int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 50)"`
}

// ListMoviesOutput is the output for listing movies.
type ListMoviesOutput struct {
	Body struct {
		Items []MovieResponse `json:"items"`
		Total int64           `json:"total"`
	}
}

// List returns a page of movies.
func (h *MovieHandler) List(ctx context.Context, input *ListMoviesInput) (*ListMoviesOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}

	movies, total, err := h.movies.List(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &ListMoviesOutput{}
	resp.Body.Items = make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		resp.Body.Items = append(resp.Body.Items, MovieFromModel(m))
	}
	resp.Body.Total = total
	return resp, nil
}

// GetMovieInput is the input for fetching one movie.
type GetMovieInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Movie ID (ULID)"`
}

// GetMovieOutput is the output for fetching one movie.
type GetMovieOutput struct {
	Body MovieResponse
}

// Get returns one movie with relations.
func (h *MovieHandler) Get(ctx context.Context, input *GetMovieInput) (*GetMovieOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid movie ID format", err)
	}

	movie, err := h.movies.GetFull(ctx, id)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &GetMovieOutput{Body: MovieFromModel(movie)}, nil
}

// CreateMovieInput is the input for creating a movie.
type CreateMovieInput struct {
	UserID string `header:"X-User-ID"`
	Body   MovieRequest
}

// CreateMovieOutput is the output for creating a movie.
type CreateMovieOutput struct {
	Body MovieResponse
}

// Create stores a new movie.
func (h *MovieHandler) Create(ctx context.Context, input *CreateMovieInput) (*CreateMovieOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}

	movie := &models.Movie{}
	input.Body.apply(movie)
	if err := h.movies.Create(ctx, movie); err != nil {
		return nil, mapServiceError(err)
	}
	return &CreateMovieOutput{Body: MovieFromModel(movie)}, nil
}

// UpdateMovieInput is the input for updating a movie.
type UpdateMovieInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Movie ID (ULID)"`
	Body   MovieRequest
}

// UpdateMovieOutput is the output for updating a movie.
type UpdateMovieOutput struct {
	Body MovieResponse
}

// Update stores changes to an existing movie.
func (h *MovieHandler) Update(ctx context.Context, input *UpdateMovieInput) (*UpdateMovieOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid movie ID format", err)
	}

	movie, err := h.movies.Get(ctx, id)
	if err != nil {
		return nil, mapServiceError(err)
	}
	input.Body.apply(movie)
	if err := h.movies.Update(ctx, movie); err != nil {
		return nil, mapServiceError(err)
	}
	return &UpdateMovieOutput{Body: MovieFromModel(movie)}, nil
}

// DeleteMovieInput is the input for deleting a movie.
type DeleteMovieInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Movie ID (ULID)"`
}

// DeleteMovieOutput is the (empty) output for deleting a movie.
type DeleteMovieOutput struct{}

// Delete removes a movie.
func (h *MovieHandler) Delete(ctx context.Context, input *DeleteMovieInput) (*DeleteMovieOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid movie ID format", err)
	}
	if err := h.movies.Delete(ctx, id); err != nil {
		return nil, mapServiceError(err)
	}
	return &DeleteMovieOutput{}, nil
}

// AddSourceInput is the input for attaching a media source.
type AddSourceInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Movie ID (ULID)"`
	Body   struct {
		Type       string `json:"type" enum:"hls,dash,mp4"`
		Label      string `json:"label,omitempty" maxLength:"100"`
		StorageKey string `json:"storage_key" maxLength:"1024"`
		DRM        string `json:"drm,omitempty" maxLength:"50"`
		Active     *bool  `json:"active,omitempty"`
		Priority   int    `json:"priority,omitempty"`
	}
}

// AddSourceOutput is the output for attaching a media source.
type AddSourceOutput struct {
	Body SourceResponse
}

// AddSource attaches a media source to a movie.
func (h *MovieHandler) AddSource(ctx context.Context, input *AddSourceInput) (*AddSourceOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid movie ID format", err)
	}

	source := &models.MovieSource{
		MovieID:    id,
		Type:       models.SourceType(input.Body.Type),
		Label:      input.Body.Label,
		StorageKey: input.Body.StorageKey,
		DRM:        input.Body.DRM,
		Active:     input.Body.Active,
		Priority:   input.Body.Priority,
	}
	if err := h.movies.AddSource(ctx, source); err != nil {
		return nil, mapServiceError(err)
	}
	return &AddSourceOutput{Body: SourceResponse{
		ID:         source.ID.String(),
		Type:       string(source.Type),
		Label:      source.Label,
		StorageKey: source.StorageKey,
		DRM:        source.DRM,
		Active:     models.BoolVal(source.Active),
		Priority:   source.Priority,
	}}, nil
}

// DeleteSourceInput is the input for removing a media source.
type DeleteSourceInput struct {
	UserID   string `header:"X-User-ID"`
	ID       string `path:"id" doc:"Movie ID (ULID)"`
	SourceID string `path:"source_id" doc:"Source ID (ULID)"`
}

// DeleteSourceOutput is the (empty) output for removing a media source.
type DeleteSourceOutput struct{}

// DeleteSource removes a media source.
func (h *MovieHandler) DeleteSource(ctx context.Context, input *DeleteSourceInput) (*DeleteSourceOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	sourceID, err := models.ParseULID(input.SourceID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid source ID format", err)
	}
	if err := h.movies.DeleteSource(ctx, sourceID); err != nil {
		return nil, mapServiceError(err)
	}
	return &DeleteSourceOutput{}, nil
}

// AddSubtitleInput is the input for attaching a subtitle track.
type AddSubtitleInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Movie ID (ULID)"`
	Body   struct {
		Lang       string `json:"lang" maxLength:"20"`
		Label      string `json:"label,omitempty" maxLength:"100"`
		StorageKey string `json:"storage_key" maxLength:"1024"`
	}
}

// AddSubtitleOutput is the output for attaching a subtitle track.
type AddSubtitleOutput struct {
	Body SubtitleResponse
}

// AddSubtitle attaches a subtitle track to a movie.
func (h *MovieHandler) AddSubtitle(ctx context.Context, input *AddSubtitleInput) (*AddSubtitleOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid movie ID format", err)
	}

	track := &models.SubtitleTrack{
		MovieID:    id,
		Lang:       input.Body.Lang,
		Label:      input.Body.Label,
		StorageKey: input.Body.StorageKey,
	}
	if err := h.movies.AddSubtitle(ctx, track); err != nil {
		return nil, mapServiceError(err)
	}
	return &AddSubtitleOutput{Body: SubtitleResponse{
		ID:         track.ID.String(),
		Lang:       track.Lang,
		Label:      track.Label,
		StorageKey: track.StorageKey,
	}}, nil
}

// DeleteSubtitleInput is the input for removing a subtitle track.
type DeleteSubtitleInput struct {
	UserID     string `header:"X-User-ID"`
	ID         string `path:"id" doc:"Movie ID (ULID)"`
	SubtitleID string `path:"subtitle_id" doc:"Subtitle track ID (ULID)"`
}

// DeleteSubtitleOutput is the (empty) output for removing a subtitle track.
type DeleteSubtitleOutput struct{}

// DeleteSubtitle removes a subtitle track.
func (h *MovieHandler) DeleteSubtitle(ctx context.Context, input *DeleteSubtitleInput) (*DeleteSubtitleOutput, error) {
	if err := h.authorize(ctx, input.UserID); err != nil {
		return nil, err
	}
	subtitleID, err := models.ParseULID(input.SubtitleID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid subtitle ID format", err)
	}
	if err := h.movies.DeleteSubtitle(ctx, subtitleID); err != nil {
		return nil, mapServiceError(err)
	}
	return &DeleteSubtitleOutput{}, nil
}
