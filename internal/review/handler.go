// AngelaMos | 2026
// handler.go

package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ayavrik/yamdb-final/internal/core"
	"github.com/ayavrik/yamdb-final/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes nests reviews under their title and comments under
// their review, mirroring the resource hierarchy in the URL.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/titles/{titleID}/reviews", func(r chi.Router) {
		r.Get("/", h.ListReviews)
		r.Post("/", h.CreateReview)
		r.Get("/{reviewID}", h.GetReview)
		r.Patch("/{reviewID}", h.UpdateReview)
		r.Delete("/{reviewID}", h.DeleteReview)

		r.Route("/{reviewID}/comments", func(r chi.Router) {
			r.Get("/", h.ListComments)
			r.Post("/", h.CreateComment)
			r.Get("/{commentID}", h.GetComment)
			r.Patch("/{commentID}", h.UpdateComment)
			r.Delete("/{commentID}", h.DeleteComment)
		})
	})
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}

	reviews, total, err := h.service.ListReviews(r.Context(), titleID, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(
		w,
		ToReviewResponseList(reviews),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	review, err := h.service.CreateReview(r.Context(), actor, titleID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToReviewResponse(review))
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	review, err := h.service.UpdateReview(
		r.Context(), actor, titleID, reviewID, req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	actor := middleware.GetActor(r.Context())
	err := h.service.DeleteReview(r.Context(), actor, titleID, reviewID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}

	comments, total, err := h.service.ListComments(
		r.Context(), titleID, reviewID, params,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(
		w,
		ToCommentResponseList(comments),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	comment, err := h.service.CreateComment(
		r.Context(), actor, titleID, reviewID, req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToCommentResponse(comment))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	comment, err := h.service.GetComment(
		r.Context(), titleID, reviewID, commentID,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToCommentResponse(comment))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	comment, err := h.service.UpdateComment(
		r.Context(), actor, titleID, reviewID, commentID, req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToCommentResponse(comment))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	actor := middleware.GetActor(r.Context())
	err := h.service.DeleteComment(
		r.Context(), actor, titleID, reviewID, commentID,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "resource")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case core.IsAppError(err):
		core.JSONError(w, err)
	default:
		core.InternalServerError(w, err)
	}
}

func reviewPath(
	w http.ResponseWriter,
	r *http.Request,
) (titleID, reviewID int64, ok bool) {
	titleID, ok = pathID(w, r, "titleID", "title")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = pathID(w, r, "reviewID", "review")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func commentPath(
	w http.ResponseWriter,
	r *http.Request,
) (titleID, reviewID, commentID int64, ok bool) {
	titleID, reviewID, ok = reviewPath(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	commentID, ok = pathID(w, r, "commentID", "comment")
	if !ok {
		return 0, 0, 0, false
	}
	return titleID, reviewID, commentID, true
}

func pathID(
	w http.ResponseWriter,
	r *http.Request,
	param, resource string,
) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		core.NotFound(w, resource)
		return 0, false
	}
	return id, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
