// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ayavrik/yamdb-final/internal/access"
	"github.com/ayavrik/yamdb-final/internal/core"
	"github.com/ayavrik/yamdb-final/internal/middleware"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // only fails for a blank tag name
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	return &Handler{service: service, validator: v}
}

// RegisterRoutes wires the public catalog. Reads are open to anyone;
// writes check the rule table against the optionally-authenticated actor.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Delete("/{slug}", h.DeleteCategory)
	})

	r.Route("/genres", func(r chi.Router) {
		r.Get("/", h.ListGenres)
		r.Post("/", h.CreateGenre)
		r.Delete("/{slug}", h.DeleteGenre)
	})

	r.Route("/titles", func(r chi.Router) {
		r.Get("/", h.ListTitles)
		r.Post("/", h.CreateTitle)
		r.Get("/{titleID}", h.GetTitle)
		r.Patch("/{titleID}", h.UpdateTitle)
		r.Delete("/{titleID}", h.DeleteTitle)
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	categories, total, err := h.service.ListCategories(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToCategoryResponseList(categories),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceCategory) {
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		h.writeCatalogError(w, err, "category")
		return
	}

	core.Created(w, ToCategoryResponse(category))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceCategory) {
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.service.DeleteCategory(r.Context(), slug); err != nil {
		h.writeCatalogError(w, err, "category")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	genres, total, err := h.service.ListGenres(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToGenreResponseList(genres),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceGenre) {
		return
	}

	var req GenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	genre, err := h.service.CreateGenre(r.Context(), req)
	if err != nil {
		h.writeCatalogError(w, err, "genre")
		return
	}

	core.Created(w, ToGenreResponse(genre))
}

func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceGenre) {
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.service.DeleteGenre(r.Context(), slug); err != nil {
		h.writeCatalogError(w, err, "genre")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	params := ListTitlesParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Category: r.URL.Query().Get("category"),
		Genre:    r.URL.Query().Get("genre"),
		Name:     r.URL.Query().Get("name"),
	}

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			core.JSONError(w, core.FieldError("year", "must be an integer"))
			return
		}
		params.Year = &year
	}

	titles, total, err := h.service.ListTitles(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToTitleResponseList(titles),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceTitle) {
		return
	}

	var req CreateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	title, err := h.service.CreateTitle(r.Context(), req)
	if err != nil {
		h.writeCatalogError(w, err, "title")
		return
	}

	core.Created(w, ToTitleResponse(title))
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r)
	if !ok {
		return
	}

	title, err := h.service.GetTitle(r.Context(), id)
	if err != nil {
		h.writeCatalogError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(title))
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceTitle) {
		return
	}

	id, ok := parseTitleID(w, r)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	title, err := h.service.UpdateTitle(r.Context(), id, req)
	if err != nil {
		h.writeCatalogError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(title))
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeWrite(w, r, access.ResourceTitle) {
		return
	}

	id, ok := parseTitleID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTitle(r.Context(), id); err != nil {
		h.writeCatalogError(w, err, "title")
		return
	}

	core.NoContent(w)
}

// authorizeWrite checks the rule table and writes the refusal itself:
// 401 for anonymous actors, 403 for authenticated ones.
func (h *Handler) authorizeWrite(
	w http.ResponseWriter,
	r *http.Request,
	res access.Resource,
) bool {
	actor := middleware.GetActor(r.Context())
	if access.CanAct(actor, access.ActionWrite, res) {
		return true
	}

	if !actor.Authenticated {
		core.Unauthorized(w, "")
	} else {
		core.Forbidden(w, "")
	}
	return false
}

func (h *Handler) writeCatalogError(
	w http.ResponseWriter,
	err error,
	resource string,
) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case core.IsAppError(err):
		core.JSONError(w, err)
	default:
		core.InternalServerError(w, err)
	}
}

func parseTitleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "titleID"), 10, 64)
	if err != nil || id < 1 {
		core.NotFound(w, "title")
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
