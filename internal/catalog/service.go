// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayavrik/yamdb-final/internal/core"
)

type Service struct {
	categories CategoryRepository
	genres     GenreRepository
	titles     TitleRepository
	now        func() time.Time
}

func NewService(
	categories CategoryRepository,
	genres GenreRepository,
	titles TitleRepository,
) *Service {
	return &Service{
		categories: categories,
		genres:     genres,
		titles:     titles,
		now:        time.Now,
	}
}

func (s *Service) CreateCategory(
	ctx context.Context,
	req CategoryRequest,
) (*Category, error) {
	category := &Category{Name: req.Name, Slug: req.Slug}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.FieldError("slug", "slug already in use")
		}
		return nil, err
	}

	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	return s.categories.DeleteBySlug(ctx, slug)
}

func (s *Service) ListCategories(
	ctx context.Context,
	params ListParams,
) ([]Category, int, error) {
	return s.categories.List(ctx, params)
}

func (s *Service) CreateGenre(
	ctx context.Context,
	req GenreRequest,
) (*Genre, error) {
	genre := &Genre{Name: req.Name, Slug: req.Slug}

	if err := s.genres.Create(ctx, genre); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.FieldError("slug", "slug already in use")
		}
		return nil, err
	}

	return genre, nil
}

func (s *Service) DeleteGenre(ctx context.Context, slug string) error {
	return s.genres.DeleteBySlug(ctx, slug)
}

func (s *Service) ListGenres(
	ctx context.Context,
	params ListParams,
) ([]Genre, int, error) {
	return s.genres.List(ctx, params)
}

func (s *Service) CreateTitle(
	ctx context.Context,
	req CreateTitleRequest,
) (*TitleDetail, error) {
	if err := s.checkYear(req.Year); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	title := &Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  &category.ID,
	}

	if err := s.titles.Create(ctx, title); err != nil {
		return nil, err
	}

	if err := s.titles.ReplaceGenres(ctx, title.ID, genreIDs); err != nil {
		return nil, err
	}

	return s.titles.Get(ctx, title.ID)
}

func (s *Service) TitleExists(ctx context.Context, id int64) (bool, error) {
	return s.titles.Exists(ctx, id)
}

func (s *Service) GetTitle(
	ctx context.Context,
	id int64,
) (*TitleDetail, error) {
	return s.titles.Get(ctx, id)
}

func (s *Service) UpdateTitle(
	ctx context.Context,
	id int64,
	req UpdateTitleRequest,
) (*TitleDetail, error) {
	detail, err := s.titles.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	title := detail.Title

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := s.checkYear(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	if err := s.titles.Update(ctx, &title); err != nil {
		return nil, err
	}

	if req.Genre != nil {
		genreIDs, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titles.ReplaceGenres(ctx, id, genreIDs); err != nil {
			return nil, err
		}
	}

	return s.titles.Get(ctx, id)
}

func (s *Service) DeleteTitle(ctx context.Context, id int64) error {
	return s.titles.Delete(ctx, id)
}

func (s *Service) ListTitles(
	ctx context.Context,
	params ListTitlesParams,
) ([]TitleDetail, int, error) {
	return s.titles.List(ctx, params)
}

// checkYear rejects release years in the future. The lower bound is
// covered by request validation.
func (s *Service) checkYear(year int) error {
	if current := s.now().Year(); year > current {
		return core.FieldError(
			"year",
			fmt.Sprintf("year cannot be later than %d", current),
		)
	}
	return nil
}

// resolveCategory turns a slug reference from a title write into a row,
// reporting an unknown slug as a validation error rather than a 404.
func (s *Service) resolveCategory(
	ctx context.Context,
	slug string,
) (*Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.FieldError("category", "unknown category slug")
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) resolveGenres(
	ctx context.Context,
	slugs []string,
) ([]int64, error) {
	ids := make([]int64, 0, len(slugs))
	seen := make(map[int64]struct{}, len(slugs))

	for _, slug := range slugs {
		genre, err := s.genres.GetBySlug(ctx, slug)
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.FieldError("genre", "unknown genre slug")
		}
		if err != nil {
			return nil, err
		}
		if _, ok := seen[genre.ID]; ok {
			continue
		}
		seen[genre.ID] = struct{}{}
		ids = append(ids, genre.ID)
	}

	return ids, nil
}
