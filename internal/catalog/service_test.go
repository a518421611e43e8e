// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayavrik/yamdb-final/internal/core"
)

type fakeCategoryRepo struct {
	bySlug map[string]*Category
}

func newFakeCategoryRepo(categories ...*Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{bySlug: make(map[string]*Category)}
	for _, c := range categories {
		f.bySlug[c.Slug] = c
	}
	return f
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *Category) error {
	if _, ok := f.bySlug[c.Slug]; ok {
		return core.ErrDuplicateKey
	}
	c.ID = int64(len(f.bySlug) + 1)
	f.bySlug[c.Slug] = c
	return nil
}

func (f *fakeCategoryRepo) GetBySlug(
	_ context.Context,
	slug string,
) (*Category, error) {
	c, ok := f.bySlug[slug]
	if !ok {
		return nil, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := f.bySlug[slug]; !ok {
		return core.ErrNotFound
	}
	delete(f.bySlug, slug)
	return nil
}

func (f *fakeCategoryRepo) List(
	_ context.Context,
	_ ListParams,
) ([]Category, int, error) {
	out := make([]Category, 0, len(f.bySlug))
	for _, c := range f.bySlug {
		out = append(out, *c)
	}
	return out, len(out), nil
}

type fakeGenreRepo struct {
	bySlug map[string]*Genre
}

func newFakeGenreRepo(genres ...*Genre) *fakeGenreRepo {
	f := &fakeGenreRepo{bySlug: make(map[string]*Genre)}
	for _, g := range genres {
		f.bySlug[g.Slug] = g
	}
	return f
}

func (f *fakeGenreRepo) Create(_ context.Context, g *Genre) error {
	if _, ok := f.bySlug[g.Slug]; ok {
		return core.ErrDuplicateKey
	}
	g.ID = int64(len(f.bySlug) + 1)
	f.bySlug[g.Slug] = g
	return nil
}

func (f *fakeGenreRepo) GetBySlug(
	_ context.Context,
	slug string,
) (*Genre, error) {
	g, ok := f.bySlug[slug]
	if !ok {
		return nil, core.ErrNotFound
	}
	return g, nil
}

func (f *fakeGenreRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := f.bySlug[slug]; !ok {
		return core.ErrNotFound
	}
	delete(f.bySlug, slug)
	return nil
}

func (f *fakeGenreRepo) List(
	_ context.Context,
	_ ListParams,
) ([]Genre, int, error) {
	out := make([]Genre, 0, len(f.bySlug))
	for _, g := range f.bySlug {
		out = append(out, *g)
	}
	return out, len(out), nil
}

type fakeTitleRepo struct {
	byID     map[int64]*TitleDetail
	genreIDs map[int64][]int64
	scores   map[int64][]int
	nextID   int64
}

func newFakeTitleRepo() *fakeTitleRepo {
	return &fakeTitleRepo{
		byID:     make(map[int64]*TitleDetail),
		genreIDs: make(map[int64][]int64),
		scores:   make(map[int64][]int),
	}
}

func (f *fakeTitleRepo) Create(_ context.Context, title *Title) error {
	f.nextID++
	title.ID = f.nextID
	f.byID[title.ID] = &TitleDetail{Title: *title}
	return nil
}

func (f *fakeTitleRepo) Get(
	_ context.Context,
	id int64,
) (*TitleDetail, error) {
	detail, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *detail
	// Mirrors the read query: mean of the attached scores, nil when
	// there are none.
	if scores := f.scores[id]; len(scores) > 0 {
		var sum int
		for _, s := range scores {
			sum += s
		}
		mean := float64(sum) / float64(len(scores))
		copied.Rating = &mean
	}
	return &copied, nil
}

func (f *fakeTitleRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeTitleRepo) Update(_ context.Context, title *Title) error {
	detail, ok := f.byID[title.ID]
	if !ok {
		return core.ErrNotFound
	}
	detail.Title = *title
	return nil
}

func (f *fakeTitleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTitleRepo) List(
	_ context.Context,
	_ ListTitlesParams,
) ([]TitleDetail, int, error) {
	out := make([]TitleDetail, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (f *fakeTitleRepo) ReplaceGenres(
	_ context.Context,
	titleID int64,
	genreIDs []int64,
) error {
	f.genreIDs[titleID] = genreIDs
	return nil
}

func newTestService() (*Service, *fakeTitleRepo) {
	titles := newFakeTitleRepo()
	svc := NewService(
		newFakeCategoryRepo(&Category{ID: 1, Name: "Movies", Slug: "movies"}),
		newFakeGenreRepo(
			&Genre{ID: 1, Name: "Drama", Slug: "drama"},
			&Genre{ID: 2, Name: "Comedy", Slug: "comedy"},
		),
		titles,
	)
	return svc, titles
}

func TestCreateTitleResolvesSlugs(t *testing.T) {
	svc, titles := newTestService()

	detail, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "The Long Goodbye",
		Year:     1973,
		Category: "movies",
		Genre:    []string{"drama", "comedy", "drama"},
	})

	require.NoError(t, err)
	require.NotNil(t, detail.CategoryID)
	assert.Equal(t, int64(1), *detail.CategoryID)
	// duplicate slugs in the request collapse to one link
	assert.Equal(t, []int64{1, 2}, titles.genreIDs[detail.ID])
}

func TestCreateTitleRejectsFutureYear(t *testing.T) {
	svc, _ := newTestService()
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	}

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "From The Future",
		Year:     2027,
		Category: "movies",
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "year")
}

func TestCreateTitleCurrentYearAllowed(t *testing.T) {
	svc, _ := newTestService()
	svc.now = func() time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "Fresh Release",
		Year:     2026,
		Category: "movies",
	})

	assert.NoError(t, err)
}

func TestCreateTitleUnknownCategory(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "Orphan",
		Year:     2000,
		Category: "podcasts",
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "category")
}

func TestCreateTitleUnknownGenre(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "Unclassifiable",
		Year:     2000,
		Category: "movies",
		Genre:    []string{"vaporwave"},
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "genre")
}

func TestUpdateTitleChecksYear(t *testing.T) {
	svc, _ := newTestService()
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	}

	created, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "Editable",
		Year:     2000,
		Category: "movies",
	})
	require.NoError(t, err)

	badYear := 2030
	_, err = svc.UpdateTitle(context.Background(), created.ID, UpdateTitleRequest{
		Year: &badYear,
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "year")
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateCategory(context.Background(), CategoryRequest{
		Name: "Movies Again",
		Slug: "movies",
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "slug")
}

func TestTitleRatingIsMeanOfScores(t *testing.T) {
	svc, titles := newTestService()

	created, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "Divisive",
		Year:     1995,
		Category: "movies",
	})
	require.NoError(t, err)

	titles.scores[created.ID] = []int{4, 8}

	detail, err := svc.GetTitle(context.Background(), created.ID)

	require.NoError(t, err)
	require.NotNil(t, detail.Rating)
	assert.InDelta(t, 6.0, *detail.Rating, 1e-9)
}

// A title nobody reviewed renders rating as JSON null, never zero.
func TestTitleRatingNullWithoutReviews(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateTitle(context.Background(), CreateTitleRequest{
		Name:     "Unseen",
		Year:     1995,
		Category: "movies",
	})
	require.NoError(t, err)

	detail, err := svc.GetTitle(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Rating)

	body, err := json.Marshal(ToTitleResponse(detail))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"rating":null`)
}

func TestDeleteTitleMissing(t *testing.T) {
	svc, _ := newTestService()

	err := svc.DeleteTitle(context.Background(), 42)

	assert.ErrorIs(t, err, core.ErrNotFound)
}
