// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ayavrik/yamdb-final/internal/core"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, params ListParams) ([]Category, int, error)
}

type GenreRepository interface {
	Create(ctx context.Context, genre *Genre) error
	GetBySlug(ctx context.Context, slug string) (*Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, params ListParams) ([]Genre, int, error)
}

type TitleRepository interface {
	Create(ctx context.Context, title *Title) error
	Get(ctx context.Context, id int64) (*TitleDetail, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, title *Title) error
	Delete(ctx context.Context, id int64) error
	List(
		ctx context.Context,
		params ListTitlesParams,
	) ([]TitleDetail, int, error)
	ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error
}

type categoryRepository struct {
	db core.DBTX
}

func NewCategoryRepository(db core.DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(
	ctx context.Context,
	category *Category,
) error {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.GetContext(ctx, &category.ID, query,
		category.Name,
		category.Slug,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *categoryRepository) GetBySlug(
	ctx context.Context,
	slug string,
) (*Category, error) {
	query := `SELECT id, name, slug FROM categories WHERE slug = $1`

	var category Category
	err := r.db.GetContext(ctx, &category, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &category, nil
}

// DeleteBySlug removes the category; titles referencing it have their
// category set to null at the schema level.
func (r *categoryRepository) DeleteBySlug(
	ctx context.Context,
	slug string,
) error {
	query := `DELETE FROM categories WHERE slug = $1`

	result, err := r.db.ExecContext(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}

	return nil
}

func (r *categoryRepository) List(
	ctx context.Context,
	params ListParams,
) ([]Category, int, error) {
	params.Normalize()
	return listSlugged[Category](ctx, r.db, "categories", params)
}

type genreRepository struct {
	db core.DBTX
}

func NewGenreRepository(db core.DBTX) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *Genre) error {
	query := `
		INSERT INTO genres (name, slug)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.GetContext(ctx, &genre.ID, query, genre.Name, genre.Slug)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create genre: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create genre: %w", err)
	}

	return nil
}

func (r *genreRepository) GetBySlug(
	ctx context.Context,
	slug string,
) (*Genre, error) {
	query := `SELECT id, name, slug FROM genres WHERE slug = $1`

	var genre Genre
	err := r.db.GetContext(ctx, &genre, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get genre: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}

	return &genre, nil
}

// DeleteBySlug removes the genre; link rows cascade at the schema level.
func (r *genreRepository) DeleteBySlug(
	ctx context.Context,
	slug string,
) error {
	query := `DELETE FROM genres WHERE slug = $1`

	result, err := r.db.ExecContext(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete genre: %w", core.ErrNotFound)
	}

	return nil
}

func (r *genreRepository) List(
	ctx context.Context,
	params ListParams,
) ([]Genre, int, error) {
	params.Normalize()
	return listSlugged[Genre](ctx, r.db, "genres", params)
}

// listSlugged pages a name/slug table with optional name search. The
// categories and genres tables share the exact shape.
func listSlugged[T any](
	ctx context.Context,
	db core.DBTX,
	table string,
	params ListParams,
) ([]T, int, error) {
	whereClause := "TRUE"
	var args []any
	argIdx := 1

	if params.Search != "" {
		whereClause = fmt.Sprintf("name ILIKE $%d", argIdx)
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s",
		table, whereClause,
	)
	var total int
	if err := db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug
		FROM %s
		WHERE %s
		ORDER BY slug
		LIMIT $%d OFFSET $%d`,
		table, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var items []T
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}

	return items, total, nil
}

type titleRepository struct {
	db core.DBTX
}

func NewTitleRepository(db core.DBTX) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, title *Title) error {
	query := `
		INSERT INTO titles (name, year, description, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.GetContext(ctx, &title.ID, query,
		title.Name,
		title.Year,
		title.Description,
		title.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("create title: %w", err)
	}

	return nil
}

func (r *titleRepository) Get(
	ctx context.Context,
	id int64,
) (*TitleDetail, error) {
	query := `
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       AVG(r.score) AS rating
		FROM titles t
		LEFT JOIN reviews r ON r.title_id = t.id
		WHERE t.id = $1
		GROUP BY t.id`

	var detail TitleDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get title: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}

	if err := r.hydrate(ctx, []*TitleDetail{&detail}); err != nil {
		return nil, err
	}

	return &detail, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}

	return exists, nil
}

func (r *titleRepository) Update(ctx context.Context, title *Title) error {
	query := `
		UPDATE titles
		SET name = $2, year = $3, description = $4, category_id = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		title.ID,
		title.Name,
		title.Year,
		title.Description,
		title.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update title: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the title; its reviews and their comments cascade at
// the schema level.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM titles WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete title: %w", core.ErrNotFound)
	}

	return nil
}

func (r *titleRepository) List(
	ctx context.Context,
	params ListTitlesParams,
) ([]TitleDetail, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	addCondition := func(cond string, value any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Category != "" {
		addCondition(`EXISTS (
			SELECT 1 FROM categories c
			WHERE c.id = t.category_id AND c.slug = $%d)`, params.Category)
	}

	if params.Genre != "" {
		addCondition(`EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $%d)`, params.Genre)
	}

	if params.Name != "" {
		addCondition("t.name ILIKE $%d", "%"+escapeLike(params.Name)+"%")
	}

	if params.Year != nil {
		addCondition("t.year = $%d", *params.Year)
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM titles t WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       AVG(r.score) AS rating
		FROM titles t
		LEFT JOIN reviews r ON r.title_id = t.id
		WHERE %s
		GROUP BY t.id
		ORDER BY t.name
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var details []TitleDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	refs := make([]*TitleDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.hydrate(ctx, refs); err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

func (r *titleRepository) ReplaceGenres(
	ctx context.Context,
	titleID int64,
	genreIDs []int64,
) error {
	deleteQuery := `DELETE FROM title_genres WHERE title_id = $1`
	if _, err := r.db.ExecContext(ctx, deleteQuery, titleID); err != nil {
		return fmt.Errorf("clear title genres: %w", err)
	}

	insertQuery := `
		INSERT INTO title_genres (title_id, genre_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, genreID := range genreIDs {
		if _, err := r.db.ExecContext(ctx, insertQuery, titleID, genreID); err != nil {
			return fmt.Errorf("link title genre: %w", err)
		}
	}

	return nil
}

// hydrate attaches categories and genres to a page of title rows with
// one query per relation instead of one per title.
func (r *titleRepository) hydrate(
	ctx context.Context,
	details []*TitleDetail,
) error {
	if len(details) == 0 {
		return nil
	}

	titleIDs := make([]int64, 0, len(details))
	categoryIDs := make([]int64, 0, len(details))
	for _, d := range details {
		titleIDs = append(titleIDs, d.ID)
		if d.CategoryID != nil {
			categoryIDs = append(categoryIDs, *d.CategoryID)
		}
	}

	if len(categoryIDs) > 0 {
		query, args, err := sqlx.In(
			`SELECT id, name, slug FROM categories WHERE id IN (?)`,
			categoryIDs,
		)
		if err != nil {
			return fmt.Errorf("build category query: %w", err)
		}

		var categories []Category
		err = r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		byID := make(map[int64]*Category, len(categories))
		for i := range categories {
			byID[categories[i].ID] = &categories[i]
		}

		for _, d := range details {
			if d.CategoryID != nil {
				d.Category = byID[*d.CategoryID]
			}
		}
	}

	query, args, err := sqlx.In(`
		SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (?)
		ORDER BY g.slug`,
		titleIDs,
	)
	if err != nil {
		return fmt.Errorf("build genre query: %w", err)
	}

	var links []struct {
		TitleID int64 `db:"title_id"`
		Genre
	}
	if err := r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load genres: %w", err)
	}

	byTitle := make(map[int64][]Genre, len(details))
	for _, link := range links {
		byTitle[link.TitleID] = append(byTitle[link.TitleID], link.Genre)
	}

	for _, d := range details {
		d.Genres = byTitle[d.ID]
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
