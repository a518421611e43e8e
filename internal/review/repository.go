// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ayavrik/yamdb-final/internal/core"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	Get(ctx context.Context, titleID, id int64) (*Review, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id int64) error
	ListByTitle(
		ctx context.Context,
		titleID int64,
		params ListParams,
	) ([]Review, int, error)
	ExistsByTitleAndAuthor(
		ctx context.Context,
		titleID int64,
		authorID string,
	) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	Get(ctx context.Context, reviewID, id int64) (*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id int64) error
	ListByReview(
		ctx context.Context,
		reviewID int64,
		params ListParams,
	) ([]Comment, int, error)
}

const reviewColumns = `
	r.id, r.title_id, r.author_id, r.text, r.score, r.pub_date,
	u.username AS author_username`

type reviewRepository struct {
	db core.DBTX
}

func NewReviewRepository(db core.DBTX) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (title_id, author_id, text, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, pub_date`

	var ret struct {
		ID      int64     `db:"id"`
		PubDate time.Time `db:"pub_date"`
	}

	err := r.db.GetContext(ctx, &ret, query,
		review.TitleID,
		review.AuthorID,
		review.Text,
		review.Score,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create review: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create review: %w", err)
	}

	review.ID = ret.ID
	review.PubDate = ret.PubDate
	return nil
}

// Get scopes the lookup to the title so a review reached through the
// wrong title path is indistinguishable from a missing one.
func (r *reviewRepository) Get(
	ctx context.Context,
	titleID, id int64,
) (*Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.id = $1 AND r.title_id = $2`, reviewColumns)

	var review Review
	err := r.db.GetContext(ctx, &review, query, id, titleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *Review) error {
	query := `UPDATE reviews SET text = $2, score = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.Text,
		review.Score,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the review; its comments cascade at the schema level.
func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}

	return nil
}

func (r *reviewRepository) ListByTitle(
	ctx context.Context,
	titleID int64,
	params ListParams,
) ([]Review, int, error) {
	params.Normalize()

	countQuery := `SELECT COUNT(*) FROM reviews WHERE title_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, titleID); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.title_id = $1
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT $2 OFFSET $3`, reviewColumns)

	var reviews []Review
	err := r.db.SelectContext(
		ctx, &reviews, query,
		titleID, params.PageSize, params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *reviewRepository) ExistsByTitleAndAuthor(
	ctx context.Context,
	titleID int64,
	authorID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, titleID, authorID)
	if err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}

	return exists, nil
}

const commentColumns = `
	c.id, c.review_id, c.author_id, c.text, c.pub_date,
	u.username AS author_username`

type commentRepository struct {
	db core.DBTX
}

func NewCommentRepository(db core.DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(
	ctx context.Context,
	comment *Comment,
) error {
	query := `
		INSERT INTO comments (review_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, pub_date`

	var ret struct {
		ID      int64     `db:"id"`
		PubDate time.Time `db:"pub_date"`
	}

	err := r.db.GetContext(ctx, &ret, query,
		comment.ReviewID,
		comment.AuthorID,
		comment.Text,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	comment.ID = ret.ID
	comment.PubDate = ret.PubDate
	return nil
}

func (r *commentRepository) Get(
	ctx context.Context,
	reviewID, id int64,
) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1 AND c.review_id = $2`, commentColumns)

	var comment Comment
	err := r.db.GetContext(ctx, &comment, query, id, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

func (r *commentRepository) Update(
	ctx context.Context,
	comment *Comment,
) error {
	query := `UPDATE comments SET text = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, comment.ID, comment.Text)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update comment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM comments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete comment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *commentRepository) ListByReview(
	ctx context.Context,
	reviewID int64,
	params ListParams,
) ([]Comment, int, error) {
	params.Normalize()

	countQuery := `SELECT COUNT(*) FROM comments WHERE review_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, reviewID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.review_id = $1
		ORDER BY c.pub_date DESC, c.id DESC
		LIMIT $2 OFFSET $3`, commentColumns)

	var comments []Comment
	err := r.db.SelectContext(
		ctx, &comments, query,
		reviewID, params.PageSize, params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
