// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayavrik/yamdb-final/internal/access"
	"github.com/ayavrik/yamdb-final/internal/core"
)

// TitleChecker reports whether a title exists; nested routes return 404
// before any review logic runs when it does not.
type TitleChecker interface {
	TitleExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	reviews  ReviewRepository
	comments CommentRepository
	titles   TitleChecker
}

func NewService(
	reviews ReviewRepository,
	comments CommentRepository,
	titles TitleChecker,
) *Service {
	return &Service{reviews: reviews, comments: comments, titles: titles}
}

// CreateReview posts the actor's review for a title. One review per
// author per title: a second attempt is a validation error, enforced
// both by a pre-check and by the unique index underneath it.
func (s *Service) CreateReview(
	ctx context.Context,
	actor access.Actor,
	titleID int64,
	req CreateReviewRequest,
) (*Review, error) {
	if err := authorize(actor, access.ActionWrite, access.ResourceReview, ""); err != nil {
		return nil, err
	}

	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByTitleAndAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.FieldError(
			"title",
			"you have already reviewed this title",
		)
	}

	review := &Review{
		TitleID:        titleID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           req.Text,
		Score:          req.Score,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.FieldError(
				"title",
				"you have already reviewed this title",
			)
		}
		return nil, err
	}

	return review, nil
}

func (s *Service) GetReview(
	ctx context.Context,
	titleID, reviewID int64,
) (*Review, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}

	return s.reviews.Get(ctx, titleID, reviewID)
}

func (s *Service) UpdateReview(
	ctx context.Context,
	actor access.Actor,
	titleID, reviewID int64,
	req UpdateReviewRequest,
) (*Review, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	err = authorize(
		actor, access.ActionWrite, access.ResourceReview, review.AuthorID,
	)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) DeleteReview(
	ctx context.Context,
	actor access.Actor,
	titleID, reviewID int64,
) error {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	err = authorize(
		actor, access.ActionWrite, access.ResourceReview, review.AuthorID,
	)
	if err != nil {
		return err
	}

	return s.reviews.Delete(ctx, review.ID)
}

func (s *Service) ListReviews(
	ctx context.Context,
	titleID int64,
	params ListParams,
) ([]Review, int, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}

	return s.reviews.ListByTitle(ctx, titleID, params)
}

func (s *Service) CreateComment(
	ctx context.Context,
	actor access.Actor,
	titleID, reviewID int64,
	req CreateCommentRequest,
) (*Comment, error) {
	if err := authorize(actor, access.ActionWrite, access.ResourceComment, ""); err != nil {
		return nil, err
	}

	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ReviewID:       reviewID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           req.Text,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) GetComment(
	ctx context.Context,
	titleID, reviewID, commentID int64,
) (*Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	return s.comments.Get(ctx, reviewID, commentID)
}

func (s *Service) UpdateComment(
	ctx context.Context,
	actor access.Actor,
	titleID, reviewID, commentID int64,
	req UpdateCommentRequest,
) (*Comment, error) {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	err = authorize(
		actor, access.ActionWrite, access.ResourceComment, comment.AuthorID,
	)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) DeleteComment(
	ctx context.Context,
	actor access.Actor,
	titleID, reviewID, commentID int64,
) error {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	err = authorize(
		actor, access.ActionWrite, access.ResourceComment, comment.AuthorID,
	)
	if err != nil {
		return err
	}

	return s.comments.Delete(ctx, comment.ID)
}

func (s *Service) ListComments(
	ctx context.Context,
	titleID, reviewID int64,
	params ListParams,
) ([]Comment, int, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}

	return s.comments.ListByReview(ctx, reviewID, params)
}

func (s *Service) checkTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titles.TitleExists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("title %d: %w", titleID, core.ErrNotFound)
	}
	return nil
}

// authorize translates a rule-table denial into the transport-level
// sentinel: unauthorized for anonymous actors, forbidden otherwise.
func authorize(
	a access.Actor,
	action access.Action,
	res access.Resource,
	ownerID string,
) error {
	if access.Allowed(a, action, res, ownerID) {
		return nil
	}
	if !a.Authenticated {
		return core.ErrUnauthorized
	}
	return core.ErrForbidden
}
