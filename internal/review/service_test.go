// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayavrik/yamdb-final/internal/access"
	"github.com/ayavrik/yamdb-final/internal/core"
)

type fakeReviewRepo struct {
	byID   map[int64]*Review
	nextID int64
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{byID: make(map[int64]*Review)}
}

func (f *fakeReviewRepo) Create(_ context.Context, review *Review) error {
	for _, existing := range f.byID {
		if existing.TitleID == review.TitleID &&
			existing.AuthorID == review.AuthorID {
			return core.ErrDuplicateKey
		}
	}
	f.nextID++
	review.ID = f.nextID
	review.PubDate = time.Now()
	f.byID[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) Get(
	_ context.Context,
	titleID, id int64,
) (*Review, error) {
	review, ok := f.byID[id]
	if !ok || review.TitleID != titleID {
		return nil, core.ErrNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, review *Review) error {
	if _, ok := f.byID[review.ID]; !ok {
		return core.ErrNotFound
	}
	copied := *review
	f.byID[review.ID] = &copied
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReviewRepo) ListByTitle(
	_ context.Context,
	titleID int64,
	_ ListParams,
) ([]Review, int, error) {
	out := make([]Review, 0)
	for _, r := range f.byID {
		if r.TitleID == titleID {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviewRepo) ExistsByTitleAndAuthor(
	_ context.Context,
	titleID int64,
	authorID string,
) (bool, error) {
	for _, r := range f.byID {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

type fakeCommentRepo struct {
	byID   map[int64]*Comment
	nextID int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byID: make(map[int64]*Comment)}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *Comment) error {
	f.nextID++
	comment.ID = f.nextID
	comment.PubDate = time.Now()
	f.byID[comment.ID] = comment
	return nil
}

func (f *fakeCommentRepo) Get(
	_ context.Context,
	reviewID, id int64,
) (*Comment, error) {
	comment, ok := f.byID[id]
	if !ok || comment.ReviewID != reviewID {
		return nil, core.ErrNotFound
	}
	copied := *comment
	return &copied, nil
}

func (f *fakeCommentRepo) Update(_ context.Context, comment *Comment) error {
	if _, ok := f.byID[comment.ID]; !ok {
		return core.ErrNotFound
	}
	copied := *comment
	f.byID[comment.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCommentRepo) ListByReview(
	_ context.Context,
	reviewID int64,
	_ ListParams,
) ([]Comment, int, error) {
	out := make([]Comment, 0)
	for _, c := range f.byID {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

type fakeTitles struct {
	existing map[int64]bool
}

func (f *fakeTitles) TitleExists(_ context.Context, id int64) (bool, error) {
	return f.existing[id], nil
}

var (
	owner     = access.Actor{ID: "u1", Username: "owner", Role: access.RoleUser, Authenticated: true}
	stranger  = access.Actor{ID: "u2", Username: "stranger", Role: access.RoleUser, Authenticated: true}
	moderator = access.Actor{ID: "m1", Username: "mod", Role: access.RoleModerator, Authenticated: true}
)

func newTestService() (*Service, *fakeReviewRepo, *fakeCommentRepo) {
	reviews := newFakeReviewRepo()
	comments := newFakeCommentRepo()
	svc := NewService(reviews, comments, &fakeTitles{
		existing: map[int64]bool{1: true},
	})
	return svc, reviews, comments
}

func TestCreateReview(t *testing.T) {
	svc, _, _ := newTestService()

	review, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "solid", Score: 8})

	require.NoError(t, err)
	assert.Equal(t, "u1", review.AuthorID)
	assert.Equal(t, 8, review.Score)
	assert.False(t, review.PubDate.IsZero())
}

func TestCreateReviewAnonymous(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), access.Anonymous(), 1,
		CreateReviewRequest{Text: "drive-by", Score: 1})

	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestCreateReviewMissingTitle(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), owner, 404,
		CreateReviewRequest{Text: "ghost", Score: 5})

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateReviewSecondForSameTitle(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "first take", Score: 8})
	require.NoError(t, err)

	_, err = svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "second thoughts", Score: 3})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "title")
}

func TestUpdateReviewOwnership(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "mine", Score: 7})
	require.NoError(t, err)

	newText := "edited"

	_, err = svc.UpdateReview(context.Background(), stranger, 1, created.ID,
		UpdateReviewRequest{Text: &newText})
	assert.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.UpdateReview(context.Background(), owner, 1, created.ID,
		UpdateReviewRequest{Text: &newText})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
}

func TestModeratorEditsAnyReview(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "spam spam spam", Score: 10})
	require.NoError(t, err)

	cleaned := "[removed]"
	updated, err := svc.UpdateReview(context.Background(), moderator, 1,
		created.ID, UpdateReviewRequest{Text: &cleaned})

	require.NoError(t, err)
	assert.Equal(t, "[removed]", updated.Text)
	// authorship is untouched by a moderator edit
	assert.Equal(t, "u1", updated.AuthorID)
}

func TestDeleteReviewOwnership(t *testing.T) {
	svc, reviews, _ := newTestService()

	created, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "regret", Score: 2})
	require.NoError(t, err)

	err = svc.DeleteReview(context.Background(), stranger, 1, created.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.DeleteReview(context.Background(), owner, 1, created.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews.byID)
}

// A review reached through the wrong title is a 404, same as a missing
// one, so the URL hierarchy never leaks cross-title IDs.
func TestReviewScopedToTitle(t *testing.T) {
	svc, _, _ := newTestService()
	svc.titles = &fakeTitles{existing: map[int64]bool{1: true, 2: true}}

	created, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "on title one", Score: 6})
	require.NoError(t, err)

	_, err = svc.GetReview(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCommentLifecycle(t *testing.T) {
	svc, _, _ := newTestService()

	review, err := svc.CreateReview(context.Background(), owner, 1,
		CreateReviewRequest{Text: "discussable", Score: 9})
	require.NoError(t, err)

	comment, err := svc.CreateComment(context.Background(), stranger, 1,
		review.ID, CreateCommentRequest{Text: "disagree"})
	require.NoError(t, err)
	assert.Equal(t, "u2", comment.AuthorID)

	// owner of the review cannot edit someone else's comment
	newText := "rewritten"
	_, err = svc.UpdateComment(context.Background(), owner, 1, review.ID,
		comment.ID, UpdateCommentRequest{Text: &newText})
	assert.ErrorIs(t, err, core.ErrForbidden)

	// but a moderator can remove it
	err = svc.DeleteComment(context.Background(), moderator, 1, review.ID,
		comment.ID)
	assert.NoError(t, err)
}

func TestCreateCommentMissingReview(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateComment(context.Background(), owner, 1, 12345,
		CreateCommentRequest{Text: "into the void"})

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListReviewsMissingTitle(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.ListReviews(context.Background(), 99, ListParams{})

	assert.ErrorIs(t, err, core.ErrNotFound)
}
