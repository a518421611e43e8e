// AngelaMos | 2026
// dto.go

package review

import "time"

type CreateReviewRequest struct {
	Text  string `json:"text"  validate:"required"`
	Score int    `json:"score" validate:"required,gte=1,lte=10"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty"  validate:"omitempty,min=1"`
	Score *int    `json:"score,omitempty" validate:"omitempty,gte=1,lte=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type UpdateCommentRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,min=1"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

type ListParams struct {
	Page     int
	PageSize int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.AuthorUsername,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, ToReviewResponse(&reviews[i]))
	}
	return responses
}

func ToCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.AuthorUsername,
		PubDate: c.PubDate,
	}
}

func ToCommentResponseList(comments []Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, ToCommentResponse(&comments[i]))
	}
	return responses
}
