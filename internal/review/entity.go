// AngelaMos | 2026
// entity.go

package review

import "time"

// Review rows carry the author's username from a join; one author may
// review a given title at most once.
type Review struct {
	ID             int64     `db:"id"`
	TitleID        int64     `db:"title_id"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Text           string    `db:"text"`
	Score          int       `db:"score"`
	PubDate        time.Time `db:"pub_date"`
}

type Comment struct {
	ID             int64     `db:"id"`
	ReviewID       int64     `db:"review_id"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Text           string    `db:"text"`
	PubDate        time.Time `db:"pub_date"`
}
