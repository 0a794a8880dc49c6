package model

import "time"

// Post は投稿を表す。IDはデータベースのBIGSERIALで採番する整数。
// BodyはUGCサニタイズ済みのHTMLを保持する。
type Post struct {
	ID        int64
	AuthorID  string
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
