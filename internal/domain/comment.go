package domain

import "time"

// Comment is a user's review of a film.
type Comment struct {
	ID        string    `db:"id"`
	FilmID    string    `db:"film_id"`
	UserID    string    `db:"user_id"`
	Text      string    `db:"text"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// CreateCommentRequest is the body of POST /comments/{filmId}.
type CreateCommentRequest struct {
	Text   string `json:"text" validate:"required,min=5,max=1024"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=10"`
}
