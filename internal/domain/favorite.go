package domain

import "time"

// Favorite marks a film as favorite for one user.
type Favorite struct {
	UserID    string    `db:"user_id"`
	FilmID    string    `db:"film_id"`
	CreatedAt time.Time `db:"created_at"`
}
