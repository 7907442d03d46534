package domain

import (
	"time"

	"github.com/lib/pq"
)

// Genre is one of the catalog's fixed genres.
type Genre string

const (
	GenreComedy      Genre = "comedy"
	GenreCrime       Genre = "crime"
	GenreDocumentary Genre = "documentary"
	GenreDrama       Genre = "drama"
	GenreHorror      Genre = "horror"
	GenreFamily      Genre = "family"
	GenreRomance     Genre = "romance"
	GenreScifi       Genre = "scifi"
	GenreThriller    Genre = "thriller"
)

// Genres lists every valid genre in display order.
var Genres = []Genre{
	GenreComedy, GenreCrime, GenreDocumentary, GenreDrama, GenreHorror,
	GenreFamily, GenreRomance, GenreScifi, GenreThriller,
}

// ParseGenre reports whether s names a known genre.
func ParseGenre(s string) (Genre, bool) {
	for _, g := range Genres {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// Film is the catalog entry. UserID references the author who created it.
type Film struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Description      string         `db:"description"`
	Genre            Genre          `db:"genre"`
	Released         int            `db:"released"`
	Rating           float64        `db:"rating"`
	PreviewVideoLink string         `db:"preview_video_link"`
	VideoLink        string         `db:"video_link"`
	Actors           pq.StringArray `db:"actors"`
	Producer         string         `db:"producer"`
	RunTime          int            `db:"run_time"`
	CommentCount     int            `db:"comment_count"`
	UserID           string         `db:"user_id"`
	PosterImage      string         `db:"poster_image"`
	BackgroundImage  string         `db:"background_image"`
	Color            string         `db:"color"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// CreateFilmRequest is the body of POST /films.
type CreateFilmRequest struct {
	Name             string   `json:"name" validate:"required,min=2,max=100"`
	Description      string   `json:"description" validate:"required,min=20,max=1024"`
	Genre            string   `json:"genre" validate:"required,genre"`
	Released         int      `json:"released" validate:"required,gte=1895,lte=2100"`
	PreviewVideoLink string   `json:"previewVideoLink" validate:"required,url"`
	VideoLink        string   `json:"videoLink" validate:"required,url"`
	Actors           []string `json:"actors" validate:"required,min=1,dive,min=1,max=100"`
	Producer         string   `json:"producer" validate:"required,min=2,max=50"`
	RunTime          int      `json:"runTime" validate:"required,gt=0"`
	PosterImage      string   `json:"posterImage" validate:"required,imagefile"`
	BackgroundImage  string   `json:"backgroundImage" validate:"required,imagefile"`
	Color            string   `json:"color" validate:"required,hexcolor"`
}

// UpdateFilmRequest is the body of PATCH /films/{id}. Nil fields are left unchanged.
type UpdateFilmRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description      *string  `json:"description,omitempty" validate:"omitempty,min=20,max=1024"`
	Genre            *string  `json:"genre,omitempty" validate:"omitempty,genre"`
	Released         *int     `json:"released,omitempty" validate:"omitempty,gte=1895,lte=2100"`
	PreviewVideoLink *string  `json:"previewVideoLink,omitempty" validate:"omitempty,url"`
	VideoLink        *string  `json:"videoLink,omitempty" validate:"omitempty,url"`
	Actors           []string `json:"actors,omitempty" validate:"omitempty,min=1,dive,min=1,max=100"`
	Producer         *string  `json:"producer,omitempty" validate:"omitempty,min=2,max=50"`
	RunTime          *int     `json:"runTime,omitempty" validate:"omitempty,gt=0"`
	PosterImage      *string  `json:"posterImage,omitempty" validate:"omitempty,imagefile"`
	BackgroundImage  *string  `json:"backgroundImage,omitempty" validate:"omitempty,imagefile"`
	Color            *string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// Apply copies the non-nil fields of req onto f.
func (req UpdateFilmRequest) Apply(f *Film) {
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Genre != nil {
		f.Genre = Genre(*req.Genre)
	}
	if req.Released != nil {
		f.Released = *req.Released
	}
	if req.PreviewVideoLink != nil {
		f.PreviewVideoLink = *req.PreviewVideoLink
	}
	if req.VideoLink != nil {
		f.VideoLink = *req.VideoLink
	}
	if req.Actors != nil {
		f.Actors = pq.StringArray(req.Actors)
	}
	if req.Producer != nil {
		f.Producer = *req.Producer
	}
	if req.RunTime != nil {
		f.RunTime = *req.RunTime
	}
	if req.PosterImage != nil {
		f.PosterImage = *req.PosterImage
	}
	if req.BackgroundImage != nil {
		f.BackgroundImage = *req.BackgroundImage
	}
	if req.Color != nil {
		f.Color = *req.Color
	}
}
