package api

import (
	"what-to-watch/internal/domain"
	"what-to-watch/internal/shape"
)

// filmView is a film with the data its response shapes need beyond the record.
type filmView struct {
	Film       *domain.Film
	Author     *domain.User
	IsFavorite bool
}

type commentView struct {
	Comment *domain.Comment
	Author  *domain.User
}

type loginView struct {
	Token string
	User  *domain.User
}

var UserShape = shape.Of(
	shape.Field[*domain.User]{Name: "id", Value: func(u *domain.User) any { return u.ID }},
	shape.Field[*domain.User]{Name: "name", Value: func(u *domain.User) any { return u.Name }},
	shape.Field[*domain.User]{Name: "email", Value: func(u *domain.User) any { return u.Email }},
	shape.Field[*domain.User]{Name: "avatarPath", Value: func(u *domain.User) any { return u.AvatarPath }},
)

func filmField(name string, get func(f *domain.Film) any) shape.Field[filmView] {
	return shape.Field[filmView]{Name: name, Value: func(v filmView) any { return get(v.Film) }}
}

var (
	filmAuthor   = shape.Nested("user", func(v filmView) *domain.User { return v.Author }, UserShape)
	filmFavorite = shape.Field[filmView]{Name: "isFavorite", Value: func(v filmView) any { return v.IsFavorite }}
)

// FilmShape is the list card.
var FilmShape = shape.Of(
	filmField("id", func(f *domain.Film) any { return f.ID }),
	filmField("name", func(f *domain.Film) any { return f.Name }),
	filmField("publicationDate", func(f *domain.Film) any { return f.CreatedAt }),
	filmField("genre", func(f *domain.Film) any { return f.Genre }),
	filmField("previewVideoLink", func(f *domain.Film) any { return f.PreviewVideoLink }),
	filmField("posterImage", func(f *domain.Film) any { return f.PosterImage }),
	filmField("commentCount", func(f *domain.Film) any { return f.CommentCount }),
	filmAuthor,
	filmFavorite,
)

var FilmDetailShape = shape.Of(
	filmField("id", func(f *domain.Film) any { return f.ID }),
	filmField("name", func(f *domain.Film) any { return f.Name }),
	filmField("description", func(f *domain.Film) any { return f.Description }),
	filmField("publicationDate", func(f *domain.Film) any { return f.CreatedAt }),
	filmField("genre", func(f *domain.Film) any { return f.Genre }),
	filmField("released", func(f *domain.Film) any { return f.Released }),
	filmField("rating", func(f *domain.Film) any { return f.Rating }),
	filmField("previewVideoLink", func(f *domain.Film) any { return f.PreviewVideoLink }),
	filmField("videoLink", func(f *domain.Film) any { return f.VideoLink }),
	filmField("actors", func(f *domain.Film) any { return actors(f) }),
	filmField("producer", func(f *domain.Film) any { return f.Producer }),
	filmField("runTime", func(f *domain.Film) any { return f.RunTime }),
	filmField("commentCount", func(f *domain.Film) any { return f.CommentCount }),
	filmAuthor,
	filmField("posterImage", func(f *domain.Film) any { return f.PosterImage }),
	filmField("backgroundImage", func(f *domain.Film) any { return f.BackgroundImage }),
	filmField("color", func(f *domain.Film) any { return f.Color }),
	filmFavorite,
)

var CommentShape = shape.Of(
	shape.Field[commentView]{Name: "id", Value: func(v commentView) any { return v.Comment.ID }},
	shape.Field[commentView]{Name: "text", Value: func(v commentView) any { return v.Comment.Text }},
	shape.Field[commentView]{Name: "rating", Value: func(v commentView) any { return v.Comment.Rating }},
	shape.Field[commentView]{Name: "postDate", Value: func(v commentView) any { return v.Comment.CreatedAt }},
	shape.Nested("user", func(v commentView) *domain.User { return v.Author }, UserShape),
)

var LoginShape = shape.Of(
	shape.Field[loginView]{Name: "token", Value: func(v loginView) any { return v.Token }},
	shape.Nested("user", func(v loginView) *domain.User { return v.User }, UserShape),
)

func actors(f *domain.Film) []string {
	if f.Actors == nil {
		return []string{}
	}
	return []string(f.Actors)
}
