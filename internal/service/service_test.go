package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"what-to-watch/internal/domain"
	"what-to-watch/internal/store"
	"what-to-watch/pkg/auth"
)

func newTestServices(promoID string) *Services {
	stores := store.NewMemory(zerolog.Nop())
	return New(stores, auth.NewPasswordHasher(bcrypt.MinCost), Options{PromoFilmID: promoID}, zerolog.Nop())
}

func filmRequest(name string, genre domain.Genre) domain.CreateFilmRequest {
	return domain.CreateFilmRequest{
		Name:             name,
		Description:      "A film description long enough to pass.",
		Genre:            string(genre),
		Released:         1995,
		PreviewVideoLink: "https://example.com/preview.mp4",
		VideoLink:        "https://example.com/video.mp4",
		Actors:           []string{"Al Pacino"},
		Producer:         "Michael Mann",
		RunTime:          170,
		PosterImage:      "poster.jpg",
		BackgroundImage:  "background.jpg",
		Color:            "#A6B7AC",
	}
}

func TestUserServiceRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices("")

	req := domain.CreateUserRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"}
	user, err := svc.Users.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == req.Password {
		t.Error("password not hashed")
	}

	if _, err := svc.Users.Register(ctx, req); !errors.Is(err, store.ErrUserAlreadyExists) {
		t.Errorf("duplicate Register err = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "ann@example.com", "secret1", nil},
		{"wrong password", "ann@example.com", "secret2", ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret1", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Users.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != user.ID {
				t.Errorf("Authenticate returned %s, want %s", got.ID, user.ID)
			}
		})
	}
}

func TestFilmServiceUpdateKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices("")

	film, err := svc.Films.Create(ctx, "u1", filmRequest("Heat", domain.GenreCrime))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	name := "Heat (1995)"
	updated, err := svc.Films.Update(ctx, film, domain.UpdateFilmRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != name || updated.Producer != "Michael Mann" || updated.UserID != "u1" {
		t.Errorf("Update result = %+v", updated)
	}
	stored, _ := svc.Films.FindByID(ctx, film.ID)
	if stored.Name != name {
		t.Errorf("stored name = %q", stored.Name)
	}
}

func TestFilmServicePromo(t *testing.T) {
	ctx := context.Background()

	t.Run("empty catalog", func(t *testing.T) {
		svc := newTestServices("")
		if _, err := svc.Films.FindPromo(ctx); !errors.Is(err, store.ErrFilmNotFound) {
			t.Errorf("FindPromo err = %v, want ErrFilmNotFound", err)
		}
	})

	t.Run("newest film without configured promo", func(t *testing.T) {
		svc := newTestServices("missing-id")
		_, _ = svc.Films.Create(ctx, "u1", filmRequest("Old", domain.GenreDrama))
		time.Sleep(time.Millisecond)
		newest, _ := svc.Films.Create(ctx, "u1", filmRequest("New", domain.GenreDrama))

		promo, err := svc.Films.FindPromo(ctx)
		if err != nil {
			t.Fatalf("FindPromo: %v", err)
		}
		if promo.ID != newest.ID {
			t.Errorf("promo = %s, want newest %s", promo.Name, newest.Name)
		}
	})
}

func TestFilmServiceFindByGenre(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices("")
	_, _ = svc.Films.Create(ctx, "u1", filmRequest("Heat", domain.GenreCrime))
	_, _ = svc.Films.Create(ctx, "u1", filmRequest("Up", domain.GenreFamily))

	films, err := svc.Films.FindByGenre(ctx, domain.GenreCrime, 0)
	if err != nil {
		t.Fatalf("FindByGenre: %v", err)
	}
	if len(films) != 1 || films[0].Name != "Heat" {
		t.Errorf("FindByGenre = %+v", films)
	}
}

func TestFavoriteServiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices("")

	for i := 0; i < 2; i++ {
		if err := svc.Favorites.Add(ctx, "u1", "f1"); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if ok, _ := svc.Favorites.IsFavorite(ctx, "u1", "f1"); !ok {
		t.Error("film not marked favorite")
	}
	ids, _ := svc.Favorites.FilmIDs(ctx, "u1")
	if !ids["f1"] || len(ids) != 1 {
		t.Errorf("FilmIDs = %v", ids)
	}
	for i := 0; i < 2; i++ {
		if err := svc.Favorites.Remove(ctx, "u1", "f1"); err != nil {
			t.Fatalf("Remove #%d: %v", i, err)
		}
	}
	if ok, _ := svc.Favorites.IsFavorite(ctx, "u1", "f1"); ok {
		t.Error("film still favorite after Remove")
	}
}

func TestCommentServiceDefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices("")
	for i := 0; i < defaultCommentLimit+5; i++ {
		if _, err := svc.Comments.Create(ctx, "f1", "u1", domain.CreateCommentRequest{Text: "Great film", Rating: 8}); err != nil {
			t.Fatal(err)
		}
	}
	comments, err := svc.Comments.FindByFilmID(ctx, "f1")
	if err != nil {
		t.Fatalf("FindByFilmID: %v", err)
	}
	if len(comments) != defaultCommentLimit {
		t.Errorf("got %d comments, want %d", len(comments), defaultCommentLimit)
	}
}
