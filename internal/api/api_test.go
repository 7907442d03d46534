package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"what-to-watch/internal/service"
	"what-to-watch/internal/store"
	"what-to-watch/internal/validation"
	"what-to-watch/pkg/auth"
)

type testAPI struct {
	handler  http.Handler
	services *service.Services
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret-key-that-is-long-enough", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	services := service.New(store.NewMemory(zerolog.Nop()), auth.NewPasswordHasher(bcrypt.MinCost), service.Options{}, zerolog.Nop())
	handler := NewRouter(RouterConfig{
		Logger:    zerolog.Nop(),
		Tokens:    tokens,
		Revoker:   auth.NewMemoryRevoker(),
		Validator: validation.New(),
	}, services)
	return &testAPI{handler: handler, services: services}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user and returns its ID and a fresh token.
func (a *testAPI) signUp(t *testing.T, name, email string) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/users/register", "", map[string]any{
		"name": name, "email": email, "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body)
	}
	user := decode(t, rec)

	rec = a.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"email": email, "password": "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rec.Code, rec.Body)
	}
	return user["id"].(string), decode(t, rec)["token"].(string)
}

func (a *testAPI) createFilm(t *testing.T, token string, name string) map[string]any {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/films", token, validFilm(name))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create film: status %d, body %s", rec.Code, rec.Body)
	}
	return decode(t, rec)
}

func validFilm(name string) map[string]any {
	return map[string]any{
		"name":             name,
		"description":      "A crime saga about a thief and the detective chasing him.",
		"genre":            "crime",
		"released":         1995,
		"previewVideoLink": "https://example.com/heat-preview.mp4",
		"videoLink":        "https://example.com/heat.mp4",
		"actors":           []string{"Al Pacino", "Robert De Niro"},
		"producer":         "Michael Mann",
		"runTime":          170,
		"posterImage":      "heat-poster.jpg",
		"backgroundImage":  "heat-background.jpg",
		"color":            "#A6B7AC",
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode list %q: %v", rec.Body.String(), err)
	}
	return body
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}

func TestUnregisteredRoutesReturn404(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/unknown"},
		{http.MethodGet, "/elsewhere"},
		{http.MethodDelete, "/api/users/register"},
		{http.MethodPut, "/api/films"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := a.do(t, tt.method, tt.path, "", nil)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}
			body := decode(t, rec)
			if body["status"] != float64(http.StatusNotFound) || body["message"] == "" || body["origin"] == "" {
				t.Errorf("error body = %v", body)
			}
		})
	}
}

func TestUserLifecycle(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/users/register", "", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "secret1", "isAdmin": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}
	user := decode(t, rec)
	if got, want := sortedKeys(user), sortedNames(UserShape.Names()); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("user keys = %v, want %v", got, want)
	}

	rec = a.do(t, http.MethodPost, "/api/users/register", "", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}

	rec = a.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"email": "ann@example.com", "password": "wrong1"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}

	rec = a.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"email": "ann@example.com", "password": "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	login := decode(t, rec)
	token, _ := login["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	if loginUser, _ := login["user"].(map[string]any); loginUser["id"] != user["id"] {
		t.Errorf("login user = %v", login["user"])
	}

	if rec = a.do(t, http.MethodGet, "/api/users/login", token, nil); rec.Code != http.StatusOK {
		t.Errorf("check auth status = %d, want 200", rec.Code)
	}
	if rec = a.do(t, http.MethodGet, "/api/users/login", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous check auth status = %d, want 401", rec.Code)
	}
	if rec = a.do(t, http.MethodGet, "/api/users/login", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token status = %d, want 401", rec.Code)
	}

	if rec = a.do(t, http.MethodPost, "/api/users/logout", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", rec.Code)
	}
	if rec = a.do(t, http.MethodGet, "/api/users/login", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", rec.Code)
	}
}

func TestCreateFilm(t *testing.T) {
	a := newTestAPI(t)
	userID, token := a.signUp(t, "Ann", "ann@example.com")

	film := a.createFilm(t, token, "Heat")

	if id, _ := film["id"].(string); id == "" {
		t.Error("created film has no id")
	}
	if fav, ok := film["isFavorite"]; !ok || fav != false {
		t.Errorf("isFavorite = %v (present %v), want false", fav, ok)
	}
	author, _ := film["user"].(map[string]any)
	if author["id"] != userID || author["name"] != "Ann" {
		t.Errorf("author = %v", film["user"])
	}
	if _, leaked := author["passwordHash"]; leaked {
		t.Error("author sub-object leaks the password hash")
	}
	if got, want := sortedKeys(film), sortedNames(FilmDetailShape.Names()); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("film keys = %v, want %v", got, want)
	}
}

func TestCreateFilmRequiresAuth(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodPost, "/api/films", "", validFilm("Heat"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCreateFilmValidation(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.signUp(t, "Ann", "ann@example.com")

	body := validFilm("Heat")
	delete(body, "name")
	rec := a.do(t, http.MethodPost, "/api/films", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	fields, _ := decode(t, rec)["errors"].([]any)
	found := false
	for _, f := range fields {
		if fe, _ := f.(map[string]any); fe["field"] == "name" {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want an entry for name", fields)
	}

	films, _ := a.services.Films.Find(context.Background(), 0)
	if len(films) != 0 {
		t.Errorf("%d films stored after a rejected request", len(films))
	}
}

func TestShowFilm(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.signUp(t, "Ann", "ann@example.com")
	film := a.createFilm(t, token, "Heat")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"existing", "/api/films/" + film["id"].(string), http.StatusOK},
		{"well-formed missing id", "/api/films/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/api/films/not-an-id", http.StatusBadRequest},
		{"uppercase id", "/api/films/" + strings.ToUpper(film["id"].(string)), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := a.do(t, http.MethodGet, tt.path, "", nil); rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestOwnershipIsCheckedBeforeMutation(t *testing.T) {
	a := newTestAPI(t)
	_, ownerToken := a.signUp(t, "Ann", "ann@example.com")
	_, otherToken := a.signUp(t, "Bob", "bob@example.com")
	film := a.createFilm(t, ownerToken, "Heat")
	id := film["id"].(string)

	rec := a.do(t, http.MethodPatch, "/api/films/"+id, otherToken, map[string]any{"name": "Stolen"})
	if rec.Code != http.StatusConflict {
		t.Errorf("foreign update status = %d, want 409", rec.Code)
	}
	stored, err := a.services.Films.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("film gone after foreign update: %v", err)
	}
	if stored.Name != "Heat" {
		t.Errorf("foreign update changed name to %q", stored.Name)
	}

	rec = a.do(t, http.MethodDelete, "/api/films/"+id, otherToken, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("foreign delete status = %d, want 409", rec.Code)
	}
	if _, err := a.services.Films.FindByID(context.Background(), id); err != nil {
		t.Errorf("foreign delete removed the film: %v", err)
	}

	rec = a.do(t, http.MethodPatch, "/api/films/"+id, ownerToken, map[string]any{"name": "Heat (1995)"})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update status = %d, body %s", rec.Code, rec.Body)
	}
	if decode(t, rec)["name"] != "Heat (1995)" {
		t.Errorf("owner update body = %s", rec.Body)
	}
}

func TestDeleteFilmCascades(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.signUp(t, "Ann", "ann@example.com")
	_, bobToken := a.signUp(t, "Bob", "bob@example.com")
	_, eveToken := a.signUp(t, "Eve", "eve@example.com")
	id := a.createFilm(t, token, "Heat")["id"].(string)
	keptID := a.createFilm(t, token, "Collateral")["id"].(string)

	comments := []struct {
		token  string
		filmID string
	}{
		{bobToken, id}, {bobToken, id}, {eveToken, id}, {token, id},
		{eveToken, keptID},
	}
	for _, c := range comments {
		rec := a.do(t, http.MethodPost, "/api/comments/"+c.filmID, c.token, map[string]any{"text": "Brilliant shootout", "rating": 9})
		if rec.Code != http.StatusCreated {
			t.Fatalf("comment status = %d, body %s", rec.Code, rec.Body)
		}
	}
	fans := []string{token, bobToken, eveToken}
	for _, fan := range fans {
		for _, filmID := range []string{id, keptID} {
			if rec := a.do(t, http.MethodPost, "/api/favorites/"+filmID+"/1", fan, nil); rec.Code != http.StatusOK {
				t.Fatalf("favorite status = %d, body %s", rec.Code, rec.Body)
			}
		}
	}

	if rec := a.do(t, http.MethodDelete, "/api/films/"+id, token, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body)
	}

	ctx := context.Background()
	if left, _ := a.services.Comments.FindByFilmID(ctx, id); len(left) != 0 {
		t.Errorf("%d comments left after delete", len(left))
	}
	if kept, _ := a.services.Comments.FindByFilmID(ctx, keptID); len(kept) != 1 {
		t.Errorf("other film has %d comments, want 1", len(kept))
	}
	for _, fan := range fans {
		list := decodeList(t, a.do(t, http.MethodGet, "/api/favorites", fan, nil))
		if len(list) != 1 || list[0]["id"] != keptID {
			t.Errorf("favorites after delete = %v, want only %s", list, keptID)
		}
	}
	if rec := a.do(t, http.MethodGet, "/api/films/"+id, "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted film status = %d, want 404", rec.Code)
	}
}

func TestComments(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.signUp(t, "Ann", "ann@example.com")
	id := a.createFilm(t, token, "Heat")["id"].(string)

	if rec := a.do(t, http.MethodGet, "/api/comments/"+id, "", nil); rec.Code != http.StatusNoContent {
		t.Errorf("empty index status = %d, want 204", rec.Code)
	}

	for _, rating := range []int{8, 5} {
		rec := a.do(t, http.MethodPost, "/api/comments/"+id, token, map[string]any{"text": "Worth watching", "rating": rating})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create comment status = %d, body %s", rec.Code, rec.Body)
		}
		comment := decode(t, rec)
		if got, want := sortedKeys(comment), sortedNames(CommentShape.Names()); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("comment keys = %v, want %v", got, want)
		}
	}

	rec := a.do(t, http.MethodGet, "/api/comments/"+id, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	if comments := decodeList(t, rec); len(comments) != 2 {
		t.Errorf("got %d comments, want 2", len(comments))
	}

	film := decode(t, a.do(t, http.MethodGet, "/api/films/"+id, "", nil))
	if film["commentCount"] != float64(2) || film["rating"] != 6.5 {
		t.Errorf("commentCount = %v, rating = %v; want 2 and 6.5", film["commentCount"], film["rating"])
	}

	missing := uuid.NewString()
	rec = a.do(t, http.MethodPost, "/api/comments/"+missing, token, map[string]any{"text": "Worth watching", "rating": 7})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("comment on missing film status = %d, want 422", rec.Code)
	}
	rec = a.do(t, http.MethodPost, "/api/comments/"+id, token, map[string]any{"text": "Worth watching", "rating": 11})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range rating status = %d, want 400", rec.Code)
	}
}

func TestFavorites(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.signUp(t, "Ann", "ann@example.com")
	id := a.createFilm(t, token, "Heat")["id"].(string)
	_ = a.createFilm(t, token, "Collateral")

	rec := a.do(t, http.MethodPost, "/api/favorites/"+id+"/1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("set favorite status = %d, body %s", rec.Code, rec.Body)
	}
	if decode(t, rec)["isFavorite"] != true {
		t.Errorf("isFavorite not set: %s", rec.Body)
	}

	list := decodeList(t, a.do(t, http.MethodGet, "/api/favorites", token, nil))
	if len(list) != 1 || list[0]["id"] != id {
		t.Errorf("favorites = %v", list)
	}

	if show := decode(t, a.do(t, http.MethodGet, "/api/films/"+id, token, nil)); show["isFavorite"] != true {
		t.Errorf("film detail isFavorite = %v, want true", show["isFavorite"])
	}

	index := decodeList(t, a.do(t, http.MethodGet, "/api/films", token, nil))
	for _, f := range index {
		if want := f["id"] == id; f["isFavorite"] != want {
			t.Errorf("film %v isFavorite = %v, want %v", f["name"], f["isFavorite"], want)
		}
	}
	anonymous := decodeList(t, a.do(t, http.MethodGet, "/api/films", "", nil))
	for _, f := range anonymous {
		if f["isFavorite"] != false {
			t.Errorf("anonymous index marks %v as favorite", f["name"])
		}
	}

	if rec := a.do(t, http.MethodPost, "/api/favorites/"+id+"/2", token, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status value: status = %d, want 400", rec.Code)
	}
	rec = a.do(t, http.MethodPost, "/api/favorites/"+id+"/0", token, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["isFavorite"] != false {
		t.Errorf("unset favorite: status %d, body %s", rec.Code, rec.Body)
	}
	if rec := a.do(t, http.MethodGet, "/api/favorites", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous favorites status = %d, want 401", rec.Code)
	}
}

func TestFilmsByGenreAndPromo(t *testing.T) {
	a := newTestAPI(t)

	if rec := a.do(t, http.MethodGet, "/api/films/promo", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("promo on empty catalog status = %d, want 404", rec.Code)
	}

	_, token := a.signUp(t, "Ann", "ann@example.com")
	film := a.createFilm(t, token, "Heat")

	rec := a.do(t, http.MethodGet, "/api/films/promo", "", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["id"] != film["id"] {
		t.Errorf("promo: status %d, body %s", rec.Code, rec.Body)
	}

	rec = a.do(t, http.MethodGet, "/api/films/genre/crime", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("genre status = %d", rec.Code)
	}
	films := decodeList(t, rec)
	if len(films) != 1 {
		t.Fatalf("got %d crime films, want 1", len(films))
	}
	if got, want := sortedKeys(films[0]), sortedNames(FilmShape.Names()); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("card keys = %v, want %v", got, want)
	}

	if rec := a.do(t, http.MethodGet, "/api/films/genre/western", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown genre status = %d, want 400", rec.Code)
	}
	if rec := a.do(t, http.MethodGet, "/api/films/genre/drama", "", nil); rec.Code != http.StatusOK || len(decodeList(t, rec)) != 0 {
		t.Errorf("empty genre: status %d, body %s", rec.Code, rec.Body)
	}
	if rec := a.do(t, http.MethodGet, "/api/films?limit=abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}
