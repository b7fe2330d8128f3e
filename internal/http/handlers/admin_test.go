package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/domain/user"
	"github.com/chancity/tournamenthub/internal/http/handlers"
	"github.com/chancity/tournamenthub/internal/repo/memory"
	"github.com/chancity/tournamenthub/internal/security"
	"github.com/gin-gonic/gin"
)

func seededAdminRouter(t *testing.T) (*gin.Engine, registration.Registration) {
	t.Helper()

	repo := memory.NewRegistrationsRepo(nil)
	reg := registration.NewFromCreateRequest(registration.CreateRegistrationRequest{
		TeamName: "Falcons", Category: "U12", TeamSize: 7, ContactName: "Asha", Email: "asha@club.test",
	})
	if _, err := repo.Create(context.Background(), reg, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := handlers.NewAdminRegistrationsHandler(repo, nil)
	r := gin.New()
	r.GET("/registrations", h.List)
	r.GET("/registrations/:id", h.Get)
	r.PATCH("/registrations/:id", h.UpdateStatus)
	r.DELETE("/registrations/:id", h.Delete)
	r.GET("/stats", h.Stats)

	return r, reg
}

func TestAdminList_ETag(t *testing.T) {
	r, reg := seededAdminRouter(t)

	w := doJSON(r, http.MethodGet, "/registrations?page=1&limit=10&search=falc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []registration.Registration `json:"items"`
		Total int                         `json:"total"`
		Page  int                         `json:"page"`
		Limit int                         `json:"limit"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0].ID != reg.ID || resp.Limit != 10 {
		t.Fatalf("unexpected page: %+v", resp)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/registrations?page=1&limit=10&search=falc", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestAdminList_BadQuery(t *testing.T) {
	r, _ := seededAdminRouter(t)

	for _, q := range []string{"page=0", "limit=500", "status=lost", "limit=x"} {
		w := doJSON(r, http.MethodGet, "/registrations?"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestAdminUpdateDeleteStats(t *testing.T) {
	r, reg := seededAdminRouter(t)

	w := doJSON(r, http.MethodPatch, "/registrations/"+reg.ID, `{"status":"lost"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status: got %d", w.Code)
	}

	w = doJSON(r, http.MethodPatch, "/registrations/"+reg.ID, `{"status":"approved"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: got %d body=%s", w.Code, w.Body.String())
	}
	var updated registration.Registration
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Status != registration.StatusApproved {
		t.Fatalf("status not updated: %+v", updated)
	}

	w = doJSON(r, http.MethodGet, "/stats", "")
	var st registration.Stats
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Total != 1 || st.TotalPlayers != 7 || st.ByStatus[registration.StatusApproved] != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	w = doJSON(r, http.MethodDelete, "/registrations/"+reg.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/registrations/"+reg.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", w.Code)
	}
}

func TestSettingsHandler(t *testing.T) {
	h := handlers.NewSettingsHandler(fakeSettings{err: errors.New("db down")}, nil)
	r := gin.New()
	r.GET("/public", h.PublicStatus)
	r.GET("/settings", h.Get)
	r.PATCH("/settings", h.Update)

	w := doJSON(r, http.MethodGet, "/public", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"registration_open":true}` {
		t.Fatalf("store failure should report open: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/settings", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("admin get should surface the failure, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPatch, "/settings", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing registration_open: got %d", w.Code)
	}
}

type fakeUsers map[string]user.User

func (f fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := f[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type fakeIssuer struct{}

func (fakeIssuer) GenerateAccessToken(userID, email, role string) (string, error) {
	return "token-for-" + userID, nil
}

func (fakeIssuer) AccessTTL() time.Duration { return time.Hour }

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := fakeUsers{"admin@club.test": {ID: "u1", Email: "admin@club.test", PasswordHash: hash, Role: user.RoleAdmin}}

	h := handlers.NewAuthHandler(users, fakeIssuer{}, nil)
	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(r, http.MethodPost, "/login", `{"email":" Admin@Club.test ","password":"s3cret!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.AccessToken != "token-for-u1" || resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected login response: %+v", resp)
	}

	w = doJSON(r, http.MethodPost, "/login", `{"email":"admin@club.test","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: got %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/login", `{"email":"nobody@club.test","password":"s3cret!"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: got %d", w.Code)
	}
}
