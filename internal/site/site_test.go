package site_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chancity/tournamenthub/internal/backend"
	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/site"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBackend struct {
	open      bool
	statusErr error
	healthErr error

	result backend.Result
	// when set, Submit blocks until it is closed
	gate <-chan struct{}
	// signalled once Submit has started
	started chan struct{}

	calls atomic.Int32
	mu    sync.Mutex
	last  registration.CreateRegistrationRequest
}

func (f *fakeBackend) Submit(_ context.Context, req registration.CreateRegistrationRequest) backend.Result {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.result
}

func (f *fakeBackend) RegistrationOpen(context.Context) (bool, error) {
	return f.open, f.statusErr
}

func (f *fakeBackend) Health(context.Context) error { return f.healthErr }

func newSite(fb *fakeBackend) *gin.Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{AppName: "test", Debug: true}
	return site.NewRouter(log, cfg, site.Deps{Backend: fb})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func postForm(r http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validForm(token string) url.Values {
	return url.Values{
		"formToken":   {token},
		"teamName":    {"  Thunder Bolts "},
		"category":    {"Corporate"},
		"teamSize":    {"8"},
		"contactName": {"Asha Rao"},
		"email":       {"asha@example.com"},
		"phone":       {"+91 98765 43210"},
		"terms":       {"on"},
	}
}

func TestStaticPages(t *testing.T) {
	r := newSite(&fakeBackend{open: true})

	for _, path := range []string{"/", "/about", "/tournaments", "/contact", "/static/site.css"} {
		w := get(r, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := get(r, "/")
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "form-action 'self'") {
		t.Fatalf("site csp missing, got %q", csp)
	}

	if w := get(r, "/nope"); w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Page not found") {
		t.Fatalf("expected 404 page, got %d", w.Code)
	}
}

func TestRegisterPage_OpenShowsForm(t *testing.T) {
	w := get(newSite(&fakeBackend{open: true}), "/register")

	body := w.Body.String()
	if !strings.Contains(body, `id="tournamentRegistration"`) || !strings.Contains(body, `name="formToken"`) {
		t.Fatalf("expected the form, got %s", body)
	}
	if strings.Contains(body, "REGISTRATIONS CLOSED") {
		t.Fatalf("closed notice shown while open")
	}
}

func TestRegisterPage_ClosedShowsNotice(t *testing.T) {
	w := get(newSite(&fakeBackend{open: false}), "/register")

	body := w.Body.String()
	if !strings.Contains(body, "REGISTRATIONS CLOSED") {
		t.Fatalf("expected closed notice")
	}
	if strings.Contains(body, `id="tournamentRegistration"`) {
		t.Fatalf("form must not render while closed")
	}
}

func TestRegisterPage_StatusErrorTreatedAsOpen(t *testing.T) {
	w := get(newSite(&fakeBackend{open: false, statusErr: errors.New("dial tcp: refused")}), "/register")

	if !strings.Contains(w.Body.String(), `id="tournamentRegistration"`) {
		t.Fatalf("expected the form when the status check fails")
	}
}

func TestSubmit_SuccessResetsForm(t *testing.T) {
	fb := &fakeBackend{
		open:   true,
		result: backend.Result{Kind: backend.Success, RegistrationID: "3f2a9c1e-0000", Message: "Registration submitted successfully"},
	}
	r := newSite(fb)

	w := postForm(r, "/register", validForm("tok-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<code>3F2A9C1E</code>") {
		t.Fatalf("expected short registration id, got %s", body)
	}
	if strings.Contains(body, "Thunder Bolts") {
		t.Fatalf("form should be reset after success")
	}
	if strings.Contains(body, `value="tok-1"`) {
		t.Fatalf("a fresh form token is expected after success")
	}
	if fb.last.TeamName != "Thunder Bolts" || !fb.last.TermsAccepted || fb.last.TeamSize != 8 {
		t.Fatalf("unexpected submission: %+v", fb.last)
	}
}

func TestSubmit_FailureKeepsInputAndListsErrors(t *testing.T) {
	fb := &fakeBackend{
		open: true,
		result: backend.Result{
			Kind:      backend.Failure,
			ErrorKind: backend.ErrorValidation,
			Errors:    []string{"Email: invalid format", "Team name: Field required"},
		},
	}

	w := postForm(newSite(fb), "/register", validForm("tok-2"))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := w.Body.String()
	first := strings.Index(body, "<li>Email: invalid format</li>")
	second := strings.Index(body, "<li>Team name: Field required</li>")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("errors missing or out of order: %s", body)
	}
	if !strings.Contains(body, `value="Thunder Bolts"`) || !strings.Contains(body, `value="tok-2"`) {
		t.Fatalf("input should be preserved")
	}
}

func TestSubmit_NetworkErrorShowsFixedMessage(t *testing.T) {
	fb := &fakeBackend{
		open: true,
		result: backend.Result{
			Kind:      backend.Failure,
			ErrorKind: backend.ErrorNetwork,
			Errors:    []string{backend.NetworkErrorMessage},
		},
	}

	w := postForm(newSite(fb), "/register", validForm("tok-3"))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Network error. Please check your connection and try again.") {
		t.Fatalf("expected network message")
	}
}

func TestSubmit_InvalidContactSkipsBackend(t *testing.T) {
	fb := &fakeBackend{open: true}

	values := validForm("tok-4")
	values.Set("email", "not-an-email")

	w := postForm(newSite(fb), "/register", values)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email: Please enter a valid email address") {
		t.Fatalf("expected contact validation message")
	}
	if fb.calls.Load() != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestSubmit_DuplicateTokenRejectedWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	fb := &fakeBackend{
		open:    true,
		gate:    gate,
		started: make(chan struct{}, 1),
		result:  backend.Result{Kind: backend.Success, RegistrationID: "abcdef123"},
	}
	r := newSite(fb)

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		firstDone <- postForm(r, "/register", validForm("same"))
	}()

	select {
	case <-fb.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the backend")
	}

	w := postForm(r, "/register", validForm("same"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", w.Code)
	}

	close(gate)
	first := <-firstDone
	if first.Code != http.StatusOK {
		t.Fatalf("first submission: expected 200, got %d", first.Code)
	}
	if fb.calls.Load() != 1 {
		t.Fatalf("expected one backend call, got %d", fb.calls.Load())
	}

	// the token is free again once the first call finished
	fb.gate = nil
	fb.started = nil
	if w := postForm(r, "/register", validForm("same")); w.Code != http.StatusOK {
		t.Fatalf("expected token to be released, got %d", w.Code)
	}
}

func TestContact(t *testing.T) {
	r := newSite(&fakeBackend{open: true})

	w := postForm(r, "/contact", url.Values{"name": {"Ravi"}, "email": {"bad"}, "message": {"hi"}})
	if w.Code != http.StatusUnprocessableEntity || !strings.Contains(w.Body.String(), "Please enter a valid email address") {
		t.Fatalf("expected email error, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `value="Ravi"`) {
		t.Fatalf("contact input should be preserved")
	}

	w = postForm(r, "/contact", url.Values{"name": {"Ravi"}, "email": {"ravi@example.com"}, "message": {"hi"}})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Submission Successful!") {
		t.Fatalf("expected success, got %d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	if w := get(newSite(&fakeBackend{}), "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := get(newSite(&fakeBackend{healthErr: errors.New("down")}), "/readyz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRegisterFlow_EndToEndWithClient(t *testing.T) {
	var got map[string]any
	var forwarded string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = r.Header.Get("X-Forwarded-For")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"registration_id":"abcd1234-xxxx","message":"ok"}`))
	}))
	defer api.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := backend.New(api.URL, time.Second, backend.WithLogger(log))
	r := site.NewRouter(log, config.Config{AppName: "test", Debug: true}, site.Deps{Backend: client})

	w := postForm(r, "/register", url.Values{
		"teamName":    {"Alpha"},
		"category":    {"Open"},
		"teamSize":    {"5"},
		"contactName": {"Kiran"},
		"email":       {"kiran@example.com"},
		"phone":       {"9876543210"},
		"terms":       {"on"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<code>ABCD1234</code>") || !strings.Contains(body, ">ok<") {
		t.Fatalf("expected success view, got %s", body)
	}
	if strings.Contains(body, `value="Alpha"`) {
		t.Fatalf("form should be reset")
	}
	if got["team_size"] != float64(5) || got["terms_accepted"] != true || got["newsletter_subscribed"] != false {
		t.Fatalf("unexpected payload %#v", got)
	}
	// httptest.NewRequest comes from 192.0.2.1
	if forwarded != "192.0.2.1" {
		t.Fatalf("visitor address not forwarded, got %q", forwarded)
	}
}
