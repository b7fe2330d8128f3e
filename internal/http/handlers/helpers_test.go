package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chancity/tournamenthub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Error     string          `json:"error"`
	Detail    json.RawMessage `json:"detail"`
	Timestamp string          `json:"timestamp"`
}

func (e errorBody) detailString(t *testing.T) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(e.Detail, &s); err != nil {
		t.Fatalf("detail is not a string: %s", e.Detail)
	}
	return s
}

func (e errorBody) detailList(t *testing.T) []handlers.ValidationDetail {
	t.Helper()
	var out []handlers.ValidationDetail
	if err := json.Unmarshal(e.Detail, &out); err != nil {
		t.Fatalf("detail is not a list: %s", e.Detail)
	}
	return out
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var out errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal error body: %v body=%s", err, w.Body.String())
	}
	if out.Timestamp == "" {
		t.Fatalf("error body must carry a timestamp: %s", w.Body.String())
	}
	return out
}

func findLoc(details []handlers.ValidationDetail, field string) (handlers.ValidationDetail, bool) {
	for _, d := range details {
		if len(d.Loc) == 2 && d.Loc[0] == "body" && d.Loc[1] == field {
			return d, true
		}
	}
	return handlers.ValidationDetail{}, false
}
