package sheets

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func publishRequest(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewPublisher()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestPublishEndpointRequiresCredentials(t *testing.T) {
	r := newTestRouter()

	body, contentType := publishRequest(t, map[string]string{
		"task":   "minutes",
		"result": `{"summary":"x"}`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublishEndpointRejectsErrorPayload(t *testing.T) {
	r := newTestRouter()

	body, contentType := publishRequest(t, map[string]string{
		"task":        "minutes",
		"result":      `{"error":"all models failed"}`,
		"credentials": `{"type":"service_account"}`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublishEndpointReturnsFailureMessage(t *testing.T) {
	r := newTestRouter()

	// Credentials that parse as JSON but are not a usable service account;
	// publishing must answer 200 with a message rather than an error status.
	body, contentType := publishRequest(t, map[string]string{
		"task":        "minutes",
		"result":      `{"summary":"x"}`,
		"credentials": `{"type":"unknown"}`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("message")) {
		t.Fatalf("expected failure message in body: %s", w.Body.String())
	}
}
