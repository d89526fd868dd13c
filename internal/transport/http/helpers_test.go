package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stagedoor/api/internal/domain"
)

// decodedEnvelope mirrors the response envelope with data left raw so each
// test can unmarshal it into the shape it expects.
type decodedEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Status struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"status"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) decodedEnvelope {
	t.Helper()
	var env decodedEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	if env.Status.Code != rec.Code {
		t.Errorf("envelope code = %d, HTTP status = %d, want equal", env.Status.Code, rec.Code)
	}
	return env
}

func withIdentity(r *http.Request, identity domain.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey{}, identity)
	return r.WithContext(ctx)
}

type stubVerifier struct {
	identity domain.Identity
	err      error
}

func (s stubVerifier) Verify(string) (domain.Identity, error) {
	return s.identity, s.err
}
