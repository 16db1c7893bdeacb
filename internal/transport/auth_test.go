package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware("secret")(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestHTTPServer_AuthGuardsRPC(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{RPC: &testHandler{}, Lifecycle: newFakeLifecycle(), AuthToken: "secret"}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, "", `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postRPC(t, server.URL, "secret", `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
