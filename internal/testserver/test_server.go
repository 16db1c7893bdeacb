package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/lifecycle"
	"github.com/rpggio/codegenesis/internal/generation"
	"github.com/rpggio/codegenesis/internal/mcp"
	"github.com/rpggio/codegenesis/internal/metrics"
	"github.com/rpggio/codegenesis/internal/sqlite"
	"github.com/rpggio/codegenesis/internal/storage"
	"github.com/rpggio/codegenesis/internal/transport"
)

// TestServer is a fully wired HTTP server backed by in-memory SQLite and a
// fake chat completions upstream.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Manager  *lifecycle.Manager
	Metrics  *metrics.Metrics
	Upstream *Upstream
	Token    string
}

func New(t *testing.T, token string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	upstream := NewUpstream()
	upstreamServer := httptest.NewServer(upstream)

	m := metrics.New()
	generator := generation.New(generation.Config{
		BaseURL: upstreamServer.URL,
		APIKey:  "test-key",
	}, nil, m)
	manager := lifecycle.NewManager(
		storage.NewProjectStore(sqlite.NewKVStore(db), nil, m),
		generator,
		activity.NewService(sqlite.NewActivityRepository(db), nil),
		m,
		lifecycle.Config{SummarizeEvery: 1},
		nil,
	)
	manager.Init(context.Background())

	handler := mcp.NewHandler(manager)
	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		AuthEnabled:   token != "",
		AuthToken:     token,
		TransportMode: "http",
	})
	server := httptest.NewServer(transport.NewServer(transport.Options{
		RPC:       handler,
		Lifecycle: manager,
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			nil,
		),
		Metrics:   m.Handler(),
		AuthToken: token,
	}))

	t.Cleanup(func() {
		server.Close()
		upstreamServer.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Manager:  manager,
		Metrics:  m,
		Upstream: upstream,
		Token:    token,
	}
}

// Upstream is a fake OpenAI-compatible chat completions endpoint. Requests
// are classified as code generation (JSON response format), summarization
// (transcript input) or conversation.
type Upstream struct {
	mu       sync.Mutex
	reply    string
	summary  string
	files    map[string]string
	status   int
	requests int
}

func NewUpstream() *Upstream {
	return &Upstream{
		reply:   "What should the app do?",
		summary: "# Project\n\n## Core Features\n- TBD",
		files: map[string]string{
			"README.md":                 "# Generated",
			"backend/pom.xml":           "<project/>",
			"backend/src/main/App.java": "class App {}",
			"frontend/package.json":     "{}",
			"frontend/src/App.vue":      "<template><div/></template>",
			"frontend/src/main.js":      "import App from './App.vue'",
		},
		status: http.StatusOK,
	}
}

// SetReply sets the conversational reply.
func (u *Upstream) SetReply(reply string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reply = reply
}

// SetSummary sets the summarized requirements document.
func (u *Upstream) SetSummary(doc string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.summary = doc
}

// SetFiles sets the generated file set.
func (u *Upstream) SetFiles(files map[string]string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.files = files
}

// SetStatus makes every request fail with status when it is not 200.
func (u *Upstream) SetStatus(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
}

// Requests returns the number of requests served.
func (u *Upstream) Requests() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests
}

func (u *Upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat map[string]any `json:"response_format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	u.requests++
	status := u.status
	content := u.reply
	switch {
	case req.ResponseFormat != nil:
		data, _ := json.Marshal(map[string]any{"files": u.files})
		content = string(data)
	case len(req.Messages) > 0 && strings.HasPrefix(req.Messages[len(req.Messages)-1].Content, "Conversation:"):
		content = u.summary
	}
	u.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, `{"error":{"message":"upstream unavailable"}}`, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
	})
}
