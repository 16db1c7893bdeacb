package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var errUnauthorized = errors.New("unauthorized")

// openMethods complete the MCP handshake and never reach project state.
var openMethods = map[string]bool{
	"initialize": true,
	"ping":       true,
}

// authMiddleware requires the configured bearer token on every request
// except the handshake and notifications.
func authMiddleware(token string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if openMethods[method] || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}
			if err := checkBearer(req, token); err != nil {
				return nil, err
			}
			return next(ctx, method, req)
		}
	}
}

func checkBearer(req sdkmcp.Request, token string) error {
	extra := req.GetExtra()
	if extra == nil || extra.Header == nil {
		return fmt.Errorf("%w: missing headers", errUnauthorized)
	}
	presented, ok := strings.CutPrefix(extra.Header.Get("Authorization"), "Bearer ")
	presented = strings.TrimSpace(presented)
	if !ok || presented == "" {
		return fmt.Errorf("%w: missing bearer token", errUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
		return fmt.Errorf("%w: invalid bearer token", errUnauthorized)
	}
	return nil
}
