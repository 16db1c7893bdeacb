package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"rename_project","params":{"name":"Todo"},"id":7}`))
	require.NoError(t, err)
	require.Equal(t, "rename_project", req.Method)
	require.JSONEq(t, `{"name":"Todo"}`, string(req.Params))
	require.EqualValues(t, 7, req.ID)
}

func TestParseRequest_Rejects(t *testing.T) {
	_, err := ParseRequest(bytes.NewBufferString(`{"jsonrpc":`))
	require.ErrorIs(t, err, errParse)

	_, err = ParseRequest(bytes.NewBufferString(`{"jsonrpc":"1.0","method":"list_projects"}`))
	require.ErrorIs(t, err, errInvalidRequest)

	_, err = ParseRequest(bytes.NewBufferString(`{"jsonrpc":"2.0","id":1}`))
	require.ErrorIs(t, err, errInvalidRequest)
}

func decodeRecorder(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	require.Equal(t, 200, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteHandlerError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantData string
	}{
		{"unknown method", &codedErr{code: "UNKNOWN_METHOD"}, ErrMethodNotFound, "message for UNKNOWN_METHOD", "UNKNOWN_METHOD"},
		{"invalid input", &codedErr{code: "INVALID_INPUT"}, ErrInvalidParams, "message for INVALID_INPUT", "INVALID_INPUT"},
		{"invalid path", &codedErr{code: "INVALID_PATH"}, ErrInvalidParams, "message for INVALID_PATH", "INVALID_PATH"},
		{"domain error", &codedErr{code: "BUSY"}, ErrApplication, "message for BUSY", "BUSY"},
		{"uncoded", errors.New("boom"), ErrInternal, "boom", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteHandlerError(rec, 3, tt.err)

			resp := decodeRecorder(t, rec)
			require.NotNil(t, resp.Error)
			require.Equal(t, tt.wantCode, resp.Error.Code)
			require.Equal(t, tt.wantMsg, resp.Error.Message)
			if tt.wantData == "" {
				require.Nil(t, resp.Error.Data)
				return
			}
			data, ok := resp.Error.Data.(map[string]any)
			require.True(t, ok)
			require.Equal(t, tt.wantData, data["code"])
			require.Equal(t, "hint", data["recovery_hint"])
		})
	}
}
