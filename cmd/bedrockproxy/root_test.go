package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bedrockproxy/internal/config"
	"bedrockproxy/internal/httpapi"
	"bedrockproxy/internal/translate"
	"bedrockproxy/pkg/types"
)

func TestModelsCommandPrintsCatalogue(t *testing.T) {
	isolateHome(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"models"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "us.anthropic.claude-sonnet-4-5-20250929-v1:0\tClaude 3.5 Sonnet (v2)", lines[0])
}

func TestBuildHandlerWithoutOpenerIsNotReady(t *testing.T) {
	defer httpapi.SetLogger(zerolog.New(io.Discard))

	cfg := config.Default()
	cfg.DefaultModel = "anthropic.claude-3-haiku-20240307-v1:0"
	h, err := buildHandler(cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "us.anthropic.claude-sonnet-4-5-20250929-v1:0", translate.DefaultModelID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st types.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", st.DefaultModel)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Error: upstream client not initialized", rec.Body.String())
}

func TestBuildHandlerRejectsBadCatalogue(t *testing.T) {
	cfg := config.Default()
	cfg.Models = []types.Model{{ID: "m1"}, {ID: " m1 "}}
	_, err := buildHandler(cfg, nil, nil, zerolog.Nop())
	require.ErrorContains(t, err, "duplicate id")
}
