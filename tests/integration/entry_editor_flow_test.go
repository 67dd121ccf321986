package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-journal/backend/internal/database"
	"github.com/folio-journal/backend/internal/editor"
	"github.com/folio-journal/backend/internal/entries"
	"github.com/folio-journal/backend/internal/server"
)

const (
	sessionSigningSecret = "integration-secret"
	jsonContentType      = "application/json"
)

func TestEntryAndEditorFlow(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite("file:integration?mode=memory&cache=shared", zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	entriesService, err := entries.NewService(entries.ServiceConfig{
		Database: db,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build entries service: %v", err)
	}
	registry, err := editor.NewRegistry(editor.RegistryConfig{
		IDProvider: editor.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build session registry: %v", err)
	}
	tokenIssuer := editor.NewTokenIssuer(editor.TokenIssuerConfig{
		SigningSecret: []byte(sessionSigningSecret),
		Issuer:        "folio-editor",
		Audience:      "folio-api",
		TokenTTL:      time.Hour,
	})

	handler, err := server.NewHTTPHandler(server.Dependencies{
		EntriesService: entriesService,
		Sessions:       registry,
		TokenManager:   tokenIssuer,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	createBody := map[string]any{
		"title":       "A day out",
		"author":      "Ada",
		"text":        "hello world",
		"text_format": "richtext",
	}
	created := postJSON(testContext, testServer.URL+"/api/entries", "", createBody, http.StatusCreated)
	entryID := int64(created["id"].(float64))

	opened := postJSON(testContext, testServer.URL+"/api/editor/sessions", "", map[string]any{
		"entry_id": entryID,
	}, http.StatusCreated)
	token := opened["token"].(string)
	if opened["text"] != "hello world" {
		testContext.Fatalf("unexpected session text: %v", opened["text"])
	}

	postJSON(testContext, testServer.URL+"/api/editor/session/tab", token, map[string]any{
		"tab": "text",
	}, http.StatusOK)
	postJSON(testContext, testServer.URL+"/api/editor/session/selection", token, map[string]any{
		"start_rune": 0,
		"end_rune":   5,
	}, http.StatusOK)
	formatted := postJSON(testContext, testServer.URL+"/api/editor/session/format", token, map[string]any{
		"kind": "bold",
	}, http.StatusOK)
	if formatted["text"] != "<b>hello</b> world" {
		testContext.Fatalf("unexpected formatted text: %v", formatted["text"])
	}

	postJSON(testContext, testServer.URL+"/api/editor/session/save", token, map[string]any{}, http.StatusOK)

	getResp, err := http.Get(fmt.Sprintf("%s/api/entries/%d", testServer.URL, entryID))
	if err != nil {
		testContext.Fatalf("get request failed: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected get status: %d", getResp.StatusCode)
	}
	raw, err := io.ReadAll(getResp.Body)
	if err != nil {
		testContext.Fatalf("failed to read response: %v", err)
	}
	var fetched map[string]any
	if err := json.Unmarshal(raw, &fetched); err != nil {
		testContext.Fatalf("failed to decode response: %v", err)
	}
	if fetched["text"] != "<b>hello</b> world" {
		testContext.Fatalf("expected persisted formatted text, got %v", fetched["text"])
	}
	if fetched["text_format"] != "richtext" {
		testContext.Fatalf("expected persisted format tag, got %v", fetched["text_format"])
	}
}

func postJSON(testContext *testing.T, url, token string, body map[string]any, expectedStatus int) map[string]any {
	testContext.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		testContext.Fatalf("failed to marshal body: %v", err)
	}
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		testContext.Fatalf("failed to build request: %v", err)
	}
	request.Header.Set("Content-Type", jsonContentType)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		testContext.Fatalf("request to %s failed: %v", url, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		testContext.Fatalf("failed to read response: %v", err)
	}
	if response.StatusCode != expectedStatus {
		testContext.Fatalf("unexpected status for %s: %d body %s", url, response.StatusCode, raw)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		testContext.Fatalf("failed to decode response from %s: %v", url, err)
	}
	return decoded
}
