package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"shopvoice/internal/config"
	"shopvoice/internal/handlers"
	"shopvoice/internal/middleware"
	"shopvoice/internal/models"
	"shopvoice/internal/testutil"
	"shopvoice/internal/upstream"
)

const testSecret = "test-webhook-secret"

func newTestServer(t *testing.T, shop *testutil.FakeShop) *Server {
	t.Helper()
	cfg := &config.Config{
		ShopURL:         "https://shop.example.com",
		WebhookSecret:   testSecret,
		SlowToolWarn:    time.Second,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tools := handlers.New(cfg, shop, config.DefaultHeuristics(), log)

	srv := New(cfg)
	srv.RegisterRoutes(tools, log)
	return srv
}

func signedPost(path, body string) *http.Request {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SignatureHeader, middleware.Sign([]byte(testSecret), []byte(body)))
	return req
}

func TestWebhookToolCallEnvelope(t *testing.T) {
	shop := &testutil.FakeShop{
		SearchResults: map[string][]int{"rtx 5070": {1}},
		Products: map[int]upstream.Product{
			1: testutil.Product(1, "Palit RTX 5070 GamingPro", "649.990000"),
		},
	}
	srv := newTestServer(t, shop)

	body := `{"message":{"type":"tool-calls","toolCalls":[` +
		`{"id":"call_1","function":{"name":"product_search","arguments":{"query":"rtx 5070"}}}]}}`

	resp, err := srv.App.Test(signedPost("/webhook", body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body: %s", resp.StatusCode, raw)
	}

	var reply models.WebhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if len(reply.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(reply.Results))
	}
	if reply.Results[0].ToolCallID != "call_1" {
		t.Errorf("toolCallId = %q, want call_1", reply.Results[0].ToolCallID)
	}

	// The result field is itself a JSON document.
	var tool models.ToolResponse
	if err := json.Unmarshal([]byte(reply.Results[0].Result), &tool); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if !tool.Success {
		t.Errorf("tool failed: %q", tool.Message)
	}
}

func TestWebhookMultipleToolCalls(t *testing.T) {
	shop := &testutil.FakeShop{
		Products: map[int]upstream.Product{7: testutil.Product(7, "Mouse Pad", "9.99")},
		Stock:    map[int]int{7: 4},
	}
	srv := newTestServer(t, shop)

	body := `{"message":{"type":"tool-calls","toolCalls":[` +
		`{"id":"call_a","function":{"name":"stock_check","arguments":{"product_id":7}}},` +
		`{"id":"call_b","function":{"name":"make_coffee","arguments":{}}}]}}`

	resp, err := srv.App.Test(signedPost("/webhook", body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var reply models.WebhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if len(reply.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(reply.Results))
	}

	// The unknown tool must still produce a well-formed per-call result.
	var second models.ToolResponse
	if err := json.Unmarshal([]byte(reply.Results[1].Result), &second); err != nil {
		t.Fatalf("unknown-tool result is not valid JSON: %v", err)
	}
	if second.Success {
		t.Error("unknown tool reported success")
	}
}

func TestWebhookAcksNonToolCallEvents(t *testing.T) {
	srv := newTestServer(t, &testutil.FakeShop{})

	body := `{"message":{"type":"status-update"}}`
	resp, err := srv.App.Test(signedPost("/webhook", body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 ack", resp.StatusCode)
	}
}

func TestWebhookRejectsUnsignedBody(t *testing.T) {
	srv := newTestServer(t, &testutil.FakeShop{})

	req, _ := http.NewRequest("POST", "/webhook", strings.NewReader(`{"message":{}}`))
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	srv := newTestServer(t, &testutil.FakeShop{})

	resp, err := srv.App.Test(signedPost("/webhook", `{"message":`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDirectToolPath(t *testing.T) {
	shop := &testutil.FakeShop{
		Products: map[int]upstream.Product{7: testutil.Product(7, "Mouse Pad", "9.99")},
		Stock:    map[int]int{7: 2},
	}
	srv := newTestServer(t, shop)

	resp, err := srv.App.Test(signedPost("/tools/stock_check", `{"product_id":7}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var tool models.ToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&tool); err != nil {
		t.Fatalf("decode tool response: %v", err)
	}
	if !tool.Success {
		t.Errorf("stock check failed: %q", tool.Message)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &testutil.FakeShop{})

	req, _ := http.NewRequest("GET", "/healthz", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
