package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"shopvoice/internal/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signatureApp(secret string) *fiber.App {
	app := fiber.New()
	m := NewSignatureMiddleware(secret, discardLogger())
	app.Post("/webhook", m.Verify, func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestSignatureValid(t *testing.T) {
	app := signatureApp("topsecret")
	body := `{"message":{}}`

	req, _ := http.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set(SignatureHeader, Sign([]byte("topsecret"), []byte(body)))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSignatureMissing(t *testing.T) {
	app := signatureApp("topsecret")

	req, _ := http.NewRequest("POST", "/webhook", strings.NewReader("{}"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSignatureWrong(t *testing.T) {
	app := signatureApp("topsecret")
	body := `{"message":{}}`

	req, _ := http.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set(SignatureHeader, Sign([]byte("wrong-secret"), []byte(body)))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSignatureTamperedBody(t *testing.T) {
	app := signatureApp("topsecret")

	req, _ := http.NewRequest("POST", "/webhook", strings.NewReader(`{"tampered":true}`))
	req.Header.Set(SignatureHeader, Sign([]byte("topsecret"), []byte(`{"original":true}`)))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSignatureDisabledWithoutSecret(t *testing.T) {
	app := signatureApp("")

	req, _ := http.NewRequest("POST", "/webhook", strings.NewReader("{}"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 when verification is disabled", resp.StatusCode)
	}
}

func TestRateLimitRejectsWithRetryAfter(t *testing.T) {
	app := fiber.New()
	m := NewRateLimitMiddleware(ratelimit.New(2, time.Minute))
	app.Post("/webhook", m.Check, func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("POST", "/webhook", nil)
		req.Header.Set(ClientIDHeader, "assistant-1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	req, _ := http.NewRequest("POST", "/webhook", nil)
	req.Header.Set(ClientIDHeader, "assistant-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("over-limit request failed: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}

	// Another client is unaffected.
	req2, _ := http.NewRequest("POST", "/webhook", nil)
	req2.Header.Set(ClientIDHeader, "assistant-2")
	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("other-client request failed: %v", err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("other client status = %d, want 200", resp2.StatusCode)
	}
}
