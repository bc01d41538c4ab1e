package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retail-pos/internal/core"
	"retail-pos/internal/gateway"

	"github.com/shopspring/decimal"
)

func TestGenerateQR(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate_qr" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"qr_string": "00020101021229...",
			"md5":       "abc123def456",
		})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "merchant-1", "secret-token", 2*time.Second)
	artifact, err := c.GenerateQR(context.Background(), decimal.NewFromFloat(27.5), "INV-2026-000042")
	if err != nil {
		t.Fatalf("GenerateQR failed: %v", err)
	}

	if artifact.Payload != "00020101021229..." || artifact.ConfirmationKey != "abc123def456" {
		t.Errorf("Unexpected artifact: %+v", artifact)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Expected bearer token header, got %q", gotAuth)
	}
	if gotBody["merchant_id"] != "merchant-1" {
		t.Errorf("Expected merchant_id merchant-1, got %q", gotBody["merchant_id"])
	}
	if gotBody["amount"] != "27.50" {
		t.Errorf("Expected amount 27.50 (two fixed decimals), got %q", gotBody["amount"])
	}
	if gotBody["bill_number"] != "INV-2026-000042" {
		t.Errorf("Expected bill number INV-2026-000042, got %q", gotBody["bill_number"])
	}
}

func TestGenerateQR_EmptyArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "m", "", 2*time.Second)
	_, err := c.GenerateQR(context.Background(), decimal.NewFromInt(10), "INV-2026-000001")
	if !errors.Is(err, core.ErrGatewayUnavailable) {
		t.Fatalf("Expected ErrGatewayUnavailable for empty artifact, got %v", err)
	}
}

func TestGenerateQR_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "m", "", 2*time.Second)
	_, err := c.GenerateQR(context.Background(), decimal.NewFromInt(10), "INV-2026-000001")
	if !errors.Is(err, core.ErrGatewayUnavailable) {
		t.Fatalf("Expected ErrGatewayUnavailable on 500, got %v", err)
	}
}

func TestGenerateQR_Unreachable(t *testing.T) {
	// A closed server yields a transport error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := gateway.New(srv.URL, "m", "", time.Second)
	_, err := c.GenerateQR(context.Background(), decimal.NewFromInt(10), "INV-2026-000001")
	if !errors.Is(err, core.ErrGatewayUnavailable) {
		t.Fatalf("Expected ErrGatewayUnavailable on transport failure, got %v", err)
	}
}

func TestCheckConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/check_transaction_by_md5" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["md5"] != "abc123" {
			t.Errorf("Expected md5 abc123, got %q", body["md5"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responseCode": 0,
			"hash":         "abc123",
			"externalRef":  "FT2026123456",
		})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "m", "", 2*time.Second)
	status, err := c.CheckConfirmation(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("CheckConfirmation failed: %v", err)
	}
	if !status.Acknowledged {
		t.Error("Expected acknowledged on responseCode 0")
	}
	if status.ExternalRef != "FT2026123456" {
		t.Errorf("Expected external ref FT2026123456, got %q", status.ExternalRef)
	}
}

func TestCheckConfirmation_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"responseCode": 1})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "m", "", 2*time.Second)
	status, err := c.CheckConfirmation(context.Background(), "missing")
	if err != nil {
		t.Fatalf("CheckConfirmation failed: %v", err)
	}
	if status.Acknowledged {
		t.Error("Expected not acknowledged on non-zero responseCode")
	}
}
