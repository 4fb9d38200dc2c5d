package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTwistServer(t *testing.T, handler http.HandlerFunc) *TwistService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	t.Setenv("DEEPSEEK_API_KEY", "dummy")
	t.Setenv("DEEPSEEK_API_URL", ts.URL)

	svc, err := NewTwistService()
	if err != nil {
		t.Fatalf("failed to create twist service: %v", err)
	}
	return svc
}

func TestNewTwistServiceRequiresKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY_FILE", "")

	if _, err := NewTwistService(); err == nil {
		t.Fatal("expected error when no API key is configured")
	}
}

func TestNewTwistServiceReadsKeyFile(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(keyFile, []byte("secret-key\n"), 0o600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY_FILE", keyFile)

	svc, err := NewTwistService()
	if err != nil {
		t.Fatalf("failed to create twist service: %v", err)
	}
	if svc.apiKey != "secret-key" {
		t.Fatalf("expected trimmed key from file, got %q", svc.apiKey)
	}
}

func TestGenerateTwistSuccess(t *testing.T) {
	svc := newTwistServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"twist_ingredient\":\"Honey\",\"reason\":\"Balances the acidity\",\"how_to_use\":\"Drizzle before serving\"}"}}]}`)
	})

	twist, err := svc.GenerateTwist(context.Background(), "Pizza", []string{"Salt", "Tomato"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if twist.TwistIngredient != "Honey" {
		t.Fatalf("expected Honey, got %q", twist.TwistIngredient)
	}
	if twist.Reason == "" || twist.HowToUse == "" {
		t.Fatalf("expected all fields populated, got %+v", twist)
	}
}

func TestGenerateTwistPromptCarriesRecipeState(t *testing.T) {
	var captured Request
	svc := newTwistServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"twist_ingredient\":\"Miso\",\"reason\":\"r\",\"how_to_use\":\"h\"}"}}]}`)
	})

	if _, err := svc.GenerateTwist(context.Background(), "Chicken Soup", []string{"Chicken Breast", "Carrot"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var userPrompt string
	for _, m := range captured.Messages {
		if m.Role == "user" {
			userPrompt = m.Content
		}
	}
	if !strings.Contains(userPrompt, "Chicken Soup") {
		t.Fatalf("prompt missing recipe name: %s", userPrompt)
	}
	if !strings.Contains(userPrompt, "Chicken Breast, Carrot") {
		t.Fatalf("prompt missing ingredient list: %s", userPrompt)
	}
	if captured.ResponseFormat["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured.ResponseFormat)
	}
}

func TestGenerateTwistAPIError(t *testing.T) {
	svc := newTwistServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := svc.GenerateTwist(context.Background(), "Pizza", nil); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestGenerateTwistMalformedContent(t *testing.T) {
	svc := newTwistServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"not json at all"}}]}`)
	})

	if _, err := svc.GenerateTwist(context.Background(), "Pizza", nil); err == nil {
		t.Fatal("expected error for malformed twist content")
	}
}

func TestGenerateTwistMissingRequiredField(t *testing.T) {
	svc := newTwistServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"reason\":\"r\"}"}}]}`)
	})

	if _, err := svc.GenerateTwist(context.Background(), "Pizza", nil); err == nil {
		t.Fatal("expected error when twist_ingredient is empty")
	}
}

func TestGenerateTwistNoChoices(t *testing.T) {
	svc := newTwistServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[]}`)
	})

	if _, err := svc.GenerateTwist(context.Background(), "Pizza", nil); err == nil {
		t.Fatal("expected error when API returns no choices")
	}
}
