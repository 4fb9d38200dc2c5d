package model

import (
	"encoding/json"
	"testing"
)

func TestTwistResultValue(t *testing.T) {
	t.Run("twist object", func(t *testing.T) {
		r := TwistResult{Twist: &Twist{TwistIngredient: "Honey", Reason: "r", HowToUse: "h"}}
		v, err := r.Value()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"twist_ingredient":"Honey","reason":"r","how_to_use":"h"}`
		if string(v.([]byte)) != want {
			t.Fatalf("got %s, want %s", v, want)
		}
	})

	t.Run("error string", func(t *testing.T) {
		r := TwistResult{Err: "Generation error: boom"}
		v, err := r.Value()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(v.([]byte)) != `"Generation error: boom"` {
			t.Fatalf("got %s", v)
		}
	})

	t.Run("empty is null", func(t *testing.T) {
		v, err := TwistResult{}.Value()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != nil {
			t.Fatalf("expected nil, got %v", v)
		}
	})
}

func TestTwistResultScan(t *testing.T) {
	t.Run("twist object", func(t *testing.T) {
		var r TwistResult
		if err := r.Scan([]byte(`{"twist_ingredient":"Honey","reason":"r","how_to_use":"h"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Twist == nil || r.Twist.TwistIngredient != "Honey" {
			t.Fatalf("twist not decoded: %+v", r)
		}
		if r.Err != "" {
			t.Fatalf("unexpected error text: %q", r.Err)
		}
	})

	t.Run("error string", func(t *testing.T) {
		var r TwistResult
		if err := r.Scan(`"Generation error: boom"`); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Twist != nil {
			t.Fatalf("unexpected twist: %+v", r.Twist)
		}
		if r.Err != "Generation error: boom" {
			t.Fatalf("got %q", r.Err)
		}
	})

	t.Run("nil clears previous value", func(t *testing.T) {
		r := TwistResult{Err: "stale"}
		if err := r.Scan(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Twist != nil || r.Err != "" {
			t.Fatalf("expected empty result, got %+v", r)
		}
	})
}

func TestTwistResultJSONRoundTrip(t *testing.T) {
	original := TwistResult{Twist: &Twist{TwistIngredient: "Miso", Reason: "umami", HowToUse: "whisk into the broth"}}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded TwistResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Twist == nil || decoded.Twist.TwistIngredient != "Miso" {
		t.Fatalf("round trip lost twist: %+v", decoded)
	}

	var failed TwistResult
	if err := json.Unmarshal([]byte(`"Generation error: boom"`), &failed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if failed.Err != "Generation error: boom" {
		t.Fatalf("got %q", failed.Err)
	}

	empty, err := json.Marshal(TwistResult{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(empty) != "null" {
		t.Fatalf("expected null, got %s", empty)
	}
}
