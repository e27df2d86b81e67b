package adapter

import (
	"context"
	"testing"
)

func TestClient_ModelAccessors(t *testing.T) {
	client := NewClient("http://localhost:4000", "", "gpt-4o-mini")

	if client.Model() != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", client.Model())
	}

	client.SetModel("gpt-4o")
	if client.Model() != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", client.Model())
	}

	// Empty model is ignored
	client.SetModel("")
	if client.Model() != "gpt-4o" {
		t.Errorf("empty SetModel must be a no-op, got %q", client.Model())
	}
}

// TestClient_Complete requires a running OpenAI-compatible endpoint
func TestClient_Complete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client := NewClient("http://localhost:4000", "", "gpt-4o-mini")

	ctx := context.Background()
	response, err := client.Complete(ctx, "You are a helpful assistant.", "Say hello in one sentence.")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if response == "" {
		t.Error("Expected non-empty response content")
	}
}
