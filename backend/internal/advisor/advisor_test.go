package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tripmind/backend/internal/extract"
	"tripmind/backend/internal/graph"
	apperrors "tripmind/backend/pkg/errors"
)

// Mock implementations for testing

type mockStore struct {
	snapshot   *graph.UserSnapshot
	contextual []graph.LocationPreferences
	saveErr    error

	savedLocation string
	savedPrefs    []graph.PreferenceUpdate
	logged        []string
}

func (m *mockStore) GetUserData(ctx context.Context, userID string) (*graph.UserSnapshot, error) {
	if m.snapshot != nil {
		return m.snapshot, nil
	}
	return &graph.UserSnapshot{
		UserID:      userID,
		Budget:      graph.DefaultBudget,
		Location:    graph.DefaultLocation,
		Preferences: []graph.Preference{},
	}, nil
}

func (m *mockStore) SaveUserDataWithContext(ctx context.Context, userID, location string, preferences []graph.PreferenceUpdate) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedLocation = location
	m.savedPrefs = preferences
	return nil
}

func (m *mockStore) GetContextualData(ctx context.Context, userID string) ([]graph.LocationPreferences, error) {
	return m.contextual, nil
}

func (m *mockStore) LogInteraction(ctx context.Context, userID, message string) error {
	m.logged = append(m.logged, message)
	return nil
}

type mockLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (m *mockLLM) Complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	m.lastPrompt = userMsg
	return m.reply, m.err
}

type mockExtractor struct {
	extraction extract.Extraction
	err        error
}

func (m *mockExtractor) Extract(ctx context.Context, message string, current *graph.UserSnapshot) (extract.Extraction, error) {
	return m.extraction, m.err
}

func strPtr(s string) *string { return &s }

func TestAdvisor_Chat(t *testing.T) {
	store := &mockStore{
		contextual: []graph.LocationPreferences{
			{Location: "Delhi", Preferences: []graph.Preference{
				{Type: "food", Intensity: "high"},
				{Type: "relaxation", Intensity: "moderate"},
			}},
		},
	}
	llm := &mockLLM{reply: "Try the street food near Chandni Chowk."}
	extractor := &mockExtractor{
		extraction: extract.Extraction{
			Location:    strPtr("Delhi"),
			Preferences: []graph.PreferenceUpdate{{Type: "food", Intensity: strPtr("high")}},
		},
	}

	a := New(store, llm, extractor)
	reply, err := a.Chat(context.Background(), "u1", "I love spicy food in Delhi")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if reply != "Try the street food near Chandni Chowk." {
		t.Errorf("unexpected reply: %q", reply)
	}
	if store.savedLocation != "Delhi" {
		t.Errorf("saved location = %q, want Delhi", store.savedLocation)
	}
	if len(store.logged) != 1 {
		t.Errorf("expected the interaction to be logged, got %v", store.logged)
	}
	if !strings.Contains(llm.lastPrompt, "At Delhi: food (high), relaxation (moderate)") {
		t.Errorf("contextual preferences missing from the reply prompt:\n%s", llm.lastPrompt)
	}
}

func TestAdvisor_Chat_NoExtractedLocation(t *testing.T) {
	store := &mockStore{}
	extractor := &mockExtractor{
		extraction: extract.Extraction{
			Preferences: []graph.PreferenceUpdate{{Type: "relaxation", Intensity: strPtr("moderate")}},
		},
	}

	a := New(store, &mockLLM{reply: "ok"}, extractor)
	if _, err := a.Chat(context.Background(), "u1", "I also love to relax"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	// Empty location hands resolution to the store's fallback chain
	if store.savedLocation != "" {
		t.Errorf("saved location = %q, want empty", store.savedLocation)
	}
	if len(store.savedPrefs) != 1 {
		t.Errorf("saved preferences = %v", store.savedPrefs)
	}
}

func TestAdvisor_Chat_NoLocationAvailablePropagates(t *testing.T) {
	store := &mockStore{saveErr: apperrors.NewNoLocationAvailable("u1")}
	extractor := &mockExtractor{extraction: extract.Extraction{Preferences: []graph.PreferenceUpdate{}}}

	a := New(store, &mockLLM{reply: "ok"}, extractor)
	_, err := a.Chat(context.Background(), "u1", "I love food")
	if err == nil {
		t.Fatal("expected the save failure to propagate")
	}
	if !apperrors.IsNoLocationAvailable(err) {
		t.Errorf("expected ErrNoLocationAvailable to stay identifiable, got %T: %v", err, err)
	}
	if len(store.logged) != 0 {
		t.Errorf("interaction must not be logged after a failed write, got %v", store.logged)
	}
}

func TestAdvisor_Chat_ExtractionErrorPropagates(t *testing.T) {
	store := &mockStore{}
	extractor := &mockExtractor{err: errors.New("model unreachable")}

	a := New(store, &mockLLM{reply: "ok"}, extractor)
	if _, err := a.Chat(context.Background(), "u1", "hello"); err == nil {
		t.Fatal("expected extraction failure to propagate")
	}
	if store.savedPrefs != nil {
		t.Error("nothing must be saved when extraction fails")
	}
}

func TestFormatContextual(t *testing.T) {
	got := formatContextual([]graph.LocationPreferences{
		{Location: "Rome", Preferences: []graph.Preference{{Type: "historical", Intensity: "high"}}},
		{Location: "Delhi", Preferences: nil},
	})

	want := "At Rome: historical (high)\nAt Delhi: "
	if got != want {
		t.Errorf("formatContextual = %q, want %q", got, want)
	}
}
