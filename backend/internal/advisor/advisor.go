package advisor

import (
	"context"

	"golang.org/x/sync/errgroup"
	"tripmind/backend/internal/extract"
	"tripmind/backend/internal/graph"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

// PreferenceStore is the graph surface the advisor drives
type PreferenceStore interface {
	GetUserData(ctx context.Context, userID string) (*graph.UserSnapshot, error)
	SaveUserDataWithContext(ctx context.Context, userID, location string, preferences []graph.PreferenceUpdate) error
	GetContextualData(ctx context.Context, userID string) ([]graph.LocationPreferences, error)
	LogInteraction(ctx context.Context, userID, message string) error
}

// CompletionClient generates the final natural-language reply
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userMsg string) (string, error)
}

// PreferenceExtractor turns free text into a structured delta
type PreferenceExtractor interface {
	Extract(ctx context.Context, message string, current *graph.UserSnapshot) (extract.Extraction, error)
}

// Advisor orchestrates a chat turn: extract preferences from the message,
// persist them against the effective location, then answer with the user's
// full contextual profile in view.
type Advisor struct {
	store     PreferenceStore
	llm       CompletionClient
	extractor PreferenceExtractor
	logger    *zap.Logger
}

// New creates a new advisor
func New(store PreferenceStore, llm CompletionClient, extractor PreferenceExtractor) *Advisor {
	return &Advisor{
		store:     store,
		llm:       llm,
		extractor: extractor,
		logger:    logger.Get(),
	}
}

// Chat processes one user message and returns the assistant's reply.
// A write that cannot determine a location fails with the store's
// ErrNoLocationAvailable, surfaced to the caller unchanged.
func (a *Advisor) Chat(ctx context.Context, userID, message string) (string, error) {
	snapshot, err := a.store.GetUserData(ctx, userID)
	if err != nil {
		return "", err
	}

	extraction, err := a.extractor.Extract(ctx, message, snapshot)
	if err != nil {
		return "", err
	}

	location := ""
	if extraction.Location != nil {
		location = *extraction.Location
	}
	if err := a.store.SaveUserDataWithContext(ctx, userID, location, extraction.Preferences); err != nil {
		return "", err
	}

	var contextual []graph.LocationPreferences
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contextual, err = a.store.GetContextualData(gctx, userID)
		return err
	})
	g.Go(func() error {
		return a.store.LogInteraction(gctx, userID, message)
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	reply, err := a.llm.Complete(ctx, advisorSystemPrompt, buildSuggestionPrompt(message, contextual))
	if err != nil {
		return "", err
	}

	a.logger.Info("Chat turn completed",
		zap.String("user_id", userID),
		zap.Int("locations", len(contextual)),
	)
	return reply, nil
}
