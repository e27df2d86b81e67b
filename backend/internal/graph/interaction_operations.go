package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "tripmind/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Interaction Operations
// ============================================================================

const logInteractionQuery = `
	MERGE (u:User {id: $userID})
	CREATE (i:Interaction {
		id: $interactionID,
		message: $message,
		timestamp: datetime($timestamp)
	})
	CREATE (i)-[:FROM_USER]->(u)
`

// LogInteraction records an incoming chat message against the user
func (s *Store) LogInteraction(ctx context.Context, userID, message string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	interactionID := uuid.New().String()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	_, err := session.Run(ctx, logInteractionQuery, map[string]interface{}{
		"userID":        userID,
		"interactionID": interactionID,
		"message":       message,
		"timestamp":     timestamp,
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("log interaction", err)
	}

	s.logger.Debug("Interaction logged",
		zap.String("user_id", userID),
		zap.String("interaction_id", interactionID),
	)
	return nil
}
