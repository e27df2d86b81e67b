package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "tripmind/backend/pkg/errors"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

// ContextResolver determines the effective location for an incoming
// preference update when the caller did not supply one. Extraction from free
// text frequently omits the place name mid-conversation, so later deltas
// inherit the most recently associated location from earlier ones.
type ContextResolver struct {
	logger *zap.Logger
}

// NewContextResolver creates a new context resolver
func NewContextResolver() *ContextResolver {
	return &ContextResolver{
		logger: logger.Get(),
	}
}

const lastLocationQuery = `
	MATCH (u:User {id: $userID})-[r:HAS_LOCATION]->(loc:Location)
	RETURN loc.name AS location
	ORDER BY r.updated_at DESC
	LIMIT 1
`

// Resolve returns supplied unchanged when non-empty, otherwise the user's
// most recently associated location. A user with no location history fails
// with ErrNoLocationAvailable; a location is never invented.
//
// Resolve runs inside the caller's transaction so the fallback read and the
// write that follows it share a single transactional scope.
func (cr *ContextResolver) Resolve(ctx context.Context, tx neo4j.ManagedTransaction, userID, supplied string) (string, error) {
	if supplied != "" {
		return supplied, nil
	}

	result, err := tx.Run(ctx, lastLocationQuery, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return "", apperrors.NewGraphQueryFailed("resolve location", err)
	}

	if result.Next(ctx) {
		if location := getStringFromRecord(result.Record(), "location"); location != "" {
			cr.logger.Debug("Location resolved from history",
				zap.String("user_id", userID),
				zap.String("location", location),
			)
			return location, nil
		}
	}
	if err := result.Err(); err != nil {
		return "", apperrors.NewGraphQueryFailed("resolve location", err)
	}

	return "", apperrors.NewNoLocationAvailable(userID)
}
