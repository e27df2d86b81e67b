package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "tripmind/backend/pkg/errors"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

// Store owns persistence of the User -> Location -> Preference graph:
// entity upsert, relationship creation, and the flat and contextual read
// projections. A session is acquired per logical operation and released on
// every exit path; write paths that read before writing run inside one
// managed transaction.
type Store struct {
	driver   neo4j.DriverWithContext
	resolver *ContextResolver
	logger   *zap.Logger
}

// NewStore creates a new preference graph store
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{
		driver:   driver,
		resolver: NewContextResolver(),
		logger:   logger.Get(),
	}
}

// Connect creates a Neo4j driver and verifies connectivity
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

// Close closes the Neo4j driver connection
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

const flatReadQuery = `
	MATCH (u:User {id: $userID})
	OPTIONAL MATCH (u)-[:HAS_PREFERENCE]->(p:Preference)
	RETURN u.budget AS budget, u.location AS location,
	       collect({type: p.type, intensity: p.intensity}) AS preferences
`

const flatWriteQuery = `
	MERGE (u:User {id: $userID})
	ON CREATE SET u.budget = $budget, u.location = $location
	ON MATCH SET u.budget = $budget, u.location = $location
	WITH u
	UNWIND $preferences AS pref
	MERGE (p:Preference {type: pref.type})
	ON CREATE SET p.intensity = pref.intensity
	ON MATCH SET p.intensity = pref.intensity
	MERGE (u)-[:HAS_PREFERENCE]->(p)
`

const locationUpsertQuery = `
	MERGE (u:User {id: $userID})
	MERGE (loc:Location {name: $location})
	MERGE (u)-[r:HAS_LOCATION]->(loc)
	SET r.updated_at = datetime($now)
`

const contextPreferenceQuery = `
	MATCH (loc:Location {name: $location})
	UNWIND $preferences AS pref
	MERGE (p:Preference {type: pref.type})
	ON CREATE SET p.intensity = pref.intensity
	ON MATCH SET p.intensity = COALESCE(pref.intensity, p.intensity)
	MERGE (loc)-[:HAS_PREFERENCE]->(p)
`

const contextualReadQuery = `
	MATCH (u:User {id: $userID})-[r:HAS_LOCATION]->(loc:Location)
	OPTIONAL MATCH (loc)-[:HAS_PREFERENCE]->(p:Preference)
	RETURN loc.name AS location, r.updated_at AS last_associated,
	       collect({type: p.type, intensity: p.intensity}) AS preferences
	ORDER BY last_associated DESC
`

// GetUserData returns the flat projection of a user profile. A user that was
// never written returns the all-unknown default, never an error.
func (s *Store) GetUserData(ctx context.Context, userID string) (*UserSnapshot, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	snapshot, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return s.readSnapshotTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return snapshot.(*UserSnapshot), nil
}

// readSnapshotTx fetches the flat snapshot within an existing transaction
func (s *Store) readSnapshotTx(ctx context.Context, tx neo4j.ManagedTransaction, userID string) (*UserSnapshot, error) {
	result, err := tx.Run(ctx, flatReadQuery, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("fetch user data", err)
	}

	if result.Next(ctx) {
		record := result.Record()
		return &UserSnapshot{
			UserID:      userID,
			Budget:      getStringFromRecordOr(record, "budget", DefaultBudget),
			Location:    getStringFromRecordOr(record, "location", DefaultLocation),
			Preferences: parsePreferenceList(record, "preferences"),
		}, nil
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("fetch user data", err)
	}

	return defaultSnapshot(userID), nil
}

// UpdateUserData merges a delta into the flat user profile and persists the
// result: the User node is upserted, every merged preference is upserted
// with its intensity unconditionally overwritten, and the merged snapshot is
// returned. Read, merge, and write happen in one transaction.
func (s *Store) UpdateUserData(ctx context.Context, userID string, delta UserDelta) (*UserSnapshot, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	merged, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		current, err := s.readSnapshotTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}

		snapshot := &UserSnapshot{
			UserID:   userID,
			Budget:   current.Budget,
			Location: current.Location,
		}
		if delta.Budget != nil {
			snapshot.Budget = *delta.Budget
		}
		if delta.Location != nil {
			snapshot.Location = *delta.Location
		}
		snapshot.Preferences = preferencesFromMap(
			MergePreferences(preferencesToMap(current.Preferences), delta.Preferences),
		)

		rows := make([]map[string]interface{}, 0, len(snapshot.Preferences))
		for _, p := range snapshot.Preferences {
			rows = append(rows, map[string]interface{}{
				"type":      p.Type,
				"intensity": p.Intensity,
			})
		}

		result, err := tx.Run(ctx, flatWriteQuery, map[string]interface{}{
			"userID":      userID,
			"budget":      snapshot.Budget,
			"location":    snapshot.Location,
			"preferences": rows,
		})
		if err != nil {
			return nil, apperrors.NewGraphQueryFailed("update user data", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, apperrors.NewGraphQueryFailed("update user data", err)
		}

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	snapshot := merged.(*UserSnapshot)
	s.logger.Info("User data updated",
		zap.String("user_id", userID),
		zap.Int("preferences", len(snapshot.Preferences)),
	)
	return snapshot, nil
}

// SaveUserDataWithContext persists preferences against a concrete location.
// When location is empty it is resolved from the user's location history;
// with no history the write fails with ErrNoLocationAvailable and nothing is
// mutated. The resolve and the write share one transaction, so a concurrent
// write cannot slip between the fallback read and the upsert.
//
// Within the location scope an already stored preference only changes
// intensity when the incoming intensity is non-null; the flat scope
// overwrites unconditionally. The two policies intentionally differ.
func (s *Store) SaveUserDataWithContext(ctx context.Context, userID, location string, preferences []PreferenceUpdate) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	resolved, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		effective, err := s.resolver.Resolve(ctx, tx, userID, location)
		if err != nil {
			return nil, err
		}

		// Nanosecond precision so back-to-back associations still order
		now := time.Now().UTC().Format(time.RFC3339Nano)
		result, err := tx.Run(ctx, locationUpsertQuery, map[string]interface{}{
			"userID":   userID,
			"location": effective,
			"now":      now,
		})
		if err != nil {
			return nil, apperrors.NewGraphQueryFailed("save location context", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, apperrors.NewGraphQueryFailed("save location context", err)
		}

		rows := updateRows(preferences)
		if len(rows) > 0 {
			result, err := tx.Run(ctx, contextPreferenceQuery, map[string]interface{}{
				"location":    effective,
				"preferences": rows,
			})
			if err != nil {
				return nil, apperrors.NewGraphQueryFailed("save contextual preferences", err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, apperrors.NewGraphQueryFailed("save contextual preferences", err)
			}
		}

		return effective, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Contextual preferences saved",
		zap.String("user_id", userID),
		zap.String("location", resolved.(string)),
		zap.Int("preferences", len(preferences)),
	)
	return nil
}

// GetContextualData returns the location-grouped projection of a user's
// preferences, most recently associated location first. A user with no
// locations yields an empty slice.
func (s *Store) GetContextualData(ctx context.Context, userID string) ([]LocationPreferences, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	data, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, contextualReadQuery, map[string]interface{}{
			"userID": userID,
		})
		if err != nil {
			return nil, apperrors.NewGraphQueryFailed("fetch contextual data", err)
		}

		grouped := []LocationPreferences{}
		for result.Next(ctx) {
			record := result.Record()
			grouped = append(grouped, LocationPreferences{
				Location:    getStringFromRecord(record, "location"),
				Preferences: parsePreferenceList(record, "preferences"),
			})
		}
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("fetch contextual data", err)
		}

		return grouped, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]LocationPreferences), nil
}
