package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getStringFromRecordOr(record *neo4j.Record, key, defaultValue string) string {
	if str := getStringFromRecord(record, key); str != "" {
		return str
	}
	return defaultValue
}

func getStringFromMap(m map[string]interface{}, key string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// parsePreferenceList converts a collected Cypher list of
// {type, intensity} maps into stored preferences. Entries with an empty type
// are skipped: an OPTIONAL MATCH with no preferences collects a single
// all-null map.
func parsePreferenceList(record *neo4j.Record, key string) []Preference {
	prefs := []Preference{}
	val, ok := record.Get(key)
	if !ok || val == nil {
		return prefs
	}
	list, ok := val.([]interface{})
	if !ok {
		return prefs
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		prefType := getStringFromMap(m, "type")
		if prefType == "" {
			continue
		}
		prefs = append(prefs, Preference{
			Type:      prefType,
			Intensity: getStringFromMap(m, "intensity"),
		})
	}
	return prefs
}
