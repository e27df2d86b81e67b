package graph

import "sort"

// MergePreferences combines existing stored preferences with an incoming
// delta. Right-biased union: each incoming entry overwrites the stored
// intensity for its type, entries not mentioned in the delta are preserved
// unchanged, and the last entry per type within one delta wins. Reapplying
// the same delta yields the same result.
//
// An incoming nil intensity is written as empty here; the null-preserving
// behavior of the location scope is applied in Cypher at persistence time,
// not during this merge.
func MergePreferences(existing map[string]string, incoming []PreferenceUpdate) map[string]string {
	merged := make(map[string]string, len(existing)+len(incoming))
	for t, intensity := range existing {
		merged[t] = intensity
	}
	for _, pref := range incoming {
		if pref.Type == "" {
			continue
		}
		if pref.Intensity != nil {
			merged[pref.Type] = *pref.Intensity
		} else {
			merged[pref.Type] = ""
		}
	}
	return merged
}

// preferencesToMap indexes a stored preference list by type
func preferencesToMap(prefs []Preference) map[string]string {
	m := make(map[string]string, len(prefs))
	for _, p := range prefs {
		m[p.Type] = p.Intensity
	}
	return m
}

// preferencesFromMap flattens a merge result back into a list, sorted by
// type so snapshots are stable across calls
func preferencesFromMap(m map[string]string) []Preference {
	types := make([]string, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	sort.Strings(types)

	prefs := make([]Preference, 0, len(types))
	for _, t := range types {
		prefs = append(prefs, Preference{Type: t, Intensity: m[t]})
	}
	return prefs
}

// updateRows converts delta entries into Cypher UNWIND rows. A nil intensity
// becomes a null parameter so COALESCE can keep the stored value.
func updateRows(prefs []PreferenceUpdate) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(prefs))
	for _, p := range prefs {
		if p.Type == "" {
			continue
		}
		var intensity interface{}
		if p.Intensity != nil {
			intensity = *p.Intensity
		}
		rows = append(rows, map[string]interface{}{
			"type":      p.Type,
			"intensity": intensity,
		})
	}
	return rows
}
