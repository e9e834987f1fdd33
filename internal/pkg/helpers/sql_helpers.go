package helpers

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns user search input into an ILIKE pattern matching it anywhere.
// Wildcards typed by the user are matched literally.
func ContainsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
}

// NullIfEmpty returns nil for an empty string so optional text columns store NULL
func NullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// NullIfZero returns nil for a zero id so optional foreign keys store NULL
func NullIfZero(i int64) *int64 {
	if i == 0 {
		return nil
	}
	return &i
}
