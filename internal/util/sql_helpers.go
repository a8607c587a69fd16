package util

import (
	"database/sql"
	"strings"
)

// NullStringToPtr converts sql.NullString to *string. NULL becomes nil.
func NullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// PtrToNullString converts *string to sql.NullString. nil becomes NULL; an
// empty string stays an empty (non-NULL) value.
func PtrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// LikeEscapeChar is the escape character paired with ContainsPattern. It is
// written as ESCAPE '!' in SQL because backslash literals differ between engines.
const LikeEscapeChar = "!"

// ContainsPattern builds a lower-cased LIKE pattern matching any value that
// contains term. LIKE metacharacters in term are escaped with LikeEscapeChar.
func ContainsPattern(term string) string {
	r := strings.NewReplacer(
		LikeEscapeChar, LikeEscapeChar+LikeEscapeChar,
		"%", LikeEscapeChar+"%",
		"_", LikeEscapeChar+"_",
	)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
