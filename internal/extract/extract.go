// Package extract isolates an executable SQL statement from free-form
// model output. The scanner is deliberately heuristic: model answers mix
// prose, fenced code blocks and bare statements, and a line-oriented
// state machine is easier to audit than a parser.
package extract

import (
	"strings"
	"unicode"
)

type scanState int

const (
	stateSearching scanState = iota
	stateInFence
	stateInBareSQL
)

// leadingKeywords mark the start of a bare SQL statement.
var leadingKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "WITH", "CREATE", "ALTER", "DROP",
}

// continuationKeywords keep an ambiguous line attached to the statement
// being collected.
var continuationKeywords = []string{
	"FROM", "WHERE", "JOIN", "GROUP BY", "ORDER BY", "HAVING", "UNION", "LIMIT",
}

// narrativePrefixes are lead-ins models put in front of a statement.
// Matched verbatim against the joined result.
var narrativePrefixes = []string{
	"Here's the SQL query:",
	"SQL Query:",
	"Query:",
	"The SQL query is:",
	"Let me run this query:",
}

const (
	fenceMarker = "```"
	sqlFence    = "```sql"
)

// Extract scans text for a single SQL statement and returns it normalized:
// joined, trimmed, narrative prefixes removed, and terminated with a
// semicolon. The second return is false when no statement could be
// confidently isolated. The first fenced block tagged sql wins over any
// bare statement; within bare mode, collection stops as soon as a line no
// longer looks like SQL.
func Extract(text string) (string, bool) {
	var collected []string
	state := stateSearching

scan:
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch state {
		case stateSearching:
			if strings.EqualFold(trimmed, sqlFence) {
				state = stateInFence
				continue
			}
			if startsWithKeyword(trimmed) {
				state = stateInBareSQL
				collected = append(collected, line)
			}

		case stateInFence:
			if trimmed == fenceMarker {
				break scan
			}
			collected = append(collected, line)

		case stateInBareSQL:
			if strings.EqualFold(trimmed, sqlFence) {
				// A tagged fence is the model's explicit answer; any bare
				// lines collected before it were lead-in, not the statement.
				collected = collected[:0]
				state = stateInFence
				continue
			}
			switch {
			case strings.HasSuffix(trimmed, ";"):
				collected = append(collected, line)
				break scan
			case trimmed == "" || strings.HasPrefix(trimmed, "--"):
				// Blank lines and comments stay part of the statement body.
				collected = append(collected, line)
			case containsContinuationKeyword(trimmed):
				collected = append(collected, line)
			case looksLikeProse(trimmed):
				break scan
			default:
				// Permissive default: keep ambiguous continuation lines.
				collected = append(collected, line)
			}
		}
	}

	if len(collected) == 0 {
		return "", false
	}

	sqlText := strings.TrimSpace(strings.Join(collected, "\n"))
	for _, prefix := range narrativePrefixes {
		if strings.HasPrefix(sqlText, prefix) {
			sqlText = strings.TrimSpace(strings.TrimPrefix(sqlText, prefix))
		}
	}
	if sqlText == "" {
		return "", false
	}
	if !strings.HasSuffix(strings.TrimRight(sqlText, " \t"), ";") {
		sqlText = strings.TrimRight(sqlText, " \t") + ";"
	}
	return sqlText, true
}

func startsWithKeyword(trimmed string) bool {
	upper := strings.ToUpper(trimmed)
	for _, keyword := range leadingKeywords {
		if strings.HasPrefix(upper, keyword) {
			return true
		}
	}
	return false
}

func containsContinuationKeyword(trimmed string) bool {
	upper := strings.ToUpper(trimmed)
	for _, keyword := range continuationKeywords {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// looksLikeProse reports whether a non-empty line has neither SQL
// punctuation nor purely alphanumeric content. Lines that are plain words
// with spaces slip through here and stay collected; that mirrors the
// permissive default and is covered in the tests.
func looksLikeProse(trimmed string) bool {
	if strings.ContainsAny(trimmed, `(),=<>'"`) {
		return false
	}
	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, trimmed)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
