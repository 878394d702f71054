// Package parser classifies and normalizes memcheck-style diagnostic lines.
//
// Recognition is purely lexical: every check is a single left-to-right scan
// anchored at the start of the line, with no backtracking and no regular
// expressions. Duplicate detection depends on these rules being exact, so
// they must not be loosened without revisiting signature semantics.
package parser

import "strings"

// Category identifies the diagnostic family a line belongs to. Categories
// aid canonical differentiation and reporting; they do not define block
// boundaries.
type Category int

const (
	CategoryOther Category = iota
	CategoryInvalidAccess
	CategoryCondJump
	CategoryUninitialized
	CategoryLeak
	CategoryTermination
)

// String returns the category name used in summaries.
func (c Category) String() string {
	switch c {
	case CategoryInvalidAccess:
		return "invalid-access"
	case CategoryCondJump:
		return "cond-jump"
	case CategoryUninitialized:
		return "uninitialized"
	case CategoryLeak:
		return "leak"
	case CategoryTermination:
		return "termination"
	default:
		return "other"
	}
}

// categoryPhrases maps diagnostic phrases to categories. Order matters: the
// conditional-jump phrase also contains "uninitialised value", so it must be
// tested first.
var categoryPhrases = []struct {
	cat     Category
	phrases []string
}{
	{CategoryCondJump, []string{"Conditional jump or move"}},
	{CategoryUninitialized, []string{"uninitialised value", "uninitialized value"}},
	{CategoryInvalidAccess, []string{"Invalid read", "Invalid write", "Invalid free", "Mismatched free"}},
	{CategoryLeak, []string{"definitely lost", "indirectly lost", "possibly lost", "still reachable", "LEAK SUMMARY"}},
	{CategoryTermination, []string{"Process terminating"}},
}

// Classify returns the diagnostic category of a line.
func Classify(line string) Category {
	s := StripPrefix(line)
	for _, cp := range categoryPhrases {
		for _, phrase := range cp.phrases {
			if strings.Contains(s, phrase) {
				return cp.cat
			}
		}
	}
	return CategoryOther
}

// BlockStart reports whether the line opens a new diagnostic block: it must
// begin with a process-id bracket of the form ==<digits>== at column 0.
func BlockStart(line string) bool {
	return prefixLen(line) > 0
}

// StripPrefix removes the process-id bracket and any whitespace that follows
// it. Lines without the bracket are returned unchanged.
func StripPrefix(line string) string {
	return line[prefixLen(line):]
}

// prefixLen returns the length of the ==<digits>== bracket plus trailing
// whitespace, or 0 if the line does not start with the bracket.
func prefixLen(line string) int {
	if len(line) < 5 || line[0] != '=' || line[1] != '=' {
		return 0
	}
	i := 2
	for i < len(line) && isDigit(line[i]) {
		i++
	}
	if i == 2 || i+1 >= len(line) || line[i] != '=' || line[i+1] != '=' {
		return 0
	}
	i += 2
	for i < len(line) && isSpace(line[i]) {
		i++
	}
	return i
}

// isFrame reports whether the line is a stack-frame line: after prefix
// stripping and leading indentation it starts with the "at" or "by" token
// (optionally with a trailing colon) followed by whitespace. A block-start
// line is never also a frame line before stripping, so the two classes
// cannot collide.
func isFrame(line string) bool {
	_, _, ok := splitFrame(StripPrefix(line))
	return ok
}

// splitFrame splits a stripped line into its frame token and the remainder
// after the whitespace that follows the token.
func splitFrame(s string) (token, rest string, ok bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	s = s[i:]
	if len(s) < 3 {
		return "", "", false
	}
	token = s[:2]
	if token != "at" && token != "by" {
		return "", "", false
	}
	j := 2
	if s[j] == ':' {
		j++
	}
	if j >= len(s) || !isSpace(s[j]) {
		return "", "", false
	}
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	return token, s[j:], true
}

// isCountHeader reports whether the line contains a
// "<digits> bytes in <digits> blocks" header.
func isCountHeader(line string) bool {
	_, ok := countHeaderSpan(StripPrefix(line))
	return ok
}

// countSpan marks the two digit runs of a byte/block count header.
type countSpan struct {
	d1s, d1e int
	d2s, d2e int
}

// countHeaderSpan locates the first "<digits> bytes in <digits> blocks"
// occurrence. Digit runs may use comma grouping (e.g. "1,024").
func countHeaderSpan(s string) (countSpan, bool) {
	const mid = " bytes in "
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			continue
		}
		if i > 0 && (isDigit(s[i-1]) || s[i-1] == ',') {
			continue
		}
		e := digitRunEnd(s, i)
		if !strings.HasPrefix(s[e:], mid) {
			continue
		}
		j := e + len(mid)
		if j >= len(s) || !isDigit(s[j]) {
			continue
		}
		k := digitRunEnd(s, j)
		if !strings.HasPrefix(s[k:], " blocks") {
			continue
		}
		return countSpan{d1s: i, d1e: e, d2s: j, d2e: k}, true
	}
	return countSpan{}, false
}

// digitRunEnd returns the end of a digit run starting at i, allowing comma
// separators between digits.
func digitRunEnd(s string, i int) int {
	e := i
	for e < len(s) {
		switch {
		case isDigit(s[e]):
			e++
		case s[e] == ',' && e+1 < len(s) && isDigit(s[e+1]):
			e++
		default:
			return e
		}
	}
	return e
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isSpace covers horizontal and vertical whitespace.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return false
}
