package parser

import "strings"

// Placeholders substituted for volatile content during canonicalization.
// They are fixed strings so that semantically identical reports compare
// equal regardless of addresses, counts, or unresolved symbols.
const (
	placeholderCount      = "N"
	placeholderAddr       = "0x...."
	placeholderUnresolved = "???"
)

// Canonicalize normalizes a single line for signature comparison.
//
// The mapping is strictly one line in, one line out. The prefix bracket is
// always stripped. Unless verbose is set, volatile content is scrubbed:
// stack-frame lines lose their code address and source location, byte/block
// count headers lose their digits, hex addresses become a placeholder, and
// runs of three or more '?' collapse to a fixed marker. With verbose set
// only the prefix strip is performed.
func Canonicalize(line string, verbose bool) string {
	s := StripPrefix(line)
	if verbose {
		return s
	}
	if token, rest, ok := splitFrame(s); ok {
		return scrubFrame(token, rest)
	}
	s = replaceAddresses(s)
	s = replaceCounts(s)
	return collapseUnresolved(s)
}

// scrubFrame reduces a stack-frame line to its token and symbol name,
// dropping the leading "0x<hex>:" code address and a trailing
// "(file:line)" location.
func scrubFrame(token, rest string) string {
	if strings.HasPrefix(rest, "0x") {
		j := 2
		for j < len(rest) && isHex(rest[j]) {
			j++
		}
		if j > 2 && j < len(rest) && rest[j] == ':' {
			j++
			for j < len(rest) && isSpace(rest[j]) {
				j++
			}
			rest = rest[j:]
		}
	}
	if strings.HasSuffix(rest, ")") {
		if k := strings.LastIndex(rest, " ("); k >= 0 {
			rest = rest[:k]
		}
	}
	return token + " " + collapseUnresolved(rest)
}

// replaceAddresses substitutes every "0x<hex>" run with a fixed placeholder.
func replaceAddresses(s string) string {
	if !strings.Contains(s, "0x") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for p := 0; p < len(s); {
		if s[p] == '0' && p+2 < len(s) && s[p+1] == 'x' && isHex(s[p+2]) {
			q := p + 2
			for q < len(s) && isHex(s[q]) {
				q++
			}
			b.WriteString(placeholderAddr)
			p = q
			continue
		}
		b.WriteByte(s[p])
		p++
	}
	return b.String()
}

// replaceCounts substitutes the digit runs of a byte/block count header so
// differing counts do not defeat deduplication.
func replaceCounts(s string) string {
	sp, ok := countHeaderSpan(s)
	if !ok {
		return s
	}
	return s[:sp.d1s] + placeholderCount + s[sp.d1e:sp.d2s] + placeholderCount + s[sp.d2e:]
}

// collapseUnresolved replaces runs of three or more '?' with the fixed
// unresolved-symbol marker.
func collapseUnresolved(s string) string {
	if !strings.Contains(s, "???") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for p := 0; p < len(s); {
		if s[p] == '?' {
			q := p
			for q < len(s) && s[q] == '?' {
				q++
			}
			if q-p >= 3 {
				b.WriteString(placeholderUnresolved)
			} else {
				b.WriteString(s[p:q])
			}
			p = q
			continue
		}
		b.WriteByte(s[p])
		p++
	}
	return b.String()
}
