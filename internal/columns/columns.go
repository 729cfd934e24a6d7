package columns

import (
	"strings"
	"unicode"
)

// Normalize reduces a header or field name to its canonical token:
// lowercase letters and digits only.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// MatchKind tells which rule produced a match.
type MatchKind int

const (
	NoMatch MatchKind = iota
	Exact
	Substring
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Substring:
		return "substring"
	default:
		return "none"
	}
}

// Match is the outcome of matching one target against a header set.
type Match struct {
	Header string
	Kind   MatchKind
	// Ambiguous is set when more than one header satisfied the winning rule.
	Ambiguous bool
}

// Found reports whether a header was matched.
func (m Match) Found() bool { return m.Kind != NoMatch }

// Find picks the header best matching target. Exact canonical equality wins
// over containment in either direction. Within a rule, the header whose
// canonical token is closest in length to the target wins, then header order.
// Several exact hits do not fall through to the substring rule: the first
// one in header order is taken and the match is flagged Ambiguous.
// Headers and targets that normalize to "" never match.
func Find(target string, headers []string) Match {
	if m := findBy(Exact, target, headers); m.Found() {
		return m
	}
	return findBy(Substring, target, headers)
}

// FindAny matches several names for the same field. The exact rule is tried
// for every candidate, in order, before any substring match is considered,
// so an exact alias always beats a partial hit on an earlier candidate.
func FindAny(candidates []string, headers []string) Match {
	for _, kind := range []MatchKind{Exact, Substring} {
		for _, c := range candidates {
			if m := findBy(kind, c, headers); m.Found() {
				return m
			}
		}
	}
	return Match{}
}

// findBy applies a single rule.
func findBy(kind MatchKind, target string, headers []string) Match {
	want := Normalize(target)
	if want == "" {
		return Match{}
	}

	var hits []int
	for i, h := range headers {
		tok := Normalize(h)
		if tok == "" {
			continue
		}
		switch kind {
		case Exact:
			if tok == want {
				hits = append(hits, i)
			}
		case Substring:
			if tok != want && (strings.Contains(tok, want) || strings.Contains(want, tok)) {
				hits = append(hits, i)
			}
		}
	}
	if len(hits) == 0 {
		return Match{}
	}

	best := hits[0]
	if kind == Substring {
		bestDist := lenDistance(Normalize(headers[best]), want)
		for _, i := range hits[1:] {
			if d := lenDistance(Normalize(headers[i]), want); d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	return Match{Header: headers[best], Kind: kind, Ambiguous: len(hits) > 1}
}

func lenDistance(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}
