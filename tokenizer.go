package corpus

import "strings"

// Hit records one occurrence of a word at a position within a document.
// Position is a running counter across fields in canonical order (spec.md
// §3): every token encountered — including stopwords and short tokens —
// advances the counter, even though only accepted tokens produce a Hit.
type Hit struct {
	Position int
	Field    FieldCode
}

// tokenOccurrence is an intermediate (position, token) pair produced by
// Tokenize before the caller resolves tokens to WordIDs.
type tokenOccurrence struct {
	Position int
	Token    string
}

// Tokenize splits text into an ordered sequence of accepted (position,
// token) pairs. A candidate is emitted iff it is a maximal run of lowercase
// ASCII letters of length >= cfg.MinWordLength and not a stopword. Rejected
// candidates still advance startPos, since the position counter spans the
// whole tokenize call. Tokenize is total: it never errors.
func (cfg Config) Tokenize(text string, startPos int) ([]tokenOccurrence, int) {
	lower := strings.ToLower(text)
	pos := startPos
	var out []tokenOccurrence

	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		token := lower[runStart:end]
		if len(token) >= cfg.MinWordLength {
			if _, stop := cfg.StopWords[token]; !stop {
				out = append(out, tokenOccurrence{Position: pos, Token: token})
			}
		}
		pos++
		runStart = -1
	}

	for i, r := range lower {
		if r >= 'a' && r <= 'z' {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(lower))

	return out, pos
}

// TokenizeField tokenizes a single field's text, producing Hits at the
// field's own running position. startPos is the counter carried over from
// the previous field in canonical order; the returned position is the next
// field's starting counter.
func (cfg Config) TokenizeField(text string, field FieldCode, startPos int) ([]struct {
	Token string
	Hit   Hit
}, int) {
	occurrences, next := cfg.Tokenize(text, startPos)
	hits := make([]struct {
		Token string
		Hit   Hit
	}, len(occurrences))
	for i, occ := range occurrences {
		hits[i] = struct {
			Token string
			Hit   Hit
		}{Token: occ.Token, Hit: Hit{Position: occ.Position, Field: field}}
	}
	return hits, next
}

// DocumentFields is the canonical-order input to TokenizeDocument: the raw
// text of each field of a document, in spec.md §3's canonical order.
type DocumentFields struct {
	Title      string
	Abstract   string
	Categories string
	Authors    string
	Submitter  string
}

func (d DocumentFields) text(field FieldCode) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldAbstract:
		return d.Abstract
	case FieldCategories:
		return d.Categories
	case FieldAuthors:
		return d.Authors
	case FieldSubmitter:
		return d.Submitter
	default:
		return ""
	}
}

// TokenizeDocument walks CanonicalFieldOrder once, accumulating a single
// monotonic position counter across field boundaries, and returns every
// accepted (token, Hit) pair for the whole document. This is the position
// assembly spec.md §9 mandates: a single counter spanning field boundaries,
// not per-field text joined and re-tokenized.
func (cfg Config) TokenizeDocument(fields DocumentFields) []struct {
	Token string
	Hit   Hit
} {
	var all []struct {
		Token string
		Hit   Hit
	}
	pos := 0
	for _, field := range CanonicalFieldOrder {
		hits, next := cfg.TokenizeField(fields.text(field), field, pos)
		all = append(all, hits...)
		pos = next
	}
	return all
}
