package corpus

import (
	"math"
	"sort"
	"time"
)

// BM25Parameters tunes the BM25 ranking function (spec.md §4.8's optional
// supplementary scoring mode), adapted from the teacher's BM25 ranker.
type BM25Parameters struct {
	K1 float64
	B  float64
}

// DefaultBM25Parameters returns the conventional k1=1.2, b=0.75 tuning.
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{K1: 1.2, B: 0.75}
}

// DocumentStats is the corpus-wide statistics BM25 needs: each document's
// length (total term occurrences) and the corpus average.
type DocumentStats struct {
	Lengths    map[string]int
	AvgLength  float64
	TotalDocs  int
}

// ComputeDocumentStats derives DocumentStats from the ForwardIndex.
func ComputeDocumentStats(fi *ForwardIndex) DocumentStats {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	stats := DocumentStats{Lengths: make(map[string]int, len(fi.entries))}
	var total int
	for docID, entry := range fi.entries {
		length := 0
		for _, hits := range entry {
			length += len(hits)
		}
		stats.Lengths[docID] = length
		total += length
	}
	stats.TotalDocs = len(fi.entries)
	if stats.TotalDocs > 0 {
		stats.AvgLength = float64(total) / float64(stats.TotalDocs)
	}
	return stats
}

// termFrequency returns how many times wordID occurs in docID, from a
// posting list already loaded for that word.
func termFrequency(postings []Posting, docID string) int {
	for _, p := range postings {
		if p.DocID == docID {
			return len(p.Hits)
		}
	}
	return 0
}

func idf(totalDocs, docFreq int) float64 {
	if docFreq == 0 {
		return 0
	}
	return math.Log((float64(totalDocs-docFreq)+0.5)/(float64(docFreq)+0.5) + 1)
}

// SearchBM25 is the BM25-ranked counterpart to Search: same conjunction
// semantics over barrels, scored by BM25 (idf times saturated term
// frequency) instead of field weight plus proximity. docID resolution,
// pagination and tie-breaking match Search.
func (q *QueryEngine) SearchBM25(query string, page, limit int, params BM25Parameters, stats DocumentStats) (SearchResponse, error) {
	start := time.Now()
	if q.lexicon == nil || q.docs == nil {
		return SearchResponse{}, ErrNotInitialized
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	occurrences, _ := q.cfg.Tokenize(query, 0)
	var tokens []string
	for _, occ := range occurrences {
		tokens = append(tokens, occ.Token)
	}
	empty := func() SearchResponse {
		return SearchResponse{Page: page, Limit: limit, Tokens: tokens, TimeMs: time.Since(start).Milliseconds()}
	}

	if len(occurrences) == 0 || stats.TotalDocs == 0 {
		return empty(), nil
	}

	seen := make(map[string]struct{}, len(occurrences))
	type termPostings struct {
		postings []Posting
	}
	var terms []termPostings

	for _, occ := range occurrences {
		if _, dup := seen[occ.Token]; dup {
			continue
		}
		seen[occ.Token] = struct{}{}

		id, ok := q.lexicon.Lookup(occ.Token)
		if !ok {
			return empty(), nil
		}
		postings, err := q.shards.Lookup(id)
		if err != nil {
			return SearchResponse{}, err
		}
		if len(postings) == 0 {
			return empty(), nil
		}
		terms = append(terms, termPostings{postings: postings})
	}

	candidateDocs := make(map[string]struct{})
	for i, t := range terms {
		docSet := make(map[string]struct{}, len(t.postings))
		for _, p := range t.postings {
			docSet[p.DocID] = struct{}{}
		}
		if i == 0 {
			for d := range docSet {
				candidateDocs[d] = struct{}{}
			}
			continue
		}
		for d := range candidateDocs {
			if _, ok := docSet[d]; !ok {
				delete(candidateDocs, d)
			}
		}
	}

	scored := make([]SearchHit, 0, len(candidateDocs))
	for docID := range candidateDocs {
		dl := float64(stats.Lengths[docID])
		var score float64
		var wordCount int
		for _, t := range terms {
			tf := termFrequency(t.postings, docID)
			if tf == 0 {
				continue
			}
			wordCount += tf
			docFreq := len(t.postings)
			num := float64(tf) * (params.K1 + 1)
			denom := float64(tf) + params.K1*(1-params.B+params.B*dl/stats.AvgLength)
			score += idf(stats.TotalDocs, docFreq) * (num / denom)
		}
		rec, _ := q.docs.Get(docID)
		scored = append(scored, SearchHit{
			DocID:      docID,
			Score:      score,
			MatchType:  MatchExact,
			WordCount:  wordCount,
			Title:      rec.Title,
			Authors:    rec.Authors,
			Categories: rec.Categories,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].DocID < scored[j].DocID
	})

	total := len(scored)
	startIdx := (page - 1) * limit
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + limit
	if endIdx > total {
		endIdx = total
	}

	return SearchResponse{
		Hits:    scored[startIdx:endIdx],
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: endIdx < total,
		Tokens:  tokens,
		TimeMs:  time.Since(start).Milliseconds(),
	}, nil
}
