package brain

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnowledgeEntry is one static (title, keywords, answer) help triple. The
// knowledge base is data only; it is never mutated at runtime.
type KnowledgeEntry struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

//go:embed knowledge.yaml
var knowledgeYAML []byte

var knowledgeBase = mustLoadKnowledgeBase()

func mustLoadKnowledgeBase() []KnowledgeEntry {
	var doc struct {
		Entries []KnowledgeEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(knowledgeYAML, &doc); err != nil {
		panic(fmt.Sprintf("brain: embedded knowledge base is malformed: %v", err))
	}
	return doc.Entries
}

// KnowledgeBase returns the static help entries.
func KnowledgeBase() []KnowledgeEntry {
	return knowledgeBase
}

// Token-overlap scoring weights.
const (
	scoreTitleMatch   = 3
	scoreKeywordMatch = 2
	scoreAnswerMatch  = 1
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// normalizeText lower-cases, strips punctuation, and keeps tokens longer
// than two characters.
func normalizeText(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	var tokens []string
	for _, t := range strings.Fields(cleaned) {
		if len(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

type scoredEntry struct {
	entry KnowledgeEntry
	score int
	index int
}

// SearchKnowledgeBase scores every entry by token overlap against the query
// (title 3, keyword 2, answer 1, substring containment either direction) and
// returns up to maxResults top-scoring entries.
func SearchKnowledgeBase(query string, maxResults int) []KnowledgeEntry {
	queryTokens := normalizeText(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var results []scoredEntry
	for i, entry := range knowledgeBase {
		score := 0

		titleTokens := normalizeText(entry.Title)
		for _, q := range queryTokens {
			for _, t := range titleTokens {
				if strings.Contains(t, q) || strings.Contains(q, t) {
					score += scoreTitleMatch
				}
			}
		}

		for _, q := range queryTokens {
			for _, k := range entry.Keywords {
				if strings.Contains(k, q) || strings.Contains(q, k) {
					score += scoreKeywordMatch
				}
			}
		}

		answerTokens := normalizeText(entry.Answer)
		for _, q := range queryTokens {
			for _, a := range answerTokens {
				if strings.Contains(a, q) || strings.Contains(q, a) {
					score += scoreAnswerMatch
				}
			}
		}

		if score > 0 {
			results = append(results, scoredEntry{entry: entry, score: score, index: i})
		}
	}

	// Stable on base order for equal scores, so retrieval is reproducible
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	entries := make([]KnowledgeEntry, len(results))
	for i, r := range results {
		entries[i] = r.entry
	}
	return entries
}
