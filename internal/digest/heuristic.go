package digest

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{5,}\b`)

// companySuffixes mark words that usually end a company name.
var companySuffixes = []string{"inc", "corp", "llc", "labs"}

// stopwords excluded from topic frequency counting.
var stopwords = map[string]bool{
	"about": true, "there": true, "their": true, "would": true,
	"could": true, "should": true, "going": true, "really": true,
	"think": true, "thing": true, "things": true, "right": true,
	"because": true, "people": true, "where": true, "which": true,
	"these": true, "those": true,
}

// Heuristic extracts a digest with plain text analysis. It never fails,
// making it the guaranteed last link of the extractor chain.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Extract(ctx context.Context, transcript string) (*Digest, error) {
	return &Digest{
		KeyTopics: topWords(transcript, 5),
		Themes:    []string{"general discussion"},
		Quotes:    []string{},
		Companies: companyMentions(transcript),
		Summary:   "Summary generated by basic text analysis; no language model was reachable.",
	}, nil
}

// topWords returns the n most frequent alphabetic words of 5+ characters,
// ties broken alphabetically so output is deterministic.
func topWords(text string, n int) []string {
	counts := make(map[string]int)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if stopwords[word] {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// companyMentions finds two-word phrases whose second word carries a company
// suffix, plus bare suffix-carrying words, deduplicated in order of first
// appearance.
func companyMentions(text string) []string {
	words := strings.Fields(text)
	seen := make(map[string]bool)
	var companies []string
	for i, raw := range words {
		word := strings.ToLower(strings.Trim(raw, ".,!?;:\"'()"))
		if !hasCompanySuffix(word) {
			continue
		}
		name := word
		if i > 0 {
			prev := strings.Trim(words[i-1], ".,!?;:\"'()")
			if prev != "" {
				name = strings.ToLower(prev) + " " + word
			}
		}
		if !seen[name] {
			seen[name] = true
			companies = append(companies, name)
		}
	}
	if companies == nil {
		companies = []string{}
	}
	return companies
}

func hasCompanySuffix(word string) bool {
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}
