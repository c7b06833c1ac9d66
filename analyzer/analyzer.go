// Package analyzer extracts topics, entities and cross-references from
// content elements. A single TextAnalyzer is shared by all chunking
// strategies, so the extraction heuristics live in one place.
package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sevigo/docchunk/schema"
)

const (
	topWordTopics   = 10
	topPhraseTopics = 5
	minTopicWordLen = 3
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
}

var (
	properNounRe = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*`)
	orgRe        = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Inc\.|LLC|Corp\.|Ltd\.|Company|Association)`)
	locationRe   = regexp.MustCompile(`(?:in|at|from|to)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)

	figureRefRe  = regexp.MustCompile(`(?:Figure|Fig\.?)\s+(\d+(?:\.\d+)*)`)
	tableRefRe   = regexp.MustCompile(`Table\s+(\d+(?:\.\d+)*)`)
	sectionRefRe = regexp.MustCompile(`Section\s+(\d+(?:\.\d+)*)`)
)

// TextAnalyzer implements the extraction heuristics. Instances are
// stateless after construction and safe for concurrent use.
type TextAnalyzer struct {
	folder cases.Caser
}

// NewTextAnalyzer creates a text analyzer.
func NewTextAnalyzer() *TextAnalyzer {
	return &TextAnalyzer{folder: cases.Fold()}
}

// Normalize casefolds a string and collapses internal whitespace. Used for
// comparisons such as TOC title matching.
func (a *TextAnalyzer) Normalize(s string) string {
	return strings.Join(strings.Fields(a.folder.String(s)), " ")
}

// Context extracts the boundary context (topics and entities) for a run of
// elements.
func (a *TextAnalyzer) Context(elements []schema.ContentElement) schema.Context {
	return schema.Context{
		Topics:   a.Topics(elements),
		Entities: a.Entities(elements),
	}
}

// Topics identifies the main topics of a run of elements: the most
// frequent non-stop-words plus the most frequent capitalized phrases.
// The result is sorted for deterministic output.
func (a *TextAnalyzer) Topics(elements []schema.ContentElement) []string {
	text := joinText(elements)
	if text == "" {
		return nil
	}

	wordFreq := make(map[string]int)
	for _, w := range strings.Fields(a.folder.String(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) <= minTopicWordLen-1 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		wordFreq[w]++
	}

	phraseFreq := make(map[string]int)
	for _, p := range properNounRe.FindAllString(text, -1) {
		phraseFreq[p]++
	}

	topics := make(map[string]struct{})
	for _, w := range topByFrequency(wordFreq, topWordTopics) {
		topics[w] = struct{}{}
	}
	for _, p := range topByFrequency(phraseFreq, topPhraseTopics) {
		topics[p] = struct{}{}
	}
	return sortedKeys(topics)
}

// Entities identifies named-entity candidates: proper-noun phrases,
// organization names, location mentions and reference targets.
func (a *TextAnalyzer) Entities(elements []schema.ContentElement) []string {
	entities := make(map[string]struct{})

	for _, e := range elements {
		switch {
		case e.IsTextual():
			for _, m := range properNounRe.FindAllString(e.Text, -1) {
				entities[m] = struct{}{}
			}
			for _, m := range orgRe.FindAllString(e.Text, -1) {
				entities[m] = struct{}{}
			}
			for _, m := range locationRe.FindAllStringSubmatch(e.Text, -1) {
				entities[m[1]] = struct{}{}
			}
		case e.Type == schema.ElementReference && e.Target != "":
			entities[e.Target] = struct{}{}
		}
	}
	return sortedKeys(entities)
}

// EntitiesFromText runs the entity heuristics over a single text block.
func (a *TextAnalyzer) EntitiesFromText(text string) []string {
	return a.Entities([]schema.ContentElement{{Type: schema.ElementText, Text: text}})
}

// References collects the reference elements of a run as outgoing
// reference entries. Classification into internal/incoming happens later,
// during post-processing.
func (a *TextAnalyzer) References(elements []schema.ContentElement) schema.ReferenceSet {
	var set schema.ReferenceSet
	for _, e := range elements {
		if e.Type != schema.ElementReference {
			continue
		}
		set.Outgoing = append(set.Outgoing, schema.Reference{
			ID:       e.ID,
			Target:   e.Target,
			Type:     e.RefType,
			Position: e.Position,
		})
	}
	return set
}

// TextReferences extracts textual figure, table and section references
// ("Figure 3.1", "Table 2", "Section 4.2") from a text block.
func (a *TextAnalyzer) TextReferences(text string) []schema.Reference {
	var refs []schema.Reference
	collect := func(re *regexp.Regexp, kind string) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			refs = append(refs, schema.Reference{Target: m[1], Type: kind})
		}
	}
	collect(figureRefRe, "figure")
	collect(tableRefRe, "table")
	collect(sectionRefRe, "section")
	return refs
}

func joinText(elements []schema.ContentElement) string {
	var parts []string
	for _, e := range elements {
		if e.IsTextual() && e.Text != "" {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, " ")
}

// topByFrequency returns up to n keys ordered by descending count, ties
// broken alphabetically so results are stable.
func topByFrequency(freq map[string]int, n int) []string {
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
