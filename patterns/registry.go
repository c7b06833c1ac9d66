// Package patterns provides weighted regular-expression matching over text
// blocks: chapter and section boundary detection, non-content filtering and
// simple narrative-flow scoring used by the chunking strategies.
package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// ErrInvalidPattern is returned when a pattern expression does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

// Registry holds named, weighted patterns. It is safe for concurrent reads
// after construction; registration normally happens once at setup.
type Registry struct {
	mu       sync.RWMutex
	patterns map[string]weightedPattern
}

// NewRegistry creates a registry pre-loaded with the default content
// patterns.
func NewRegistry() *Registry {
	r := &Registry{patterns: make(map[string]weightedPattern)}
	for _, p := range defaultPatterns {
		// Defaults are known-good expressions.
		if err := r.Register(p.name, p.expr, p.weight); err != nil {
			panic(fmt.Sprintf("patterns: default pattern %q: %v", p.name, err))
		}
	}
	return r
}

// Register compiles expr in multi-line mode and stores it under name with
// the given weight, replacing any previous pattern of the same name.
func (r *Registry) Register(name, expr string, weight float64) error {
	re, err := regexp.Compile("(?m)" + expr)
	if err != nil {
		return fmt.Errorf("%w %q for %s: %v", ErrInvalidPattern, expr, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[name] = weightedPattern{re: re, weight: weight}
	return nil
}

// Lookup returns the compiled pattern and weight registered under name.
func (r *Registry) Lookup(name string) (*regexp.Regexp, float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[name]
	if !ok {
		return nil, 0, false
	}
	return p.re, p.weight, true
}

// EvaluateBlock scores a text block against every registered pattern and
// returns the non-zero scores by pattern name. Each score is the match
// count times the pattern weight, normalized per 100 characters of text.
func (r *Registry) EvaluateBlock(text string) map[string]float64 {
	scores := make(map[string]float64)
	if len(text) == 0 {
		return scores
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.patterns {
		matches := len(p.re.FindAllStringIndex(text, -1))
		if matches == 0 {
			continue
		}
		score := (float64(matches) * p.weight) / (float64(len(text)) / 100)
		if score > 0 {
			scores[name] = score
		}
	}
	return scores
}

// Default pattern names.
const (
	PatternChapterHeader   = "chapter_header"
	PatternSectionHeader   = "section_header"
	PatternParagraphBreak  = "paragraph_break"
	PatternFootnote        = "footnote"
	PatternPageNumber      = "page_number"
	PatternTableOfContents = "table_of_contents"
	PatternBibliography    = "bibliography"
	PatternAppendix        = "appendix"
)

var defaultPatterns = []struct {
	name   string
	expr   string
	weight float64
}{
	{PatternChapterHeader, `^(?:Chapter|CHAPTER)\s+(?:[0-9]+|[IVXLCDM]+)(?:\s*[-:]\s*.+)?$`, 2.0},
	{PatternSectionHeader, `^\d+(?:\.\d+)*\s+[A-Z][^\n]+$`, 1.5},
	{PatternParagraphBreak, `\n\s*\n`, 0.5},
	{PatternFootnote, `^\[\d+\]|\{\d+\}|\*{1,3}`, 1.0},
	{PatternPageNumber, `^\s*\d+\s*$`, 0.3},
	{PatternTableOfContents, `(?:^|\n)(?:Table of Contents|CONTENTS)(?:\n|$)`, 2.0},
	{PatternBibliography, `(?:^|\n)(?:Bibliography|References|Works Cited)(?:\n|$)`, 2.0},
	{PatternAppendix, `(?:^|\n)(?:Appendix\s+[A-Z]|APPENDIX\s+[A-Z])(?:\n|$)`, 2.0},
}
