package patterns

import (
	"log/slog"
	"regexp"
	"strings"
)

// chapterBoundaryThreshold is the minimum chapter_header score for a block
// to count as a chapter boundary.
const chapterBoundaryThreshold = 0.5

// nonContentMaxLen bounds the block length for non-content detection;
// running headers, footers and page numbers are short.
const nonContentMaxLen = 60

var headerFooterRe = regexp.MustCompile(`(?i)^\s*(?:page\s+\d+|\d+\s*(?:of|/)\s*\d+|[ivxlcdm]+)\s*$`)

// Detector classifies text blocks using a pattern registry. Instances are
// stateless after construction and safe to share across strategies.
type Detector struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDetector creates a detector backed by the default pattern registry.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Registry exposes the underlying pattern registry.
func (d *Detector) Registry() *Registry {
	return d.registry
}

// RegisterPattern adds a custom pattern category to the detector.
func (d *Detector) RegisterPattern(name, expr string, weight float64) error {
	if err := d.registry.Register(name, expr, weight); err != nil {
		return err
	}
	d.logger.Debug("registered custom pattern", "name", name, "weight", weight)
	return nil
}

// EvaluateBlock scores a block against all registered patterns.
func (d *Detector) EvaluateBlock(text string) map[string]float64 {
	return d.registry.EvaluateBlock(text)
}

// DetectChapterBoundary reports whether a block reads like the start of a
// chapter.
func (d *Detector) DetectChapterBoundary(text string) bool {
	scores := d.registry.EvaluateBlock(text)
	return scores[PatternChapterHeader] > chapterBoundaryThreshold
}

// DetectNonContent reports whether a short block looks like a page number
// or a running header/footer rather than document content.
func (d *Detector) DetectNonContent(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > nonContentMaxLen {
		return false
	}
	if headerFooterRe.MatchString(trimmed) {
		return true
	}
	scores := d.registry.EvaluateBlock(trimmed)
	return scores[PatternPageNumber] > chapterBoundaryThreshold
}

// DetectNarrativeFlow scores how smoothly consecutive chunk texts read
// into each other, averaged over adjacent pairs. Each transition combines
// sentence termination at the boundary with key-term overlap between the
// trailing and leading 200 characters. A single chunk is trivially
// coherent.
func (d *Detector) DetectNarrativeFlow(chunkTexts []string) float64 {
	if len(chunkTexts) < 2 {
		return 1.0
	}

	total := 0.0
	for i := 0; i < len(chunkTexts)-1; i++ {
		end := tail(chunkTexts[i], 200)
		start := head(chunkTexts[i+1], 200)

		score := 0.0
		if endsTerminated(end) {
			score += 0.5
		}
		score += 0.5 * termOverlap(end, start)
		total += score
	}

	score := total / float64(len(chunkTexts)-1)
	return min(score, 1.0)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func endsTerminated(s string) bool {
	t := strings.TrimRight(s, " \t\n")
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// termOverlap computes the Jaccard overlap of key terms (words longer than
// three characters, case-folded) between two snippets.
func termOverlap(a, b string) float64 {
	termsA := keyTerms(a)
	termsB := keyTerms(b)
	if len(termsA) == 0 || len(termsB) == 0 {
		return 0.0
	}

	shared := 0
	for t := range termsA {
		if _, ok := termsB[t]; ok {
			shared++
		}
	}
	union := len(termsA) + len(termsB) - shared
	if union == 0 {
		return 0.0
	}
	return float64(shared) / float64(union)
}

func keyTerms(s string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) > 3 {
			terms[w] = struct{}{}
		}
	}
	return terms
}
