package patterns

import (
	"regexp"
	"strings"
)

// SectionType classifies what part of a document a section belongs to.
type SectionType int

const (
	SectionMainContent SectionType = iota
	SectionFrontMatter
	SectionBackMatter
	SectionAppendix
	SectionCopyright
	SectionIndex
	SectionFootnotes
	SectionAcknowledgments
)

func (s SectionType) String() string {
	switch s {
	case SectionMainContent:
		return "main_content"
	case SectionFrontMatter:
		return "front_matter"
	case SectionBackMatter:
		return "back_matter"
	case SectionAppendix:
		return "appendix"
	case SectionCopyright:
		return "copyright"
	case SectionIndex:
		return "index"
	case SectionFootnotes:
		return "footnotes"
	case SectionAcknowledgments:
		return "acknowledgments"
	default:
		return "unknown"
	}
}

var (
	copyrightRe       = regexp.MustCompile(`copyright|all\s+rights\s+reserved`)
	indexRe           = regexp.MustCompile(`index$`)
	appendixRe        = regexp.MustCompile(`appendix\s+[a-z]`)
	footnotesRe       = regexp.MustCompile(`footnotes?$`)
	acknowledgmentsRe = regexp.MustCompile(`acknowledgments?$`)
)

var (
	frontMatterMarkers = []string{"contents", "preface", "foreword", "introduction"}
	backMatterMarkers  = []string{"index", "glossary", "bibliography", "references"}
)

// DetectSectionType classifies a text block. relPos is the block's relative
// position in the document (0.0 at the start, 1.0 at the end) and biases
// the front/back matter checks.
func (d *Detector) DetectSectionType(text string, relPos float64) SectionType {
	t := strings.ToLower(strings.TrimSpace(text))

	if relPos < 0.1 {
		for _, marker := range frontMatterMarkers {
			if strings.Contains(t, marker) {
				return SectionFrontMatter
			}
		}
	} else if relPos > 0.9 {
		for _, marker := range backMatterMarkers {
			if strings.Contains(t, marker) {
				return SectionBackMatter
			}
		}
	}

	switch {
	case copyrightRe.MatchString(t):
		return SectionCopyright
	case indexRe.MatchString(t):
		return SectionIndex
	case appendixRe.MatchString(t):
		return SectionAppendix
	case footnotesRe.MatchString(t):
		return SectionFootnotes
	case acknowledgmentsRe.MatchString(t):
		return SectionAcknowledgments
	}
	return SectionMainContent
}
