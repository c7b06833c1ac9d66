package schema

import "strings"

// ElementType identifies the kind of a content element. The set is closed:
// strategies and post-processing switch over these constants exhaustively.
type ElementType string

const (
	ElementHeading   ElementType = "heading"
	ElementText      ElementType = "text"
	ElementParagraph ElementType = "paragraph"
	ElementReference ElementType = "reference"
	ElementFigure    ElementType = "figure"
	ElementTable     ElementType = "table"
	ElementCode      ElementType = "code"

	// Synthetic markers inserted during pre-processing. They carry no text
	// and share the position of the element they follow.
	ElementParagraphEnd ElementType = "paragraph_end"
	ElementSectionBreak ElementType = "section_break"
)

// ContentElement is one item of a document's flattened content sequence.
// Position is the element's stable index in that sequence; chunk boundaries
// and cross-references are expressed in terms of it.
type ContentElement struct {
	Type     ElementType `json:"type"`
	Position int         `json:"position"`

	// Text carries the visible content for heading, text, paragraph and
	// code elements.
	Text  string `json:"text,omitempty"`
	Style string `json:"style,omitempty"`

	// Level is the heading depth (1 = chapter). Only set for headings.
	Level int `json:"level,omitempty"`

	// ID is an anchor other elements can reference.
	ID string `json:"id,omitempty"`

	// Target and RefType describe a reference element: the anchor it points
	// at and the reference kind (figure, table, section, ...).
	Target  string `json:"target,omitempty"`
	RefType string `json:"reference_type,omitempty"`

	// Page is the 1-based source page, when known.
	Page int `json:"page,omitempty"`

	// Metadata holds annotations added during document preparation, such as
	// chapter-boundary flags and entity hints.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IsTextual reports whether the element contributes to a chunk's word count.
func (e ContentElement) IsTextual() bool {
	return e.Type == ElementText || e.Type == ElementParagraph
}

// WordCount returns the number of words for text-bearing elements and zero
// for everything else.
func (e ContentElement) WordCount() int {
	if !e.IsTextual() {
		return 0
	}
	return len(strings.Fields(e.Text))
}

// EndsTerminated reports whether a text-bearing element ends with sentence
// punctuation.
func (e ContentElement) EndsTerminated() bool {
	t := strings.TrimRight(e.Text, " \t\n")
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// IsChapterBoundary reports whether preparation flagged this element as the
// start of a chapter.
func (e ContentElement) IsChapterBoundary() bool {
	v, ok := e.Metadata["is_chapter_boundary"].(bool)
	return ok && v
}

// ElementsWordCount sums the word counts of a slice of elements.
func ElementsWordCount(elements []ContentElement) int {
	total := 0
	for _, e := range elements {
		total += e.WordCount()
	}
	return total
}
