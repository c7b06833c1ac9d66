package chunktest

import (
	"fmt"
	"time"

	"github.com/sevigo/docchunk/schema"
)

// TestDocument returns a small document with a heading, body text, a
// figure reference and a figure, enough to exercise chunking and
// reference tracking end to end.
func TestDocument() *schema.Document {
	return &schema.Document{
		Content: []schema.ContentElement{
			{Type: schema.ElementHeading, Position: 0, Text: "Chapter 1: Introduction", Level: 1, Page: 1},
			{Type: schema.ElementText, Position: 1, Text: "This chapter introduces the system. It covers the basic concepts.", Page: 1},
			{Type: schema.ElementText, Position: 2, Text: "The architecture is shown in Figure 1 below.", Page: 1},
			{Type: schema.ElementReference, Position: 3, ID: "fig1", Target: "Figure 1", RefType: "figure", Page: 2},
			{Type: schema.ElementFigure, Position: 4, Text: "Figure 1: System architecture", ID: "Figure 1", Page: 2},
		},
		Metadata: schema.DocumentMetadata{Title: "Test Document"},
	}
}

// TOCDocument returns a document whose structure carries a two-level
// table of contents matching its headings.
func TOCDocument() *schema.Document {
	return &schema.Document{
		Content: []schema.ContentElement{
			{Type: schema.ElementHeading, Position: 0, Text: "Chapter 1", Level: 1, Page: 1},
			{Type: schema.ElementText, Position: 1, Text: "Opening text of chapter one. It sets the stage.", Page: 1},
			{Type: schema.ElementHeading, Position: 2, Text: "Section 1.1", Level: 2, Page: 2},
			{Type: schema.ElementText, Position: 3, Text: "Detail text inside the first section.", Page: 2},
			{Type: schema.ElementHeading, Position: 4, Text: "Chapter 2", Level: 1, Page: 3},
			{Type: schema.ElementText, Position: 5, Text: "Chapter two begins a new topic entirely.", Page: 3},
		},
		Structure: schema.Structure{
			TOC: &schema.TOC{
				Sections: []*schema.TOCNode{
					{
						Title: "Chapter 1", Level: 1, ID: "ch1",
						Subsections: []*schema.TOCNode{
							{Title: "Section 1.1", Level: 2, ID: "sec1-1"},
						},
					},
					{Title: "Chapter 2", Level: 1, ID: "ch2"},
				},
			},
		},
		Metadata: schema.DocumentMetadata{Title: "Structured Document"},
	}
}

// LargeDocument returns n paragraphs of filler text with a heading every
// third paragraph, useful for size-driven chunking tests.
func LargeDocument(n int) *schema.Document {
	content := make([]schema.ContentElement, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			content = append(content, schema.ContentElement{
				Type:     schema.ElementHeading,
				Position: pos,
				Text:     fmt.Sprintf("Section %d", i/3+1),
				Level:    2,
				Page:     pos/4 + 1,
			})
			pos++
		}
		content = append(content, schema.ContentElement{
			Type:     schema.ElementText,
			Position: pos,
			Text:     fmt.Sprintf("Paragraph %d contains several words of running text that pad the document out.", i+1),
			Page:     pos/4 + 1,
		})
		pos++
	}
	return &schema.Document{
		Content:  content,
		Metadata: schema.DocumentMetadata{Title: "Large Document"},
	}
}

// TestChunk returns a standalone chunk value for tests that do not run a
// strategy first.
func TestChunk(id string, seq float64, start int, elems ...schema.ContentElement) schema.Chunk {
	if len(elems) == 0 {
		elems = []schema.ContentElement{
			{Type: schema.ElementText, Position: start, Text: "Standalone chunk body text."},
		}
	}
	boundary := schema.ChunkBoundary{
		StartPos: elems[0].Position,
		EndPos:   elems[len(elems)-1].Position,
	}
	metadata := schema.ChunkMetadata{
		ChunkID:     id,
		SequenceNum: seq,
		CreatedAt:   time.Now().UTC(),
		WordCount:   schema.ElementsWordCount(elems),
	}
	return schema.NewChunk(elems, boundary, metadata)
}
