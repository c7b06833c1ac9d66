package strategy

import (
	"github.com/sevigo/docchunk/schema"
)

// fixedSizeStrategy accumulates elements toward a target size and scans
// the buffer backward for the best break point: synthetic markers first,
// then sentence-terminated text, then a size-proportional fallback.
type fixedSizeStrategy struct {
	cfg  Config
	deps Deps
}

func newFixedSize(cfg Config, deps Deps) *fixedSizeStrategy {
	return &fixedSizeStrategy{cfg: cfg, deps: deps}
}

func (f *fixedSizeStrategy) Name() string { return StrategyFixedSize }

func (f *fixedSizeStrategy) Split(doc *schema.Document) ([]schema.Chunk, error) {
	elements := insertParagraphMarkers(doc.Content)

	var (
		chunks  []schema.Chunk
		buffer  []schema.ContentElement
		bufSize int
		seq     int
	)

	for _, elem := range elements {
		buffer = append(buffer, elem)
		bufSize += elem.WordCount()

		if bufSize < f.cfg.MaxChunkSize {
			continue
		}

		breakIdx := f.findBreakPoint(buffer)
		emit := buffer[:breakIdx+1]
		chunks = append(chunks, buildChunk(emit, nil, float64(seq), "", f.deps))
		seq++

		rest := append([]schema.ContentElement(nil), buffer[breakIdx+1:]...)
		buffer = rest
		bufSize = schema.ElementsWordCount(buffer)
	}

	if len(buffer) > 0 {
		chunks = append(chunks, buildChunk(buffer, nil, float64(seq), "", f.deps))
	}

	f.deps.Logger.Debug("fixed-size split complete", "chunks", len(chunks), "elements", len(doc.Content))
	return chunks, nil
}

// findBreakPoint scans the buffer backward for the index of the last
// element a chunk should include. Priority order: the most recent
// structural marker, the most recent sentence-terminated text element, a
// forward scan to roughly half the target size, the literal midpoint.
func (f *fixedSizeStrategy) findBreakPoint(buffer []schema.ContentElement) int {
	for i := len(buffer) - 1; i >= 0; i-- {
		switch buffer[i].Type {
		case schema.ElementParagraphEnd, schema.ElementSectionBreak, schema.ElementHeading:
			if i > 0 {
				return i
			}
		}
	}

	for i := len(buffer) - 1; i >= 0; i-- {
		if buffer[i].IsTextual() && buffer[i].EndsTerminated() && i < len(buffer)-1 {
			return i
		}
	}

	// Size-proportional fallback: cut once roughly half the target size
	// has accumulated.
	half := f.cfg.MaxChunkSize / 2
	size := 0
	for i, e := range buffer {
		size += e.WordCount()
		if size >= half && i < len(buffer)-1 {
			return i
		}
	}

	mid := len(buffer) / 2
	if mid == len(buffer)-1 && mid > 0 {
		mid--
	}
	return mid
}

// insertParagraphMarkers adds a synthetic paragraph-end marker after every
// sentence-terminated text element. Markers share the position of the
// element they follow, so chunk boundaries stay expressible in document
// positions.
func insertParagraphMarkers(content []schema.ContentElement) []schema.ContentElement {
	out := make([]schema.ContentElement, 0, len(content))
	for _, elem := range content {
		out = append(out, elem)
		if elem.IsTextual() && elem.EndsTerminated() {
			out = append(out, schema.ContentElement{
				Type:     schema.ElementParagraphEnd,
				Position: elem.Position,
			})
		}
	}
	return out
}
