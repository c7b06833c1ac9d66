package strategy

import (
	"strings"

	"github.com/sevigo/docchunk/schema"
)

// semanticStrategy emits a chunk whenever the running buffer hits a
// heading boundary or the size limit, carrying the heading hierarchy and
// an overlap of trailing content into the next chunk.
type semanticStrategy struct {
	cfg  Config
	deps Deps
}

func newSemantic(cfg Config, deps Deps) *semanticStrategy {
	return &semanticStrategy{cfg: cfg, deps: deps}
}

func (s *semanticStrategy) Name() string { return StrategySemantic }

func (s *semanticStrategy) Split(doc *schema.Document) ([]schema.Chunk, error) {
	var (
		chunks  []schema.Chunk
		buffer  []schema.ContentElement
		stack   []schema.HeadingRef
		bufSize int
		seq     int
		fresh   bool
	)

	// A buffer holding only the overlap seed from the previous flush must
	// not be emitted again; it waits for new content.
	flush := func() {
		if len(buffer) == 0 || !fresh {
			return
		}
		chunks = append(chunks, buildChunk(buffer, stack, float64(seq), sectionTitle(stack), s.deps))
		seq++
		buffer = s.overlapTail(buffer)
		bufSize = schema.ElementsWordCount(buffer)
		fresh = false
	}

	for _, elem := range doc.Content {
		elemSize := elem.WordCount()

		if elem.Type == schema.ElementHeading {
			// Emit before updating the stack so the flushed chunk keeps the
			// headings that were in effect for its content.
			flush()
			for len(stack) > 0 && stack[len(stack)-1].Level >= elem.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, schema.HeadingRef{Level: elem.Level, Text: elem.Text, ID: elem.ID})
		}

		if bufSize+elemSize > s.cfg.MaxChunkSize && len(buffer) > 0 {
			flush()
		}

		// An element that alone exceeds the limit becomes its own run of
		// single-element chunks; the buffer must not absorb it.
		if elemSize > s.cfg.MaxChunkSize {
			if len(buffer) > 0 && fresh {
				chunks = append(chunks, buildChunk(buffer, stack, float64(seq), sectionTitle(stack), s.deps))
				seq++
			}
			buffer = nil
			bufSize = 0
			fresh = false
			for _, sub := range sliceElement(elem, s.cfg.MaxChunkSize) {
				chunks = append(chunks, buildChunk([]schema.ContentElement{sub}, stack, float64(seq), sectionTitle(stack), s.deps))
				seq++
			}
			continue
		}

		buffer = append(buffer, elem)
		bufSize += elemSize
		fresh = true
	}

	if len(buffer) > 0 && fresh {
		chunks = append(chunks, buildChunk(buffer, stack, float64(seq), sectionTitle(stack), s.deps))
	}

	s.deps.Logger.Debug("semantic split complete", "chunks", len(chunks), "elements", len(doc.Content))
	return chunks, nil
}

// overlapTail returns the trailing elements of a flushed buffer whose
// cumulative size fits the configured overlap, to seed the next buffer.
func (s *semanticStrategy) overlapTail(buffer []schema.ContentElement) []schema.ContentElement {
	if s.cfg.OverlapTokens <= 0 {
		return nil
	}
	var overlap []schema.ContentElement
	size := 0
	for i := len(buffer) - 1; i >= 0; i-- {
		elemSize := buffer[i].WordCount()
		if size+elemSize > s.cfg.OverlapTokens {
			break
		}
		overlap = append([]schema.ContentElement{buffer[i]}, overlap...)
		size += elemSize
	}
	return overlap
}

func sectionTitle(stack []schema.HeadingRef) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1].Text
}

// sliceElement cuts an oversized text-bearing element into sub-elements of
// at most maxWords words each. The sub-elements keep the source position;
// callers downstream treat same-position siblings as a continuation.
func sliceElement(elem schema.ContentElement, maxWords int) []schema.ContentElement {
	words := strings.Fields(elem.Text)
	if len(words) <= maxWords {
		return []schema.ContentElement{elem}
	}
	var subs []schema.ContentElement
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		sub := elem
		sub.Text = strings.Join(words[start:end], " ")
		subs = append(subs, sub)
	}
	return subs
}
