package strategy

import (
	"github.com/sevigo/docchunk/schema"
)

// tocStrategy aligns chunk boundaries with the document's table of
// contents: content accumulates until a heading matches a different TOC
// section, then the buffer is emitted under the previous section's title.
// Documents without a TOC fall back to semantic splitting.
type tocStrategy struct {
	cfg  Config
	deps Deps
}

func newTOCBased(cfg Config, deps Deps) *tocStrategy {
	return &tocStrategy{cfg: cfg, deps: deps}
}

func (t *tocStrategy) Name() string { return StrategyTOC }

func (t *tocStrategy) Split(doc *schema.Document) ([]schema.Chunk, error) {
	toc := doc.Structure.TOC
	if toc == nil || len(toc.Sections) == 0 {
		t.deps.Logger.Info("document has no TOC, falling back to semantic strategy")
		return newSemantic(t.cfg, t.deps).Split(doc)
	}

	var (
		chunks  []schema.Chunk
		buffer  []schema.ContentElement
		current *tocMatch
		seq     int
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		title := ""
		var stack []schema.HeadingRef
		if current != nil {
			title = current.node.Title
			stack = current.headingStack()
		}
		chunks = append(chunks, buildChunk(buffer, stack, float64(seq), title, t.deps))
		seq++
		buffer = nil
	}

	for _, elem := range doc.Content {
		if elem.Type == schema.ElementHeading {
			if match := t.findSection(toc, elem); match != nil && !match.same(current) {
				flush()
				current = match
				buffer = []schema.ContentElement{elem}
				continue
			}
		}
		buffer = append(buffer, elem)
	}
	flush()

	// TOC sections can span far more content than the size limit allows.
	var sized []schema.Chunk
	for _, c := range chunks {
		if c.Size() > t.cfg.MaxChunkSize {
			sized = append(sized, SplitOversized(c, t.cfg.MaxChunkSize)...)
		} else {
			sized = append(sized, c)
		}
	}

	t.deps.Logger.Debug("toc split complete", "chunks", len(sized), "elements", len(doc.Content))
	return sized, nil
}

// tocMatch is a matched TOC node together with its ancestor chain,
// outermost first.
type tocMatch struct {
	node      *schema.TOCNode
	ancestors []*schema.TOCNode
}

func (m *tocMatch) same(other *tocMatch) bool {
	return other != nil && m.node == other.node
}

func (m *tocMatch) headingStack() []schema.HeadingRef {
	stack := make([]schema.HeadingRef, 0, len(m.ancestors)+1)
	for _, n := range m.ancestors {
		stack = append(stack, schema.HeadingRef{Level: n.Level, Text: n.Title, ID: n.ID})
	}
	stack = append(stack, schema.HeadingRef{Level: m.node.Level, Text: m.node.Title, ID: m.node.ID})
	return stack
}

// findSection locates the TOC node matching a heading element by exact
// casefolded, whitespace-normalized title and equal level. The tree is
// searched depth-first and the first match wins; there is no fuzzy
// matching. A miss is logged for diagnosis but otherwise silent.
func (t *tocStrategy) findSection(toc *schema.TOC, heading schema.ContentElement) *tocMatch {
	target := t.deps.Analyzer.Normalize(heading.Text)
	if match := t.search(toc.Sections, nil, target, heading.Level); match != nil {
		return match
	}
	t.deps.Logger.Debug("heading matched no TOC section",
		"text", heading.Text, "level", heading.Level)
	return nil
}

func (t *tocStrategy) search(sections []*schema.TOCNode, ancestors []*schema.TOCNode, target string, level int) *tocMatch {
	for _, section := range sections {
		if section.Level == level && t.deps.Analyzer.Normalize(section.Title) == target {
			return &tocMatch{node: section, ancestors: append([]*schema.TOCNode(nil), ancestors...)}
		}
		if match := t.search(section.Subsections, append(ancestors, section), target, level); match != nil {
			return match
		}
	}
	return nil
}
