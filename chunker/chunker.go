// Package chunker orchestrates document chunking: it prepares the input
// document, runs the configured splitting strategy, then post-processes
// the result through four fixed passes (size balancing, narrative
// coherence, reference resolution, size enforcement) before validating it.
// It also exposes merge, split, persistence and coherence-analysis
// operations on the resulting chunk set.
package chunker

import (
	"log/slog"

	"github.com/sevigo/docchunk/analyzer"
	"github.com/sevigo/docchunk/patterns"
	"github.com/sevigo/docchunk/schema"
	"github.com/sevigo/docchunk/strategy"
)

// Manager drives the chunking pipeline and owns the authoritative ordered
// chunk list. A Manager is not safe for concurrent mutation; independent
// documents need independent Manager instances.
type Manager struct {
	cfg      strategy.Config
	detector *patterns.Detector
	analyzer *analyzer.TextAnalyzer
	strat    strategy.Strategy
	logger   *slog.Logger

	chunks []schema.Chunk
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and its strategy.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithDetector sets a custom pattern detector.
func WithDetector(det *patterns.Detector) Option {
	return func(m *Manager) { m.detector = det }
}

// WithAnalyzer sets a custom text analyzer.
func WithAnalyzer(an *analyzer.TextAnalyzer) Option {
	return func(m *Manager) { m.analyzer = an }
}

// New creates a Manager for the given configuration. An unknown strategy
// name fails here, before any document is processed.
func New(cfg strategy.Config, opts ...Option) (*Manager, error) {
	m := &Manager{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.detector == nil {
		m.detector = patterns.NewDetector(m.logger)
	}
	if m.analyzer == nil {
		m.analyzer = analyzer.NewTextAnalyzer()
	}

	strat, err := strategy.New(cfg, strategy.Deps{
		Detector: m.detector,
		Analyzer: m.analyzer,
		Logger:   m.logger,
	})
	if err != nil {
		return nil, err
	}
	m.strat = strat
	return m, nil
}

// Chunks returns the manager's current chunk list.
func (m *Manager) Chunks() []schema.Chunk {
	return m.chunks
}

// ChunkDocument splits a document with the configured strategy and runs
// the post-processing passes. On success the result becomes the manager's
// chunk list; on failure no partial result is kept or returned.
func (m *Manager) ChunkDocument(doc *schema.Document) ([]schema.Chunk, error) {
	if doc == nil || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	m.prepare(doc)

	chunks, err := m.strat.Split(doc)
	if err != nil {
		return nil, chunkingErr("split", err)
	}

	chunks = m.balance(chunks)
	chunks = m.ensureCoherence(chunks)
	if m.cfg.TrackReferences {
		chunks = m.resolveReferences(chunks)
	}
	chunks = m.enforceSizes(chunks)

	if err := m.validate(chunks); err != nil {
		return nil, err
	}

	m.chunks = chunks
	m.logger.Debug("document chunked",
		"strategy", m.strat.Name(), "chunks", len(chunks), "elements", len(doc.Content))
	return chunks, nil
}

// prepare annotates text-bearing elements with chapter-boundary flags and
// entity hints, and builds the document-wide cross-reference index when
// reference tracking is enabled.
func (m *Manager) prepare(doc *schema.Document) {
	for i := range doc.Content {
		elem := &doc.Content[i]
		if !elem.IsTextual() {
			continue
		}
		if m.detector.DetectChapterBoundary(elem.Text) {
			setElementMeta(elem, "is_chapter_boundary", true)
		}
		if entities := m.analyzer.EntitiesFromText(elem.Text); len(entities) > 0 {
			setElementMeta(elem, "entities", entities)
		}
	}

	if m.cfg.TrackReferences {
		m.buildReferenceIndex(doc)
	}
}

// buildReferenceIndex records, per target, where the document mentions it:
// explicit reference elements plus textual Figure/Table/Section mentions.
func (m *Manager) buildReferenceIndex(doc *schema.Document) {
	index := make(map[string][]schema.Reference)

	add := func(ref schema.Reference) {
		if ref.Target == "" {
			return
		}
		index[ref.Target] = append(index[ref.Target], ref)
	}

	for _, elem := range doc.Content {
		if elem.Type == schema.ElementReference {
			add(schema.Reference{
				ID:       elem.ID,
				Target:   elem.Target,
				Type:     elem.RefType,
				Position: elem.Position,
			})
			continue
		}
		if elem.IsTextual() {
			for _, ref := range m.analyzer.TextReferences(elem.Text) {
				ref.Position = elem.Position
				add(ref)
			}
		}
	}

	if len(index) > 0 {
		doc.SetCustom("reference_index", index)
	}
}

func setElementMeta(elem *schema.ContentElement, key string, value any) {
	if elem.Metadata == nil {
		elem.Metadata = make(map[string]any)
	}
	elem.Metadata[key] = value
}
