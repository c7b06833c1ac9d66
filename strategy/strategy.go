// Package strategy implements the pluggable document splitting algorithms:
// semantic (heading and size driven), TOC-based (aligned with the table of
// contents) and fixed-size (break-point scanning). All strategies share one
// contract: an ordered document in, an ordered chunk list out.
package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/docchunk/analyzer"
	"github.com/sevigo/docchunk/patterns"
	"github.com/sevigo/docchunk/schema"
)

// Strategy names accepted in Config.Strategy.
const (
	StrategySemantic  = "semantic"
	StrategyTOC       = "toc"
	StrategyFixedSize = "fixed_size"
)

// ErrUnknownStrategy is returned when Config.Strategy does not name a
// registered strategy.
var ErrUnknownStrategy = errors.New("unknown chunking strategy")

// Strategy splits a document into an ordered chunk list.
type Strategy interface {
	Name() string
	Split(doc *schema.Document) ([]schema.Chunk, error)
}

// Deps bundles the collaborators injected into every strategy.
type Deps struct {
	Detector *patterns.Detector
	Analyzer *analyzer.TextAnalyzer
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Detector == nil {
		d.Detector = patterns.NewDetector(d.Logger)
	}
	if d.Analyzer == nil {
		d.Analyzer = analyzer.NewTextAnalyzer()
	}
	return d
}

var factories = map[string]func(Config, Deps) Strategy{
	StrategySemantic: func(cfg Config, deps Deps) Strategy {
		return newSemantic(cfg, deps)
	},
	StrategyTOC: func(cfg Config, deps Deps) Strategy {
		return newTOCBased(cfg, deps)
	},
	StrategyFixedSize: func(cfg Config, deps Deps) Strategy {
		return newFixedSize(cfg, deps)
	},
}

// New builds the strategy named by cfg.Strategy. An unknown name fails
// fast with ErrUnknownStrategy.
func New(cfg Config, deps Deps) (Strategy, error) {
	factory, ok := factories[cfg.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy)
	}
	deps = deps.withDefaults()
	deps.Logger = deps.Logger.With("strategy", cfg.Strategy)
	return factory(cfg, deps), nil
}

func newChunkID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

// buildChunk assembles a chunk from a content run: boundary from the run's
// position range, context and outgoing references from the analyzer, and
// pattern scores from the detector.
func buildChunk(content []schema.ContentElement, stack []schema.HeadingRef, seq float64, sectionTitle string, deps Deps) schema.Chunk {
	boundary := schema.ChunkBoundary{
		StartPos:     content[0].Position,
		EndPos:       content[len(content)-1].Position,
		Context:      deps.Analyzer.Context(content),
		HeadingStack: append([]schema.HeadingRef(nil), stack...),
		References:   deps.Analyzer.References(content),
	}

	metadata := schema.ChunkMetadata{
		ChunkID:      newChunkID("chunk"),
		SequenceNum:  seq,
		SectionTitle: sectionTitle,
		CreatedAt:    time.Now().UTC(),
		WordCount:    schema.ElementsWordCount(content),
	}
	metadata.StartPage, metadata.EndPage = pageRange(content)
	if scores := patternScores(content, deps.Detector); len(scores) > 0 {
		metadata.Patterns = scores
	}

	return schema.NewChunk(content, boundary, metadata)
}

func pageRange(content []schema.ContentElement) (start, end int) {
	for _, e := range content {
		if e.Page == 0 {
			continue
		}
		if start == 0 {
			start = e.Page
		}
		end = e.Page
	}
	return start, end
}

func patternScores(content []schema.ContentElement, det *patterns.Detector) map[string]float64 {
	var parts []string
	for _, e := range content {
		if e.IsTextual() && e.Text != "" {
			parts = append(parts, e.Text)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	scores := det.EvaluateBlock(strings.Join(parts, "\n"))
	if len(scores) == 0 {
		return nil
	}
	return scores
}
