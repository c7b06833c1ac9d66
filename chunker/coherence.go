package chunker

import (
	"fmt"

	"github.com/sevigo/docchunk/schema"
)

// AnalyzeCoherence scores how well adjacent chunks hang together, in
// [0, 1]. With no indices all managed chunks are scored; otherwise only
// the listed chunks, in the given order. Fewer than two chunks score a
// perfect 1.0.
func (m *Manager) AnalyzeCoherence(indices ...int) (float64, error) {
	chunks := m.chunks
	if len(indices) > 0 {
		chunks = make([]schema.Chunk, 0, len(indices))
		for _, idx := range indices {
			if idx < 0 || idx >= len(m.chunks) {
				return 0, fmt.Errorf("%w: %d (have %d chunks)", ErrInvalidChunkIndex, idx, len(m.chunks))
			}
			chunks = append(chunks, m.chunks[idx])
		}
	}
	if len(chunks) < 2 {
		return 1.0, nil
	}

	total := 0.0
	for i := 0; i < len(chunks)-1; i++ {
		total += pairCoherence(chunks[i], chunks[i+1])
	}
	return total / float64(len(chunks)-1), nil
}

// pairCoherence averages three signals between adjacent chunks: topic
// overlap, reference continuity, and narrative flow across the boundary.
func pairCoherence(a, b schema.Chunk) float64 {
	topics := jaccard(a.Boundary.Context.Topics, b.Boundary.Context.Topics)
	refs := referenceContinuity(a, b)
	flow := flowScore(a, b)

	score := (topics + refs + flow) / 3.0
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func chapterBoundaryBetween(a, b schema.Chunk) bool {
	tail := a.Content
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	head := b.Content
	if len(head) > 3 {
		head = head[:3]
	}
	for _, e := range tail {
		if e.IsChapterBoundary() {
			return true
		}
	}
	for _, e := range head {
		if e.IsChapterBoundary() {
			return true
		}
	}
	return false
}

// referenceContinuity is the fraction of a's outgoing references that
// resolve inside b, by anchor element ID or by b's internal reference
// targets. With no outgoing references there is nothing to break, which
// counts as full continuity.
func referenceContinuity(a, b schema.Chunk) float64 {
	out := a.Boundary.References.Outgoing
	if len(out) == 0 {
		return 1.0
	}
	targets := make(map[string]struct{})
	for _, elem := range b.Content {
		if elem.ID != "" {
			targets[elem.ID] = struct{}{}
		}
	}
	for _, ref := range b.Boundary.References.Internal {
		targets[ref.Target] = struct{}{}
		if ref.ID != "" {
			targets[ref.ID] = struct{}{}
		}
	}
	resolved := 0
	for _, ref := range out {
		if _, ok := targets[ref.Target]; ok {
			resolved++
			continue
		}
		if _, ok := targets[ref.ID]; ref.ID != "" && ok {
			resolved++
		}
	}
	return float64(resolved) / float64(len(out))
}

// flowScore penalizes a chunk whose last text-bearing element stops
// mid-sentence, since the thought continues in the next chunk. A chapter
// boundary between the chunks resets just this signal to 1.0: the
// narrative is expected to restart there, but topic and reference
// continuity still count.
func flowScore(a, b schema.Chunk) float64 {
	if chapterBoundaryBetween(a, b) {
		return 1.0
	}
	for i := len(a.Content) - 1; i >= 0; i-- {
		e := a.Content[i]
		if !e.IsTextual() {
			continue
		}
		if e.EndsTerminated() {
			return 1.0
		}
		return 0.7
	}
	return 1.0
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
