package chunker

import (
	"github.com/sevigo/docchunk/schema"
)

// resolveReferences classifies every chunk's outgoing references against
// the targets the chunk set defines. A chunk owns a target when one of its
// content elements carries that ID, or when an already-internal reference
// names it. An outgoing reference resolving to its own chunk becomes
// internal; one resolving to another chunk is annotated with the owning
// index and mirrored into that chunk's incoming list. Unresolved targets
// stay outgoing, untouched.
func (m *Manager) resolveReferences(chunks []schema.Chunk) []schema.Chunk {
	out := make([]schema.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = c
		out[i].Boundary.References = copyReferenceSet(c.Boundary.References)
	}

	owner := make(map[string]int)
	for i, c := range out {
		for _, elem := range c.Content {
			if elem.ID != "" {
				if _, seen := owner[elem.ID]; !seen {
					owner[elem.ID] = i
				}
			}
		}
		for _, ref := range c.Boundary.References.Internal {
			if _, seen := owner[ref.Target]; !seen {
				owner[ref.Target] = i
			}
		}
	}

	resolved := 0
	for i := range out {
		refs := &out[i].Boundary.References
		var outgoing []schema.Reference

		for _, ref := range refs.Outgoing {
			targetIdx, ok := owner[ref.Target]
			if !ok {
				outgoing = append(outgoing, ref)
				continue
			}

			if targetIdx == i {
				refs.Internal = append(refs.Internal, ref)
				continue
			}

			toChunk := targetIdx
			ref.ResolvesToChunk = &toChunk
			outgoing = append(outgoing, ref)

			fromChunk := i
			out[targetIdx].Boundary.References.Incoming = append(
				out[targetIdx].Boundary.References.Incoming,
				schema.Reference{
					ID:        ref.ID,
					Target:    ref.Target,
					Type:      ref.Type,
					Position:  ref.Position,
					FromChunk: &fromChunk,
				})
			resolved++
		}
		refs.Outgoing = outgoing
	}

	if resolved > 0 {
		m.logger.Debug("resolved cross-chunk references", "count", resolved)
	}
	return out
}

func copyReferenceSet(s schema.ReferenceSet) schema.ReferenceSet {
	return schema.ReferenceSet{
		Internal: append([]schema.Reference(nil), s.Internal...),
		Incoming: append([]schema.Reference(nil), s.Incoming...),
		Outgoing: append([]schema.Reference(nil), s.Outgoing...),
	}
}
