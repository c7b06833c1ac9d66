package schema

import "sort"

// Reference is one cross-reference entry tracked on a chunk boundary.
// ResolvesToChunk and FromChunk are filled in during reference resolution;
// they stay nil for unresolved entries.
type Reference struct {
	ID       string `json:"id,omitempty"`
	Target   string `json:"target"`
	Type     string `json:"type,omitempty"`
	Position int    `json:"position"`

	ResolvesToChunk *int `json:"resolves_to_chunk,omitempty"`
	FromChunk       *int `json:"from_chunk,omitempty"`
}

// key identifies a reference for de-duplication.
func (r Reference) key() [3]any {
	return [3]any{r.ID, r.Target, r.Position}
}

// ReferenceSet groups a chunk's references by their relation to the chunk:
// internal entries resolve within the chunk, incoming entries point at it
// from other chunks, outgoing entries point elsewhere.
type ReferenceSet struct {
	Internal []Reference `json:"internal"`
	Incoming []Reference `json:"incoming"`
	Outgoing []Reference `json:"outgoing"`
}

// Merge unions two reference sets, dropping entries that repeat an
// (id, target, position) triple already present in an earlier bucket of the
// same kind.
func (s ReferenceSet) Merge(other ReferenceSet) ReferenceSet {
	return MergeReferenceSets(s, other)
}

// MergeReferenceSets unions any number of reference sets with
// de-duplication on the (id, target, position) triple.
func MergeReferenceSets(sets ...ReferenceSet) ReferenceSet {
	var merged ReferenceSet
	seen := make(map[[3]any]struct{})

	appendUnique := func(dst *[]Reference, refs []Reference) {
		for _, r := range refs {
			k := r.key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			*dst = append(*dst, r)
		}
	}

	for _, s := range sets {
		appendUnique(&merged.Internal, s.Internal)
		appendUnique(&merged.Incoming, s.Incoming)
		appendUnique(&merged.Outgoing, s.Outgoing)
	}
	return merged
}

// FilterRange keeps only references whose position lies in
// [startPos, endPos].
func (s ReferenceSet) FilterRange(startPos, endPos int) ReferenceSet {
	inRange := func(refs []Reference) []Reference {
		var out []Reference
		for _, r := range refs {
			if r.Position >= startPos && r.Position <= endPos {
				out = append(out, r)
			}
		}
		return out
	}
	return ReferenceSet{
		Internal: inRange(s.Internal),
		Incoming: inRange(s.Incoming),
		Outgoing: inRange(s.Outgoing),
	}
}

// Context is the contextual carry-over a chunk boundary preserves: the
// topic and entity sets extracted from the chunk's text. Both are kept
// sorted so serialized chunks compare deterministically.
type Context struct {
	Topics   []string `json:"topics,omitempty"`
	Entities []string `json:"entities,omitempty"`
}

// Merge unions two contexts.
func (c Context) Merge(other Context) Context {
	return Context{
		Topics:   unionSorted(c.Topics, other.Topics),
		Entities: unionSorted(c.Entities, other.Entities),
	}
}

func unionSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
