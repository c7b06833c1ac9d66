package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/analyzer"
	"github.com/sevigo/docchunk/schema"
)

func textElem(pos int, text string) schema.ContentElement {
	return schema.ContentElement{Type: schema.ElementText, Position: pos, Text: text}
}

func TestTextAnalyzer(t *testing.T) {
	a := analyzer.NewTextAnalyzer()

	t.Run("Normalize", func(t *testing.T) {
		assert.Equal(t, "chapter one", a.Normalize("  Chapter   One\n"))
		assert.Equal(t, "", a.Normalize("   "))
	})

	t.Run("Topics", func(t *testing.T) {
		elems := []schema.ContentElement{
			textElem(0, "The database stores records. The database index speeds lookups."),
			textElem(1, "Every record carries a database key."),
		}
		topics := a.Topics(elems)
		assert.Contains(t, topics, "database")
		assert.NotContains(t, topics, "the")
		assert.NotEmpty(t, topics)

		assert.Nil(t, a.Topics(nil))
	})

	t.Run("TopicsSortedAndStable", func(t *testing.T) {
		elems := []schema.ContentElement{textElem(0, "alpha beta gamma alpha beta alpha")}
		first := a.Topics(elems)
		second := a.Topics(elems)
		assert.Equal(t, first, second)
		assert.IsIncreasing(t, first)
	})

	t.Run("Entities", func(t *testing.T) {
		elems := []schema.ContentElement{
			textElem(0, "Alice visited the office of Acme Corp. in Berlin last week."),
			{Type: schema.ElementReference, Position: 1, ID: "fig1", Target: "Figure 1", RefType: "figure"},
		}
		entities := a.Entities(elems)
		assert.Contains(t, entities, "Alice")
		assert.Contains(t, entities, "Berlin")
		assert.Contains(t, entities, "Figure 1")
	})

	t.Run("References", func(t *testing.T) {
		elems := []schema.ContentElement{
			textElem(0, "See below."),
			{Type: schema.ElementReference, Position: 1, ID: "fig1", Target: "Figure 1", RefType: "figure"},
			{Type: schema.ElementReference, Position: 2, ID: "tab2", Target: "Table 2", RefType: "table"},
		}
		set := a.References(elems)
		require.Len(t, set.Outgoing, 2)
		assert.Equal(t, "Figure 1", set.Outgoing[0].Target)
		assert.Empty(t, set.Internal)
		assert.Empty(t, set.Incoming)
	})

	t.Run("TextReferences", func(t *testing.T) {
		refs := a.TextReferences("As Figure 3.1 and Table 2 show, Section 4.2 holds.")
		require.Len(t, refs, 3)
		targets := make(map[string]string, 3)
		for _, r := range refs {
			targets[r.Type] = r.Target
		}
		assert.Equal(t, "3.1", targets["figure"])
		assert.Equal(t, "2", targets["table"])
		assert.Equal(t, "4.2", targets["section"])
	})

	t.Run("Context", func(t *testing.T) {
		elems := []schema.ContentElement{
			textElem(0, "Fermentation converts sugars. Yeast drives fermentation."),
		}
		ctx := a.Context(elems)
		assert.Contains(t, ctx.Topics, "fermentation")
		assert.Contains(t, ctx.Entities, "Yeast")
	})
}
