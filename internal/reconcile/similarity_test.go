package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identical(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("何色に変わりますか", "何色に変わりますか"), 0.001)
}

func TestSimilarity_NearDuplicate(t *testing.T) {
	// A repeated follow-up comment with a trailing particle change stays
	// above the propagation threshold.
	score := Similarity("何色に変わりますか？", "何色に変わりますか？？")
	assert.GreaterOrEqual(t, score, 0.85)
}

func TestSimilarity_DifferentTopics(t *testing.T) {
	score := Similarity("いつ発送されますか", "何色に変わりますか")
	assert.Less(t, score, 0.85)
}

func TestSimilarity_WidthFolding(t *testing.T) {
	// Full-width and half-width renderings of the same text compare equal.
	assert.InDelta(t, 1.0, Similarity("ＡＢＣ１２３", "ABC123"), 0.001)
}

func TestSimilarity_WhitespaceTrimmed(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("  同じ質問です ", "同じ質問です"), 0.001)
}
