package reconcile

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/width"
)

// Similarity scores two question texts in [0, 1] with a bigram Sørensen–Dice
// coefficient. Texts are width-folded first so full-width and half-width
// renderings of the same characters compare equal — viewer comments mix
// both freely.
func Similarity(a, b string) float64 {
	sd := metrics.NewSorensenDice()
	sd.CaseSensitive = false
	return strutil.Similarity(normalizeText(a), normalizeText(b), sd)
}

func normalizeText(s string) string {
	return width.Fold.String(strings.TrimSpace(s))
}
