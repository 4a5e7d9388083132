package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       string
	}{
		{"dated transcript", "QA抽出_250614.txt", "250614質問回答まとめ.xlsx"},
		{"dated with suffix", "QA抽出_250614_full.txt", "250614質問回答まとめ.xlsx"},
		{"no date token", "notes.txt", "質問回答まとめ.xlsx"},
		{"too few digits", "QA抽出_2506.txt", "質問回答まとめ.xlsx"},
		{"empty", "", "質問回答まとめ.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFileName(tt.transcript))
		})
	}
}
