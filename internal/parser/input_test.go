package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/streamqa/reconcile/internal/model"
)

const sampleCSV = `質問リスト,,,,,,,
回答済み,Time,User,質問,回答方法,コメント補足,回答,メモ
TRUE,00:05:10,viewer1,何色に変わりますか？,運用者コメ,,回答済み,
,00:06:00,viewer2,いつ発送されますか？,,,,
,00:07:30,viewer3,,,,,
`

func TestParseInputCSV(t *testing.T) {
	questions, warnings, err := ParseInputCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// The row without question text is dropped.
	require.Len(t, questions, 2)
	assert.Equal(t, model.InputQuestion{
		Answered:     "TRUE",
		Time:         "00:05:10",
		User:         "viewer1",
		Question:     "何色に変わりますか？",
		AnswerMethod: model.AnswerMethodOperator,
		Answer:       "回答済み",
	}, questions[0])
	assert.Equal(t, "viewer2", questions[1].User)
	assert.Empty(t, questions[1].Answered)
}

func TestParseInputCSV_TooFewRows(t *testing.T) {
	_, _, err := ParseInputCSV(strings.NewReader("title\nheader\n"))
	assert.Error(t, err)
}

func TestParseInputCSV_ShortRowWarning(t *testing.T) {
	csv := "title,,,,,,,\nheader,,,,,,,\nTRUE,00:01:00,user\n,00:02:00,u2,q2,,,,\n"
	questions, warnings, err := ParseInputCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	require.Len(t, questions, 1)
	assert.Equal(t, "q2", questions[0].Question)
}

func TestParseInput_UnsupportedExtension(t *testing.T) {
	_, _, err := ParseInput("notes.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseInput_DispatchesCSV(t *testing.T) {
	questions, _, err := ParseInput("input.csv", []byte(sampleCSV))
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestParseInputXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("質問リスト")
	require.NoError(t, err)

	addRow := func(cells ...string) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	addRow("質問リスト")
	addRow("回答済み", "Time", "User", "質問", "回答方法", "コメント補足", "回答", "メモ")
	addRow("TRUE", "00:05:10", "viewer1", "何色に変わりますか？", "", "", "", "")
	addRow("", "00:06:00", "viewer2", "いつ発送されますか？", "スルー", "", "", "")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	questions, warnings, err := ParseInput("input.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, questions, 2)
	assert.Equal(t, "viewer1", questions[0].User)
	assert.Equal(t, model.AnswerMethodSkip, questions[1].AnswerMethod)
}
