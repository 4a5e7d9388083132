package export

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/streamqa/reconcile/internal/model"
)

const sheetName = "質問回答まとめ"

// statisticsSpacerRows keeps the statistics block visually separated from
// the data table, matching the sheet layout downstream consumers expect.
const statisticsSpacerRows = 4

// dataHeader is the fixed 10-column data table header.
var dataHeader = []string{
	"最終回答状況",
	"配信現場判定",
	"アーカイブ判定",
	"回答方法",
	"Time",
	"User",
	"質問",
	"コメント補足",
	"回答",
	"メモ",
}

// BuildWorkbook renders the reconciled records as a single-sheet workbook:
// a statistics block, spacer rows, the data header, then one row per record
// in sequence order.
func BuildWorkbook(questions []model.OutputQuestion, stats model.SummaryStats) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	addStatisticsBlock(sheet, stats)

	for range [statisticsSpacerRows]struct{}{} {
		sheet.AddRow()
	}

	header := sheet.AddRow()
	for _, title := range dataHeader {
		header.AddCell().SetString(title)
	}

	for _, q := range questions {
		row := sheet.AddRow()
		status := "FALSE"
		if q.FinalAnswerStatus {
			status = "TRUE"
		}
		for _, value := range []string{
			status,
			q.LiveJudgment,
			q.ArchiveJudgment,
			q.AnswerMethod,
			q.Time,
			q.User,
			q.Question,
			q.CommentNote,
			q.Answer,
			q.Memo,
		} {
			row.AddCell().SetString(value)
		}
	}

	return f, nil
}

// addStatisticsBlock writes the summary label/value pairs above the table.
func addStatisticsBlock(sheet *xlsx.Sheet, stats model.SummaryStats) {
	title := sheet.AddRow()
	title.AddCell().SetString("統計情報")

	operatorAnswered := stats.LiveJudgmentCount
	performerAnswered := stats.ArchiveJudgmentCount

	for _, line := range []struct {
		label string
		value string
	}{
		{"質問件数", fmt.Sprintf("%d", stats.TotalQuestions)},
		{"合計回答件数", fmt.Sprintf("%d", stats.FinalAnswerStatusCount)},
		{"運用者コメント回答", fmt.Sprintf("%d", operatorAnswered)},
		{"出演者回答", fmt.Sprintf("%d", performerAnswered)},
		{"スルー", fmt.Sprintf("%d", stats.SkipCount)},
		{"質問回答率", fmt.Sprintf("%.1f%%", stats.AnswerRate)},
	} {
		row := sheet.AddRow()
		row.AddCell().SetString(line.label)
		row.AddCell().SetString(line.value)
	}
}

// WriteWorkbook serializes the workbook to w.
func WriteWorkbook(f *xlsx.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}
