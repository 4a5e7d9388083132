// Package export renders the reconciled run as an XLSX workbook and derives
// the output filename.
package export

import "regexp"

// BaseName is the fixed output workbook name.
const BaseName = "質問回答まとめ.xlsx"

// Transcript files are named like "QA抽出_250614.txt"; the six digits are
// the stream date (YYMMDD).
var datePattern = regexp.MustCompile(`QA抽出_(\d{6})`)

// OutputFileName derives the workbook filename from the transcript filename,
// prefixing the embedded stream date when present.
func OutputFileName(transcriptName string) string {
	if m := datePattern.FindStringSubmatch(transcriptName); m != nil {
		return m[1] + BaseName
	}
	return BaseName
}
