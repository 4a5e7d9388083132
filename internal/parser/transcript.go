package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/streamqa/reconcile/internal/model"
)

// Transcript lines look like:
//
//	Q12: {00:05:10} 何色に変わりますか？
//	A12: 青です。
//
// A question line opens an entry; the matching answer line closes it.
var (
	questionLine = regexp.MustCompile(`^Q(\d+):\s*\{(\d{2}):(\d{2}):(\d{2})\}\s*(.+)$`)
	answerLine   = regexp.MustCompile(`^A(\d+):\s*(.+)$`)
)

// ParseTranscript extracts Q&A items from the archive transcript. Orphaned
// answers and unanswered trailing questions are reported as warnings;
// parsing continues past them.
func ParseTranscript(r io.Reader) ([]model.QAItem, []string, error) {
	var items []model.QAItem
	var warnings []string
	var pending *model.QAItem

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := questionLine.FindStringSubmatch(line); m != nil {
			if pending != nil {
				warnings = append(warnings, fmt.Sprintf("no answer found for question Q%d", pending.Number))
			}
			number, _ := strconv.Atoi(m[1])
			pending = &model.QAItem{
				Number:   number,
				Time:     fmt.Sprintf("%s:%s:%s", m[2], m[3], m[4]),
				Question: strings.TrimSpace(m[5]),
			}
			continue
		}

		if m := answerLine.FindStringSubmatch(line); m != nil {
			number, _ := strconv.Atoi(m[1])
			if pending != nil && pending.Number == number {
				pending.Answer = strings.TrimSpace(m[2])
				items = append(items, *pending)
				pending = nil
			} else {
				warnings = append(warnings, fmt.Sprintf("no question found for answer A%d", number))
			}
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "parser: read transcript")
	}

	if pending != nil {
		warnings = append(warnings, fmt.Sprintf("no answer found for question Q%d", pending.Number))
	}

	return items, warnings, nil
}
