// Package model defines the record shapes shared by the parsers, the
// reconciliation engine, and the exporters.
package model

// JudgmentTrue is the spreadsheet literal for an affirmative judgment flag.
// Judgments are kept as strings rather than booleans because the output
// sheet round-trips the cell values verbatim.
const JudgmentTrue = "TRUE"

// Answer-method categories used by the judgment passes. The input corpus is
// Japanese; these are the exact cell values the upstream sheet uses.
const (
	// AnswerMethodOperator marks an on-air acknowledgment typed by the
	// stream operator.
	AnswerMethodOperator = "運用者コメ"
	// AnswerMethodPerformer marks a question answered by the performer,
	// i.e. found in the archive review.
	AnswerMethodPerformer = "出演者"
	// AnswerMethodSkip marks a question deliberately passed over. Skipped
	// questions are excluded from the answer-rate denominator.
	AnswerMethodSkip = "スルー"
)

// InputQuestion is one raw viewer comment row from the input sheet.
// Immutable once parsed; slice order is the original row order.
type InputQuestion struct {
	Answered     string `json:"answered"` // "TRUE" or empty
	Time         string `json:"time"`     // "HH:MM:SS" relative to stream start
	User         string `json:"user"`
	Question     string `json:"question"`
	AnswerMethod string `json:"answerMethod"`
	CommentNote  string `json:"commentNote"`
	Answer       string `json:"answer"`
	Memo         string `json:"memo"`
}

// QAItem is one question/answer pair extracted from the archive transcript.
type QAItem struct {
	Number   int    `json:"number"`
	Time     string `json:"time"` // "HH:MM:SS"
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OutputQuestion is the reconciled record emitted per input question, in the
// same order. The engine mutates it through its passes and freezes it at the
// end of a run.
type OutputQuestion struct {
	FinalAnswerStatus bool   `json:"finalAnswerStatus"`
	LiveJudgment      string `json:"liveJudgment"`    // "TRUE" or empty
	ArchiveJudgment   string `json:"archiveJudgment"` // "TRUE" or empty
	AnswerMethod      string `json:"answerMethod"`
	Time              string `json:"time"`
	User              string `json:"user"`
	Question          string `json:"question"`
	CommentNote       string `json:"commentNote"`
	Answer            string `json:"answer"`
	Memo              string `json:"memo"`
}

// JudgmentReason explains why a record was judged archive-answered.
type JudgmentReason struct {
	ArchiveReason string `json:"archiveReason,omitempty"`
}

// JudgmentEntry is one human-readable explanation emitted when the oracle
// establishes an archive match. Proximity-propagated matches get no entry.
type JudgmentEntry struct {
	Question          string         `json:"question"`
	Time              string         `json:"time"`
	User              string         `json:"user"`
	FinalAnswerStatus bool           `json:"finalAnswerStatus"`
	LiveJudgment      string         `json:"liveJudgment"`
	ArchiveJudgment   string         `json:"archiveJudgment"`
	Reason            JudgmentReason `json:"reason"`
}
