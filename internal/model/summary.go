package model

import "math"

// SummaryStats aggregates counts and the answer rate over a reconciled run.
type SummaryStats struct {
	TotalQuestions         int     `json:"totalQuestions"`
	ArchiveJudgmentCount   int     `json:"archiveJudgmentCount"`
	LiveJudgmentCount      int     `json:"liveJudgmentCount"`
	FinalAnswerStatusCount int     `json:"finalAnswerStatusCount"`
	SkipCount              int     `json:"skipCount"`
	AnswerRate             float64 `json:"answerRate"` // percentage, one decimal
}

// Summarize computes aggregate statistics from a reconciled sequence.
// Answer rate = answered / (total - skipped), as a percentage rounded to one
// decimal place; zero when the denominator is not positive.
func Summarize(questions []OutputQuestion) SummaryStats {
	stats := SummaryStats{TotalQuestions: len(questions)}

	for _, q := range questions {
		if q.ArchiveJudgment == JudgmentTrue {
			stats.ArchiveJudgmentCount++
		}
		if q.LiveJudgment == JudgmentTrue {
			stats.LiveJudgmentCount++
		}
		if q.FinalAnswerStatus {
			stats.FinalAnswerStatusCount++
		}
		if q.AnswerMethod == AnswerMethodSkip {
			stats.SkipCount++
		}
	}

	denominator := stats.TotalQuestions - stats.SkipCount
	if denominator > 0 {
		rate := float64(stats.FinalAnswerStatusCount) / float64(denominator)
		stats.AnswerRate = math.Round(rate*1000) / 10
	}

	return stats
}
