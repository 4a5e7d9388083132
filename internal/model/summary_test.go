package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	questions := []OutputQuestion{
		{FinalAnswerStatus: true, LiveJudgment: JudgmentTrue, AnswerMethod: AnswerMethodOperator},
		{FinalAnswerStatus: true, ArchiveJudgment: JudgmentTrue, AnswerMethod: AnswerMethodPerformer},
		{AnswerMethod: AnswerMethodSkip},
		{},
	}

	stats := Summarize(questions)

	assert.Equal(t, 4, stats.TotalQuestions)
	assert.Equal(t, 1, stats.ArchiveJudgmentCount)
	assert.Equal(t, 1, stats.LiveJudgmentCount)
	assert.Equal(t, 2, stats.FinalAnswerStatusCount)
	assert.Equal(t, 1, stats.SkipCount)
	// 2 answered out of (4 - 1 skipped) = 66.7%.
	assert.InDelta(t, 66.7, stats.AnswerRate, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil)
	assert.Equal(t, 0, stats.TotalQuestions)
	assert.Equal(t, 0.0, stats.AnswerRate)
}

func TestSummarize_AllSkipped(t *testing.T) {
	questions := []OutputQuestion{
		{AnswerMethod: AnswerMethodSkip},
		{AnswerMethod: AnswerMethodSkip},
	}

	stats := Summarize(questions)

	// Denominator is zero; the rate must not divide by it.
	assert.Equal(t, 0.0, stats.AnswerRate)
	assert.Equal(t, 2, stats.SkipCount)
}

func TestSummarize_RateRounding(t *testing.T) {
	// 1 of 3 answered → 33.333…% → 33.3 after rounding to one decimal.
	questions := []OutputQuestion{
		{FinalAnswerStatus: true},
		{},
		{},
	}

	stats := Summarize(questions)
	assert.InDelta(t, 33.3, stats.AnswerRate, 0.001)
}
