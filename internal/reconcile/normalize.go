package reconcile

import "github.com/streamqa/reconcile/internal/model"

// Normalize maps input rows 1:1 onto fresh output records. The live judgment
// is copied from the answered flag; the archive judgment starts empty and
// the final status reflects the live judgment alone until the engine has
// run.
func Normalize(inputs []model.InputQuestion) []model.OutputQuestion {
	out := make([]model.OutputQuestion, len(inputs))
	for i, in := range inputs {
		live := ""
		if in.Answered == model.JudgmentTrue {
			live = model.JudgmentTrue
		}
		out[i] = model.OutputQuestion{
			FinalAnswerStatus: live == model.JudgmentTrue,
			LiveJudgment:      live,
			ArchiveJudgment:   "",
			AnswerMethod:      in.AnswerMethod,
			Time:              in.Time,
			User:              in.User,
			Question:          in.Question,
			CommentNote:       in.CommentNote,
			Answer:            in.Answer,
			Memo:              in.Memo,
		}
	}
	return out
}
