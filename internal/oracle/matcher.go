// Package oracle decides whether a viewer question and an archive transcript
// entry are the same question, using Claude as the judge.
package oracle

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/streamqa/reconcile/internal/model"
	"github.com/streamqa/reconcile/pkg/anthropic"
)

// ErrAuthInvalid reports that the API rejected our credentials. The caller
// must stop issuing further match calls for the rest of the run.
var ErrAuthInvalid = eris.New("oracle: authentication invalid")

// Matcher decides whether a question matches one of the candidate archive
// items. A nil item with a nil error means no match.
type Matcher interface {
	Match(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error)
}

// The oracle only ever sees candidates close in stream time to the input
// question; anything further out cannot be the same exchange.
const defaultWindowMinutes = 5

const systemPrompt = `あなたは質問の意味を理解し、非常に厳格な基準でマッチング判定を行う専門家です。` +
	`完全に同じ意味の質問のみをマッチングし、少しでも異なる場合はマッチングしないでください。` +
	`質問の主題や内容が異なる場合は必ずマッチングしないでください。` +
	`関連性があるだけでは不十分です。曖昧な場合や判断に迷う場合は必ずマッチングしないことを選択してください。`

var answerPattern = regexp.MustCompile(`番号:\s*(\d+)`)

// Options tunes an LLMMatcher.
type Options struct {
	Model         string
	WindowMinutes float64 // symmetric candidate window; default 5
	RatePerSecond float64 // API request budget; 0 disables limiting
}

// LLMMatcher implements Matcher against the Anthropic API. It is stateless;
// auth failures are reported to the caller as ErrAuthInvalid and latched
// there.
type LLMMatcher struct {
	client  anthropic.Client
	limiter *rate.Limiter
	opts    Options
}

// NewLLMMatcher builds a matcher over the given API client.
func NewLLMMatcher(client anthropic.Client, opts Options) *LLMMatcher {
	if opts.WindowMinutes <= 0 {
		opts.WindowMinutes = defaultWindowMinutes
	}
	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return &LLMMatcher{client: client, limiter: limiter, opts: opts}
}

// Match filters candidates to the time window around clock and asks the
// model for a strict-equivalence judgment. Zero in-window candidates
// short-circuit to no match without an API call.
func (m *LLMMatcher) Match(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error) {
	inWindow := filterByWindow(clock, candidates, m.opts.WindowMinutes)
	if len(inWindow) == 0 {
		return nil, nil
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "oracle: rate limit wait")
		}
	}

	temperature := 0.1
	resp, err := m.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       m.opts.Model,
		MaxTokens:   200,
		Temperature: &temperature,
		System:      []anthropic.SystemBlock{{Text: systemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(question, inWindow)},
		},
	})
	if err != nil {
		if anthropic.IsAuthError(err) {
			return nil, ErrAuthInvalid
		}
		return nil, eris.Wrap(err, "oracle: match call")
	}

	resp.Usage.LogCost(m.opts.Model, "match")

	return parseResponse(resp.Text(), inWindow), nil
}

// filterByWindow keeps candidates within windowMinutes of clock in either
// direction.
func filterByWindow(clock string, candidates []model.QAItem, windowMinutes float64) []model.QAItem {
	var out []model.QAItem
	for _, item := range candidates {
		if model.ClockDiffMinutes(clock, item.Time) <= windowMinutes {
			out = append(out, item)
		}
	}
	return out
}

// buildPrompt enumerates the candidates and demands a 番号: N verdict under
// the strict-equivalence standard, 0 meaning no match.
func buildPrompt(question string, candidates []model.QAItem) string {
	var b strings.Builder
	for i, qa := range candidates {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] 時刻: %s\n質問: %s\n回答: %s", i+1, qa.Time, qa.Question, qa.Answer)
	}

	return fmt.Sprintf(`以下の質問に対して、非常に厳格な基準でマッチング判定を行ってください。

【入力質問】
%s

【候補となる質問と回答】
%s

【判定基準（非常に厳格）】
- 入力質問と候補の質問が「完全に同じ意味」である場合のみマッチングしてください
- 質問の主題や内容が異なる場合は必ず「番号: 0」を返してください
- 例：「何度で色が変わるか」と「色は変わりますか」は主題が異なるため、マッチングしない
- 例：「いつ発送されますか」と「いつ届きますか」は主題が異なるため、マッチングしない
- 少しでも意味が異なる場合は「番号: 0」を返してください
- 表現が異なるだけで意味が同じ場合はマッチングしてください（例：「発送はいつですか」と「いつ発送されますか」）
- 曖昧な場合や判断に迷う場合は必ず「番号: 0」を返してください
- 関連性があるだけでは不十分です。完全に同じ質問である必要があります

回答は必ず「番号: [数字]」の形式で返してください。
該当する質問がない場合は「番号: 0」と返してください。`, question, b.String())
}

// parseResponse extracts the chosen candidate from a 番号: N verdict.
// 0, out-of-range, or an unparseable reply all mean no match.
func parseResponse(text string, candidates []model.QAItem) *model.QAItem {
	m := answerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	index, err := strconv.Atoi(m[1])
	if err != nil || index < 1 || index > len(candidates) {
		return nil
	}
	return &candidates[index-1]
}
