package reconcile

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/streamqa/reconcile/internal/model"
)

// --- Matcher Mock ---

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) Match(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error) {
	args := m.Called(ctx, question, clock, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QAItem), args.Error(1)
}

// matcherFunc adapts a function to the oracle.Matcher interface for tests
// that need per-question behavior without mock bookkeeping.
type matcherFunc func(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error)

func (f matcherFunc) Match(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error) {
	return f(ctx, question, clock, candidates)
}
