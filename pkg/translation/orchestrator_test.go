package translation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nerdneilsfield/docx-translator/internal/test"
	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
	"github.com/nerdneilsfield/docx-translator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordProvider 按记录协议应答，可选上下文上限
type recordProvider struct {
	transform func(string) string
	limit     int
	payloads  []string
}

func (p *recordProvider) Translate(_ context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	p.payloads = append(p.payloads, req.Text)
	if p.limit > 0 && utf8.RuneCountInString(req.Text) > p.limit {
		return nil, providers.NewError(providers.ErrCodeContextLength, "too long")
	}

	blocks := strings.Split(req.Text, RecordSeparator)
	for i, block := range blocks {
		parts := strings.SplitN(block, KeyValueSeparator, 2)
		value := parts[1]
		if p.transform != nil {
			value = p.transform(value)
		}
		blocks[i] = parts[0] + KeyValueSeparator + value
	}
	return &providers.ProviderResponse{
		Text:      strings.Join(blocks, RecordSeparator),
		TokensIn:  10,
		TokensOut: 5,
	}, nil
}

func (p *recordProvider) GetName() string { return "record" }

type mapGlossary map[string]string

func (g mapGlossary) Lookup(text string) (string, bool) {
	v, ok := g[text]
	return v, ok
}

// segmentMap 生成 n 条 "segment number NN" 文本，每条记录 31 字符
func segmentMap(n int) *placeholder.TextMap {
	m := placeholder.NewTextMap()
	for i := 0; i < n; i++ {
		m.Set(testID(i), fmt.Sprintf("segment number %02d", i))
	}
	return m
}

func newOrchestrator(t *testing.T, provider providers.TranslationProvider, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(provider, opts...)
	require.NoError(t, err)
	return o
}

func TestTranslateAllIdentityKeepsWhitespace(t *testing.T) {
	m := placeholder.NewTextMap()
	m.Set(testID(1), "Hello")
	m.Set(testID(2), "  padded text \n")
	m.Set(testID(3), "two\nlines")
	m.Set(testID(4), `back\slash`)

	o := newOrchestrator(t, &recordProvider{})
	got, err := o.TranslateAll(context.Background(), m, Request{SourceLang: "English", TargetLang: "French", Budget: 1000})
	require.NoError(t, err)
	assert.Equal(t, m.Entries(), got.Entries())
}

func TestTranslateAllAppliesTranslation(t *testing.T) {
	m := placeholder.NewTextMap()
	m.Set(testID(1), " Hello ")
	m.Set(testID(2), "World")

	o := newOrchestrator(t, &recordProvider{transform: func(s string) string { return s + " (fr)" }})
	got, err := o.TranslateAll(context.Background(), m, Request{Budget: 1000})
	require.NoError(t, err)

	v1, _ := got.Get(testID(1))
	v2, _ := got.Get(testID(2))
	assert.Equal(t, " Hello (fr) ", v1)
	assert.Equal(t, "World (fr)", v2)
	assert.Equal(t, 1, o.Stats().Chunks)
	assert.Equal(t, 10, o.Stats().TokensIn)
}

func TestBudgetShrinkConverges(t *testing.T) {
	// 每块 k 条记录占 33k-2 字符：预算 480 装 14 条，240 装 7 条，120 装 3 条
	m := segmentMap(30)
	provider := &recordProvider{limit: 120}
	o := newOrchestrator(t, provider)

	got, err := o.TranslateAll(context.Background(), m, Request{Budget: 480})
	require.NoError(t, err)
	assert.Equal(t, m.Entries(), got.Entries())

	stats := o.Stats()
	maxShrinks := int(math.Ceil(math.Log2(480.0 / 120.0)))
	assert.LessOrEqual(t, stats.BudgetShrinks, maxShrinks)
	assert.Equal(t, 120, stats.FinalBudget, "halved budget persists for later chunks")
	assert.Equal(t, 10, stats.Chunks)
	assert.Equal(t, 12, stats.Requests)

	for _, payload := range provider.payloads[2:] {
		assert.LessOrEqual(t, utf8.RuneCountInString(payload), 120)
	}
}

func TestBudgetExhausted(t *testing.T) {
	m := segmentMap(30)
	provider := &recordProvider{limit: 50}
	o := newOrchestrator(t, provider)

	got, err := o.TranslateAll(context.Background(), m, Request{Budget: 480})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrBudgetExhausted))
	assert.Equal(t, 3, o.Stats().Requests)

	var te *TranslationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.Chunk)
	assert.True(t, providers.IsContextLengthExceeded(err), "cause is preserved")
	assert.True(t, errors.Is(err, ErrBudgetExceeded), "last recoverable failure is wrapped")
}

func TestClassifyProviderError(t *testing.T) {
	exceeded := classifyProviderError(providers.NewError(providers.ErrCodeContextLength, "too long"), 2, 120)
	assert.Equal(t, ErrCodeBudgetExceeded, exceeded.Code)
	assert.True(t, exceeded.IsRetryable())
	assert.True(t, errors.Is(exceeded, ErrBudgetExceeded))
	assert.Equal(t, 2, exceeded.Chunk)
	assert.Contains(t, exceeded.Error(), "budget 120")

	other := classifyProviderError(providers.NewError(providers.ErrCodeAPI, "boom"), 1, 120)
	assert.Equal(t, ErrCodeProvider, other.Code)
	assert.False(t, other.IsRetryable())
	assert.True(t, errors.Is(other, ErrProvider))
}

func TestMaxAttemptsOption(t *testing.T) {
	m := segmentMap(30)
	o := newOrchestrator(t, &recordProvider{limit: 50}, WithMaxAttempts(5))

	_, err := o.TranslateAll(context.Background(), m, Request{Budget: 480})
	require.NoError(t, err, "budget 60 fits one record per chunk")
	assert.Equal(t, 60, o.Stats().FinalBudget)
	assert.Equal(t, 3, o.Stats().BudgetShrinks)
}

func TestProtocolViolationAborts(t *testing.T) {
	provider := new(test.MockProvider)
	provider.On("Translate", mock.Anything, mock.Anything).
		Return(&providers.ProviderResponse{Text: "I cannot help with that."}, nil)

	o := newOrchestrator(t, provider)
	got, err := o.TranslateAll(context.Background(), segmentMap(3), Request{Budget: 1000})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrProtocolViolation))

	var te *TranslationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.Chunk)
	provider.AssertNumberOfCalls(t, "Translate", 1)
}

func TestProviderErrorNotRetried(t *testing.T) {
	provider := new(test.MockProvider)
	provider.On("Translate", mock.Anything, mock.Anything).
		Return(nil, providers.NewError(providers.ErrCodeAPI, "boom"))

	o := newOrchestrator(t, provider)
	_, err := o.TranslateAll(context.Background(), segmentMap(3), Request{Budget: 1000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProvider))
	assert.False(t, errors.Is(err, ErrBudgetExhausted))
	assert.Equal(t, 0, o.Stats().BudgetShrinks)
	provider.AssertNumberOfCalls(t, "Translate", 1)
}

func TestRequestCarriesInstruction(t *testing.T) {
	provider := new(test.MockProvider)
	provider.On("Translate", mock.Anything, mock.MatchedBy(func(req *providers.ProviderRequest) bool {
		return strings.Contains(req.Instruction, "from English to German") &&
			strings.Contains(req.Instruction, "Keep product names") &&
			req.Model == "gpt-4o" &&
			strings.HasPrefix(req.Text, testID(0)+": segment number 00")
	})).Return(&providers.ProviderResponse{Text: testID(0) + ": Abschnitt 00"}, nil)

	o := newOrchestrator(t, provider, WithInstruction("Keep product names"))
	got, err := o.TranslateAll(context.Background(), segmentMap(1),
		Request{SourceLang: "English", TargetLang: "German", Model: "gpt-4o", Budget: 1000})
	require.NoError(t, err)
	v, _ := got.Get(testID(0))
	assert.Equal(t, "Abschnitt 00", v)
	provider.AssertExpectations(t)
}

func TestGlossaryAndCacheResolveLocally(t *testing.T) {
	m := placeholder.NewTextMap()
	m.Set(testID(1), " Company Name ")
	m.Set(testID(2), "segment")

	cache := NewMemoryCache()
	req := Request{SourceLang: "en", TargetLang: "fr", Model: "m", Budget: 1000}

	first := newOrchestrator(t, &recordProvider{transform: strings.ToUpper},
		WithCache(cache), WithGlossary(mapGlossary{"Company Name": "ACME"}))
	got, err := first.TranslateAll(context.Background(), m, req)
	require.NoError(t, err)
	v1, _ := got.Get(testID(1))
	v2, _ := got.Get(testID(2))
	assert.Equal(t, " ACME ", v1)
	assert.Equal(t, "SEGMENT", v2)
	assert.Equal(t, 1, first.Stats().GlossaryHits)
	assert.Equal(t, 1, first.Stats().CacheMisses)
	assert.EqualValues(t, 1, first.Stats().CacheEntries)

	silent := new(test.MockProvider)
	second := newOrchestrator(t, silent, WithCache(cache), WithGlossary(mapGlossary{"Company Name": "ACME"}))
	got, err = second.TranslateAll(context.Background(), m, req)
	require.NoError(t, err)
	v2, _ = got.Get(testID(2))
	assert.Equal(t, "SEGMENT", v2)
	assert.Equal(t, 1, second.Stats().CacheHits)
	assert.Equal(t, 0, second.Stats().CacheMisses)
	silent.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)

	refresh := &recordProvider{}
	third := newOrchestrator(t, refresh, WithCache(cache), WithRefreshCache(true))
	_, err = third.TranslateAll(context.Background(), m, req)
	require.NoError(t, err)
	assert.Len(t, refresh.payloads, 1, "refresh skips cache reads")
}

func TestTranslateAllEmptyMap(t *testing.T) {
	provider := new(test.MockProvider)
	o := newOrchestrator(t, provider)

	got, err := o.TranslateAll(context.Background(), placeholder.NewTextMap(), Request{Budget: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	provider.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)
}

func TestTranslateAllRejectsBadBudget(t *testing.T) {
	o := newOrchestrator(t, &recordProvider{})
	_, err := o.TranslateAll(context.Background(), segmentMap(1), Request{Budget: 0})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestTranslateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(t, &recordProvider{})
	_, err := o.TranslateAll(ctx, segmentMap(2), Request{Budget: 100})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProgressCallback(t *testing.T) {
	var calls [][2]int
	o := newOrchestrator(t, &recordProvider{}, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	_, err := o.TranslateAll(context.Background(), segmentMap(6), Request{Budget: 70})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestNewOrchestratorRequiresProvider(t *testing.T) {
	_, err := NewOrchestrator(nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRewrap(t *testing.T) {
	assert.Equal(t, "  Bonjour\n", Rewrap("  Hello\n", "Bonjour"))
	assert.Equal(t, "Bonjour", Rewrap("Hello", "  Bonjour  "))
	assert.Equal(t, " x y ", Rewrap(" a b ", "x y"))
}
