package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"budgetpilot/internal/ai"
	"budgetpilot/internal/ai/reply"
	"budgetpilot/internal/config"
	"budgetpilot/internal/model/advice"
	"budgetpilot/internal/pkg/gemini"
	"budgetpilot/internal/pkg/metrics"
	"budgetpilot/internal/pkg/ratelimit"
	"budgetpilot/internal/repository"
)

const (
	DefaultAdviceWindowMonths  = 3
	DefaultAdviceYearlyMonths  = 12
	DefaultAdviceHistoryLimit  = 50
	DefaultAdviceSavingsMonths = 6

	noTransactionsAdvice = "No transactions found. Start tracking expenses to get personalized advice."
	noTipsSummary        = "No personalized tips available"
	fallbackSummary      = "AI unavailable, showing rule-based suggestions."
	defaultAdviceSummary = "Unable to generate summary"

	summaryTipCount         = 3
	ruleBasedConfidence     = 60
	fallbackConfidence      = 50
	defaultAdviceConfidence = 50

	citationRuleBased = "rule-based"
	citationFallback  = "fallback"
)

// AdviceProvider 理财建议对外接口
type AdviceProvider interface {
	GenerateAdvice(ctx context.Context, userID, scope string) (*advice.History, error)
	RecommendTips(ctx context.Context, userID string) ([]string, error)
	AnalyzeSpendingPatterns(ctx context.Context, userID string) (*PatternAnalysis, error)
	PredictSavings(ctx context.Context, userID string) (*SavingsPrediction, error)
	ListHistory(ctx context.Context, userID string) ([]*advice.History, error)
	GetHistoryEntry(ctx context.Context, historyID, userID string) (*advice.History, error)
}

var _ AdviceProvider = (*AdviceService)(nil)

// CategorySpend 分类支出
type CategorySpend struct {
	Name   string
	Amount float64
	Share  float64 // 占总支出百分比
}

// PatternAnalysis 支出模式分析
type PatternAnalysis struct {
	TotalExpense    float64
	Categories      []CategorySpend
	Patterns        []string
	Recommendations []string
}

// MonthSpend 月度支出
type MonthSpend struct {
	Month   string // YYYY-MM
	Expense float64
}

// SavingsPrediction 储蓄预测
type SavingsPrediction struct {
	MonthlyTotals    []MonthSpend
	EstimatedSavings float64
	Actions          []string
	ConfidenceScore  int
}

// AdviceService 理财建议
// 职责: 按范围取交易、生成建议（生成后端不可用时退回规则建议）、保存历史
type AdviceService struct {
	generator   ai.Generator
	txnRepo     repository.TransactionRepository
	historyRepo repository.AdviceHistoryRepository
	limiter     ratelimit.Limiter

	enabled       bool
	windowMonths  int
	yearlyMonths  int
	historyLimit  int
	savingsMonths int
	now           func() time.Time
}

// NewAdviceService 创建理财建议服务，cfg 中的零值使用默认值
func NewAdviceService(
	generator ai.Generator,
	txnRepo repository.TransactionRepository,
	historyRepo repository.AdviceHistoryRepository,
	limiter ratelimit.Limiter,
	cfg *config.AdviceConfig,
) *AdviceService {
	s := &AdviceService{
		generator:     generator,
		txnRepo:       txnRepo,
		historyRepo:   historyRepo,
		limiter:       limiter,
		enabled:       cfg.Enabled && generator != nil,
		windowMonths:  cfg.WindowMonths,
		yearlyMonths:  cfg.YearlyMonths,
		historyLimit:  cfg.HistoryLimit,
		savingsMonths: cfg.SavingsMonths,
		now:           time.Now,
	}
	if s.windowMonths <= 0 {
		s.windowMonths = DefaultAdviceWindowMonths
	}
	if s.yearlyMonths <= 0 {
		s.yearlyMonths = DefaultAdviceYearlyMonths
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultAdviceHistoryLimit
	}
	if s.savingsMonths <= 0 {
		s.savingsMonths = DefaultAdviceSavingsMonths
	}
	return s
}

// GenerateAdvice 生成并保存一条建议
// 没有交易记录时返回提示且不保存；生成失败时保存规则建议并标记为 fallback
func (s *AdviceService) GenerateAdvice(ctx context.Context, userID, scope string) (*advice.History, error) {
	sc, ok := advice.ParseScope(scope)
	if !ok {
		return nil, ErrInvalidScope
	}
	if !s.allow(ctx, userID) {
		return nil, ErrRateLimitExceeded
	}

	alog := requestLogger(ctx, "advice").With().Str("user_id", userID).Str("scope", string(sc)).Logger()

	months := s.windowMonths
	if sc == advice.ScopeYearly {
		months = s.yearlyMonths
	}
	txns, err := s.txnRepo.FindByUserSince(ctx, userID, s.since(months))
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txns) == 0 {
		metrics.AdviceGeneratedTotal.WithLabelValues(string(advice.SourceNone)).Inc()
		return &advice.History{
			UserID:    userID,
			Scope:     sc,
			Source:    advice.SourceNone,
			Summary:   noTransactionsAdvice,
			Actions:   []string{},
			Citations: []string{},
			CreatedAt: s.now(),
		}, nil
	}

	sum := summarize(txns)
	var h *advice.History
	if !s.enabled {
		h = ruleBasedAdvice(tipsFor(sum))
	} else {
		text, err := s.generator.Generate(ctx, advicePrompt(sum))
		switch {
		case err == nil:
			h = adviceFromReply(reply.Parse(text))
		case gemini.IsCancelled(err), errors.Is(err, context.Canceled):
			return nil, err
		default:
			alog.Warn().Err(err).Msg("Advice generation failed, falling back to rule-based tips")
			h = fallbackAdvice(tipsFor(sum))
		}
	}
	h.UserID = userID
	h.Scope = sc

	saved, err := s.historyRepo.Save(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("save advice history: %w", err)
	}
	metrics.AdviceGeneratedTotal.WithLabelValues(string(saved.Source)).Inc()
	alog.Info().Str("source", string(saved.Source)).Str("history_id", saved.ID).Msg("Advice generated")
	return saved, nil
}

// RecommendTips 最近窗口内的规则建议
func (s *AdviceService) RecommendTips(ctx context.Context, userID string) ([]string, error) {
	txns, err := s.txnRepo.FindByUserSince(ctx, userID, s.since(s.windowMonths))
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txns) == 0 {
		return []string{noTransactionsTip}, nil
	}
	return RecommendTips(txns), nil
}

// AnalyzeSpendingPatterns 分类支出统计 + 生成后端给出的模式与建议
func (s *AdviceService) AnalyzeSpendingPatterns(ctx context.Context, userID string) (*PatternAnalysis, error) {
	if !s.enabled {
		return nil, ErrAdviceDisabled
	}
	if !s.allow(ctx, userID) {
		return nil, ErrRateLimitExceeded
	}

	txns, err := s.txnRepo.FindByUserSince(ctx, userID, s.since(s.windowMonths))
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	sum := summarize(txns)

	analysis := &PatternAnalysis{
		TotalExpense:    sum.expense.InexactFloat64(),
		Categories:      []CategorySpend{},
		Patterns:        []string{},
		Recommendations: []string{},
	}
	for _, c := range topCategories(sum.byCategory, len(sum.byCategory)) {
		analysis.Categories = append(analysis.Categories, CategorySpend{
			Name:   c.name,
			Amount: c.amount.InexactFloat64(),
			Share:  sum.share(c.name).Round(1).InexactFloat64(),
		})
	}
	if len(analysis.Categories) == 0 {
		return analysis, nil
	}

	text, err := s.generator.Generate(ctx, patternsPrompt(sum))
	if err != nil {
		return nil, err
	}
	p := reply.Parse(text)
	if p.Structured == nil {
		if t := strings.TrimSpace(p.DisplayText); t != "" {
			analysis.Recommendations = []string{t}
		}
		return analysis, nil
	}
	analysis.Patterns = stringList(p.Structured, "patterns")
	analysis.Recommendations = stringList(p.Structured, "recommendations")
	return analysis, nil
}

// PredictSavings 按月度支出预测下月可节省金额
func (s *AdviceService) PredictSavings(ctx context.Context, userID string) (*SavingsPrediction, error) {
	if !s.enabled {
		return nil, ErrAdviceDisabled
	}
	if !s.allow(ctx, userID) {
		return nil, ErrRateLimitExceeded
	}

	txns, err := s.txnRepo.FindByUserSince(ctx, userID, s.since(s.savingsMonths))
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	sum := summarize(txns)

	prediction := &SavingsPrediction{
		MonthlyTotals:   []MonthSpend{},
		Actions:         []string{},
		ConfidenceScore: 0,
	}
	for _, m := range sum.months() {
		prediction.MonthlyTotals = append(prediction.MonthlyTotals, MonthSpend{Month: m.name, Expense: m.amount.InexactFloat64()})
	}
	if len(prediction.MonthlyTotals) == 0 {
		return prediction, nil
	}

	text, err := s.generator.Generate(ctx, savingsPrompt(sum))
	if err != nil {
		return nil, err
	}
	p := reply.Parse(text)
	if p.Structured == nil {
		prediction.ConfidenceScore = defaultAdviceConfidence
		return prediction, nil
	}
	prediction.EstimatedSavings = number(p.Structured, "estimatedSavings", "estimated_savings")
	prediction.Actions = stringList(p.Structured, "actions")
	prediction.ConfidenceScore = confidence(p.Structured, "confidenceScore", "confidence_score")
	return prediction, nil
}

// ListHistory 用户的建议历史，最新的在前
func (s *AdviceService) ListHistory(ctx context.Context, userID string) ([]*advice.History, error) {
	return s.historyRepo.FindByUser(ctx, userID, s.historyLimit)
}

// GetHistoryEntry 查询一条历史并校验归属
func (s *AdviceService) GetHistoryEntry(ctx context.Context, historyID, userID string) (*advice.History, error) {
	h, err := s.historyRepo.FindByID(ctx, historyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find advice history: %w", err)
	}
	if !h.OwnedBy(userID) {
		return nil, ErrHistoryForbidden
	}
	return h, nil
}

func (s *AdviceService) allow(ctx context.Context, userID string) bool {
	if s.limiter == nil || s.limiter.Allow(ctx, userID) {
		return true
	}
	metrics.RateLimitedTotal.Inc()
	return false
}

// since 往前 months 个月的当天零点（UTC）
func (s *AdviceService) since(months int) time.Time {
	t := s.now().UTC().AddDate(0, -months, 0)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ruleBasedAdvice(tips []string) *advice.History {
	summary := noTipsSummary
	if len(tips) > 0 {
		summary = strings.Join(tips[:min(summaryTipCount, len(tips))], "; ")
	}
	return &advice.History{
		Source:          advice.SourceRuleBased,
		Summary:         summary,
		Actions:         tips,
		ConfidenceScore: ruleBasedConfidence,
		Citations:       []string{citationRuleBased},
	}
}

func fallbackAdvice(tips []string) *advice.History {
	return &advice.History{
		Source:          advice.SourceFallback,
		Summary:         fallbackSummary,
		Actions:         tips,
		ConfidenceScore: fallbackConfidence,
		Citations:       []string{citationFallback},
	}
}

// adviceFromReply 没有 JSON 对象时保留默认摘要
func adviceFromReply(p reply.Parsed) *advice.History {
	h := &advice.History{
		Source:          advice.SourceAI,
		Summary:         defaultAdviceSummary,
		Actions:         []string{},
		ConfidenceScore: defaultAdviceConfidence,
		Citations:       []string{},
	}
	obj := p.Structured
	if obj == nil {
		return h
	}
	if summary, ok := obj["summary"].(string); ok && strings.TrimSpace(summary) != "" {
		h.Summary = summary
	}
	h.Actions = stringList(obj, "actions")
	h.EstimatedSavingsNextMonth = number(obj, "estimatedSavingsNextMonth", "estimated_savings_next_month")
	h.ConfidenceScore = confidence(obj, "confidenceScore", "confidence_score")
	h.Citations = stringList(obj, "citations")
	return h
}

func advicePrompt(s spending) string {
	return "Based on these anonymized spending patterns: " + s.anonymized() + ". " +
		"Provide personalized financial advice in JSON format with keys: " +
		"summary (string), actions (array of strings), estimatedSavingsNextMonth (number), " +
		"confidenceScore (0-100), citations (array). " +
		"Do NOT reference any names, emails, or personal identifiers. " +
		"Respond ONLY with valid JSON."
}

func patternsPrompt(s spending) string {
	var b strings.Builder
	for i, c := range topCategories(s.byCategory, len(s.byCategory)) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", c.name, c.amount.StringFixed(2))
	}
	return "Analyze these spending patterns (no PII): Categories: {" + b.String() + "}, " +
		"Total: " + s.expense.StringFixed(2) + ". " +
		"Provide brief analysis in JSON format with 'patterns' array and 'recommendations' array. " +
		"Respond ONLY with valid JSON."
}

func savingsPrompt(s spending) string {
	var b strings.Builder
	for i, m := range s.months() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", m.name, m.amount.StringFixed(2))
	}
	return "Based on these monthly expense totals (no PII): {" + b.String() + "}. " +
		"Predict potential monthly savings and actions to take. " +
		"Return JSON with 'estimatedSavings', 'actions' array, and 'confidenceScore'. " +
		"Respond ONLY with valid JSON."
}

// stringList 取字符串数组，非字符串元素格式化后保留，nil 跳过
func stringList(obj map[string]any, key string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			out = append(out, t)
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}

// number 按顺序取第一个数值字段，缺失或非数值为 0
func number(obj map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := obj[k].(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return 0
}

// confidence 截断到 0-100，缺失时为默认值
func confidence(obj map[string]any, keys ...string) int {
	for _, k := range keys {
		if f, ok := obj[k].(float64); ok {
			return int(math.Max(0, math.Min(100, math.Round(f))))
		}
	}
	return defaultAdviceConfidence
}
