package service

import (
	"github.com/shopspring/decimal"

	"budgetpilot/internal/model/finance"
)

const (
	minTips = 4
	maxTips = 6

	noTransactionsTip = "Start tracking your expenses to get personalized tips!"
)

// categoryRule 某分类占支出比例超过阈值时给出的建议
type categoryRule struct {
	category  string
	threshold int64
	tip       string
}

var categoryRules = []categoryRule{
	{"food", 30, "💡 Food spending is above 30% of your budget. Consider meal planning and batch cooking to reduce this category."},
	{"entertainment", 20, "🎬 Entertainment expenses are 20%+ of your budget. Try setting a monthly entertainment cap."},
	{"transport", 15, "🚗 Transportation is taking up over 15% of your budget. Explore carpooling or public transit options."},
}

var lateCategoryRules = []categoryRule{
	{"utilities", 10, "💡 Utilities are over 10%. Audit your subscriptions and energy usage for quick savings."},
	{"shopping", 20, "🛍️ Shopping expenses are significant. Consider a 48-hour rule before non-essential purchases."},
}

const (
	lowSavingsTip    = "⚠️ Your savings rate is below 10%. Try cutting discretionary spending to improve financial security."
	highSavingsTip   = "✨ Great job! Your saving rate is 20%+. Keep up the excellent financial discipline!"
	trackTip         = "📊 Track your expenses regularly to identify spending patterns and opportunities."
	emergencyFundTip = "💰 Build an emergency fund equal to 3-6 months of living expenses."
)

var (
	lowSavingsRate  = decimal.NewFromInt(10)
	highSavingsRate = decimal.NewFromInt(20)
)

// RecommendTips 按支出结构给出规则建议，4 到 6 条
func RecommendTips(txns []*finance.Transaction) []string {
	return tipsFor(summarize(txns))
}

func tipsFor(s spending) []string {
	tips := make([]string, 0, maxTips+2)
	apply := func(rules []categoryRule) {
		for _, r := range rules {
			if s.share(r.category).GreaterThan(decimal.NewFromInt(r.threshold)) {
				tips = append(tips, r.tip)
			}
		}
	}

	rate := s.savingRate()
	apply(categoryRules)
	if rate.LessThan(lowSavingsRate) {
		tips = append(tips, lowSavingsTip)
	}
	apply(lateCategoryRules)
	if rate.GreaterThanOrEqual(highSavingsRate) {
		tips = append(tips, highSavingsTip)
	}

	for _, filler := range []string{trackTip, emergencyFundTip} {
		if len(tips) < minTips {
			tips = append(tips, filler)
		}
	}
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}
