package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"budgetpilot/internal/model/finance"
	"budgetpilot/internal/repository"
)

const (
	DefaultCurrencySymbol = "₹"

	noTransactionsText  = "User has no transaction data yet."
	unavailableText     = "Transaction data is temporarily unavailable."
	uncategorized       = "Uncategorized"
	noDescription       = "(no description)"
	topCategoryCount    = 5
	recentTransactionsN = 5
)

var hundred = decimal.NewFromInt(100)

// ContextSupplier 为 prompt 提供用户财务摘要，结果原样插入 prompt
type ContextSupplier interface {
	Render(ctx context.Context, userID string) string
}

// FinancialContextService 根据交易记录渲染财务摘要
// 读取失败时降级为固定文案，不向上返回错误
type FinancialContextService struct {
	txnRepo  repository.TransactionRepository
	currency string
}

// NewFinancialContextService 创建财务摘要服务
func NewFinancialContextService(txnRepo repository.TransactionRepository, currency string) *FinancialContextService {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return &FinancialContextService{txnRepo: txnRepo, currency: currency}
}

// Render 实现 ContextSupplier
func (s *FinancialContextService) Render(ctx context.Context, userID string) string {
	txns, err := s.txnRepo.FindByUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load transactions for prompt context")
		return unavailableText
	}
	if len(txns) == 0 {
		return noTransactionsText
	}
	return s.render(txns)
}

type categoryTotal struct {
	name   string
	amount decimal.Decimal
}

func (s *FinancialContextService) render(txns []*finance.Transaction) string {
	sum := summarize(txns)
	income, expense := sum.income, sum.expense

	var b strings.Builder
	b.WriteString("FINANCIAL SUMMARY:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", s.money(income))
	fmt.Fprintf(&b, "- Total Expense: %s\n", s.money(expense))
	fmt.Fprintf(&b, "- Net Savings: %s\n", s.money(sum.net()))
	fmt.Fprintf(&b, "- Savings Rate: %s%%\n", sum.savingRate().StringFixed(1))

	if categories := topCategories(sum.byCategory, topCategoryCount); len(categories) > 0 {
		b.WriteString("\nEXPENSE BY CATEGORY (Top):\n")
		for _, c := range categories {
			share := decimal.Zero
			if expense.IsPositive() {
				share = c.amount.Div(expense).Mul(hundred)
			}
			fmt.Fprintf(&b, "- %s: %s (%s%%)\n", c.name, s.money(c.amount), share.StringFixed(1))
		}
	}

	b.WriteString("\nRECENT TRANSACTIONS:\n")
	for _, t := range recent(txns, recentTransactionsN) {
		kind := strings.ToUpper(string(t.Type))
		if kind == "" {
			kind = "UNKNOWN"
		}
		desc := t.Description
		if desc == "" {
			desc = noDescription
		}
		fmt.Fprintf(&b, "- [%s] %s: %s - %s\n", kind, categoryName(t), s.money(decimal.NewFromFloat(t.Amount)), desc)
	}

	b.WriteString("\n")
	return b.String()
}

func (s *FinancialContextService) money(d decimal.Decimal) string {
	return s.currency + d.StringFixed(2)
}

func categoryName(t *finance.Transaction) string {
	if strings.TrimSpace(t.Category) == "" {
		return uncategorized
	}
	return t.Category
}

// topCategories 金额降序，同额按名称
func topCategories(totals map[string]decimal.Decimal, n int) []categoryTotal {
	out := make([]categoryTotal, 0, len(totals))
	for name, amount := range totals {
		out = append(out, categoryTotal{name: name, amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].amount.Cmp(out[j].amount); c != 0 {
			return c > 0
		}
		return out[i].name < out[j].name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// recent 按日期倒序取前 n 条，无日期视为最早
func recent(txns []*finance.Transaction, n int) []*finance.Transaction {
	sorted := make([]*finance.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return txnDate(sorted[i]).After(txnDate(sorted[j]))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func txnDate(t *finance.Transaction) time.Time {
	if t.Date == nil {
		return time.Time{}
	}
	return *t.Date
}
