package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"budgetpilot/internal/model/finance"
)

const monthLayout = "2006-01"

// spending 交易聚合结果，只统计 income/expense 两类
type spending struct {
	income     decimal.Decimal
	expense    decimal.Decimal
	byCategory map[string]decimal.Decimal // 支出按分类
	byMonth    map[string]decimal.Decimal // 支出按月，key 为 YYYY-MM，无日期的不计入
	count      int
}

func summarize(txns []*finance.Transaction) spending {
	s := spending{
		income:     decimal.Zero,
		expense:    decimal.Zero,
		byCategory: map[string]decimal.Decimal{},
		byMonth:    map[string]decimal.Decimal{},
		count:      len(txns),
	}
	for _, t := range txns {
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type.Normalize() {
		case finance.TransactionTypeIncome:
			s.income = s.income.Add(amount)
		case finance.TransactionTypeExpense:
			s.expense = s.expense.Add(amount)
			name := categoryName(t)
			s.byCategory[name] = s.byCategory[name].Add(amount)
			if t.Date != nil {
				month := t.Date.UTC().Format(monthLayout)
				s.byMonth[month] = s.byMonth[month].Add(amount)
			}
		}
	}
	return s
}

func (s spending) net() decimal.Decimal {
	return s.income.Sub(s.expense)
}

// savingRate 百分比；没有收入时为 0
func (s spending) savingRate() decimal.Decimal {
	if !s.income.IsPositive() {
		return decimal.Zero
	}
	return s.net().Div(s.income).Mul(hundred)
}

// share 某分类占总支出的百分比，分类名不区分大小写
func (s spending) share(category string) decimal.Decimal {
	if !s.expense.IsPositive() {
		return decimal.Zero
	}
	total := decimal.Zero
	for name, amount := range s.byCategory {
		if strings.EqualFold(name, category) {
			total = total.Add(amount)
		}
	}
	return total.Div(s.expense).Mul(hundred)
}

// months 按月份升序
func (s spending) months() []categoryTotal {
	out := make([]categoryTotal, 0, len(s.byMonth))
	for m, amount := range s.byMonth {
		out = append(out, categoryTotal{name: m, amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// anonymized 不含描述与ID的摘要，只用于 prompt
func (s spending) anonymized() string {
	var b strings.Builder
	fmt.Fprintf(&b, "totalIncome=%s, totalExpense=%s, transactionCount=%d, categories={",
		s.income.StringFixed(2), s.expense.StringFixed(2), s.count)
	for i, c := range topCategories(s.byCategory, len(s.byCategory)) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", c.name, c.amount.StringFixed(2))
	}
	b.WriteString("}")
	return b.String()
}
