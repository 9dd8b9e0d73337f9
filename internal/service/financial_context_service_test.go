package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"budgetpilot/internal/model/finance"
)

type fakeTransactionRepo struct {
	txns  []*finance.Transaction
	err   error
	since time.Time
}

func (r *fakeTransactionRepo) FindByUser(ctx context.Context, userID string) ([]*finance.Transaction, error) {
	return r.txns, r.err
}

// FindByUserSince 与 Mongo 实现一致：只返回 since 之后且带日期的记录
func (r *fakeTransactionRepo) FindByUserSince(ctx context.Context, userID string, since time.Time) ([]*finance.Transaction, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.since = since
	out := []*finance.Transaction{}
	for _, t := range r.txns {
		if t.Date != nil && t.Date.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func day(d int) *time.Time {
	t := time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestFinancialContextService_Render(t *testing.T) {
	Convey("FinancialContextService.Render", t, func() {
		ctx := context.Background()

		Convey("没有交易记录", func() {
			svc := NewFinancialContextService(&fakeTransactionRepo{}, "")
			So(svc.Render(ctx, "u1"), ShouldEqual, noTransactionsText)
		})

		Convey("读取失败时降级", func() {
			svc := NewFinancialContextService(&fakeTransactionRepo{err: errors.New("db down")}, "")
			So(svc.Render(ctx, "u1"), ShouldEqual, unavailableText)
		})

		Convey("汇总、分类占比与最近交易", func() {
			repo := &fakeTransactionRepo{txns: []*finance.Transaction{
				{Type: "INCOME", Category: "Salary", Amount: 1000, Date: day(1)},
				{Type: "expense", Category: "Food", Amount: 150.10, Description: "groceries", Date: day(3)},
				{Type: "expense", Category: "Food", Amount: 49.90, Date: day(4)},
				{Type: "expense", Category: "Rent", Amount: 300, Date: day(2)},
				{Type: "expense", Amount: 0.10, Description: "fee"},
				{Type: "transfer", Category: "Savings", Amount: 500, Date: day(5)},
			}}
			out := NewFinancialContextService(repo, "$").Render(ctx, "u1")

			So(out, ShouldStartWith, "FINANCIAL SUMMARY:\n")
			So(out, ShouldContainSubstring, "- Total Income: $1000.00\n")
			So(out, ShouldContainSubstring, "- Total Expense: $500.10\n")
			So(out, ShouldContainSubstring, "- Net Savings: $499.90\n")
			So(out, ShouldContainSubstring, "- Savings Rate: 50.0%\n")

			So(out, ShouldContainSubstring, "EXPENSE BY CATEGORY (Top):\n- Rent: $300.00 (60.0%)\n- Food: $200.00 (40.0%)\n- Uncategorized: $0.10 (0.0%)\n")

			recentIdx := strings.Index(out, "RECENT TRANSACTIONS:")
			So(recentIdx, ShouldBeGreaterThan, 0)
			recentPart := out[recentIdx:]
			So(recentPart, ShouldContainSubstring, "- [TRANSFER] Savings: $500.00 - (no description)\n")
			So(recentPart, ShouldContainSubstring, "- [EXPENSE] Food: $150.10 - groceries\n")
			// 最早的一条（无日期）被截掉
			So(recentPart, ShouldNotContainSubstring, "fee")
			So(strings.Index(recentPart, "Savings"), ShouldBeLessThan, strings.Index(recentPart, "groceries"))
		})

		Convey("默认货币符号", func() {
			repo := &fakeTransactionRepo{txns: []*finance.Transaction{{Type: "income", Amount: 10, Date: day(1)}}}
			out := NewFinancialContextService(repo, "").Render(ctx, "u1")
			So(out, ShouldContainSubstring, "Total Income: ₹10.00")
			So(out, ShouldNotContainSubstring, "EXPENSE BY CATEGORY")
		})
	})
}
