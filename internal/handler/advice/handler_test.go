package advice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"budgetpilot/internal/model/advice"
	"budgetpilot/internal/pkg/ctxutil"
	"budgetpilot/internal/service"
)

type fakeAdviceService struct {
	entry    *advice.History
	list     []*advice.History
	tips     []string
	patterns *service.PatternAnalysis
	savings  *service.SavingsPrediction
	err      error

	gotUser  string
	gotScope string
	gotID    string
}

func (f *fakeAdviceService) GenerateAdvice(ctx context.Context, userID, scope string) (*advice.History, error) {
	f.gotUser, f.gotScope = userID, scope
	return f.entry, f.err
}

func (f *fakeAdviceService) RecommendTips(ctx context.Context, userID string) ([]string, error) {
	f.gotUser = userID
	return f.tips, f.err
}

func (f *fakeAdviceService) AnalyzeSpendingPatterns(ctx context.Context, userID string) (*service.PatternAnalysis, error) {
	f.gotUser = userID
	return f.patterns, f.err
}

func (f *fakeAdviceService) PredictSavings(ctx context.Context, userID string) (*service.SavingsPrediction, error) {
	f.gotUser = userID
	return f.savings, f.err
}

func (f *fakeAdviceService) ListHistory(ctx context.Context, userID string) ([]*advice.History, error) {
	f.gotUser = userID
	return f.list, f.err
}

func (f *fakeAdviceService) GetHistoryEntry(ctx context.Context, historyID, userID string) (*advice.History, error) {
	f.gotUser, f.gotID = userID, historyID
	return f.entry, f.err
}

func newRouter(svc service.AdviceProvider, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	})

	h := NewHandler(svc)
	g := r.Group("/api/v1/ai")
	g.POST("/advice", h.GenerateAdvice)
	g.GET("/tips", h.RecommendTips)
	g.GET("/patterns", h.AnalyzePatterns)
	g.GET("/savings", h.PredictSavings)
	g.GET("/history", h.ListHistory)
	g.GET("/history/:history_id", h.GetHistoryEntry)
	return r
}

func serve(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func sampleEntry() *advice.History {
	return &advice.History{
		ID:                        "h1",
		UserID:                    "u1",
		Scope:                     advice.ScopeMonthly,
		Source:                    advice.SourceAI,
		Summary:                   "Spend less on food",
		Actions:                   []string{"cook at home"},
		EstimatedSavingsNextMonth: 120.5,
		ConfidenceScore:           80,
		CreatedAt:                 time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC),
	}
}

func TestGenerateAdvice(t *testing.T) {
	Convey("生成建议", t, func() {
		svc := &fakeAdviceService{entry: sampleEntry()}
		r := newRouter(svc, "u1")

		Convey("请求体可以省略", func() {
			w, resp := serve(r, http.MethodPost, "/api/v1/ai/advice", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.gotUser, ShouldEqual, "u1")
			So(svc.gotScope, ShouldEqual, "")

			data := resp["data"].(map[string]any)["advice"].(map[string]any)
			So(data["id"], ShouldEqual, "h1")
			So(data["source"], ShouldEqual, "ai")
			So(data["confidence_score"], ShouldEqual, float64(80))
			So(data["created_at"], ShouldEqual, "2026-03-20T08:00:00Z")
			So(data["citations"], ShouldResemble, []any{})
		})

		Convey("透传 scope", func() {
			w, _ := serve(r, http.MethodPost, "/api/v1/ai/advice", `{"scope":"yearly"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.gotScope, ShouldEqual, "yearly")
		})

		Convey("非法请求体返回 400", func() {
			w, resp := serve(r, http.MethodPost, "/api/v1/ai/advice", `{"scope":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(resp["code"], ShouldEqual, float64(40001))
		})

		Convey("非法 scope 返回 400 并回显原因", func() {
			svc.err = service.ErrInvalidScope
			w, resp := serve(r, http.MethodPost, "/api/v1/ai/advice", `{"scope":"weekly"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(resp["message"], ShouldEqual, service.ErrInvalidScope.Error())
		})

		Convey("限流返回 429", func() {
			svc.err = service.ErrRateLimitExceeded
			w, _ := serve(r, http.MethodPost, "/api/v1/ai/advice", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("未认证返回 401", func() {
			w, _ := serve(newRouter(svc, ""), http.MethodPost, "/api/v1/ai/advice", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestHistoryEndpoints(t *testing.T) {
	Convey("建议历史", t, func() {
		svc := &fakeAdviceService{entry: sampleEntry(), list: []*advice.History{sampleEntry()}}
		r := newRouter(svc, "u1")

		Convey("列表", func() {
			w, resp := serve(r, http.MethodGet, "/api/v1/ai/history", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			data := resp["data"].(map[string]any)
			So(data["total"], ShouldEqual, float64(1))
			So(len(data["history"].([]any)), ShouldEqual, 1)
		})

		Convey("空列表输出 []", func() {
			svc.list = nil
			_, resp := serve(r, http.MethodGet, "/api/v1/ai/history", "")
			So(resp["data"].(map[string]any)["history"], ShouldResemble, []any{})
		})

		Convey("单条", func() {
			w, _ := serve(r, http.MethodGet, "/api/v1/ai/history/h1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.gotID, ShouldEqual, "h1")
			So(svc.gotUser, ShouldEqual, "u1")
		})

		Convey("他人记录返回 403，不存在返回 404", func() {
			svc.err = service.ErrHistoryForbidden
			w, _ := serve(r, http.MethodGet, "/api/v1/ai/history/h1", "")
			So(w.Code, ShouldEqual, http.StatusForbidden)

			svc.err = service.ErrHistoryNotFound
			w, _ = serve(r, http.MethodGet, "/api/v1/ai/history/h1", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestInsightEndpoints(t *testing.T) {
	Convey("规则建议与分析", t, func() {
		svc := &fakeAdviceService{
			tips: []string{"a", "b", "c", "d"},
			patterns: &service.PatternAnalysis{
				TotalExpense: 300,
				Categories:   []service.CategorySpend{{Name: "Food", Amount: 200, Share: 66.67}},
				Patterns:     []string{"weekend spikes"},
			},
			savings: &service.SavingsPrediction{
				MonthlyTotals:    []service.MonthSpend{{Month: "2026-02", Expense: 300}},
				EstimatedSavings: 40,
				ConfidenceScore:  70,
			},
		}
		r := newRouter(svc, "u1")

		Convey("tips", func() {
			w, resp := serve(r, http.MethodGet, "/api/v1/ai/tips", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(resp["data"].(map[string]any)["tips"].([]any)), ShouldEqual, 4)
		})

		Convey("patterns", func() {
			w, resp := serve(r, http.MethodGet, "/api/v1/ai/patterns", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			data := resp["data"].(map[string]any)
			So(data["total_expense"], ShouldEqual, float64(300))
			So(data["categories"].([]any)[0].(map[string]any)["name"], ShouldEqual, "Food")
			So(data["recommendations"], ShouldResemble, []any{})
		})

		Convey("savings", func() {
			w, resp := serve(r, http.MethodGet, "/api/v1/ai/savings", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			data := resp["data"].(map[string]any)
			So(data["estimated_savings"], ShouldEqual, float64(40))
			So(data["monthly_totals"].([]any)[0].(map[string]any)["month"], ShouldEqual, "2026-02")
		})

		Convey("生成关闭时返回 503", func() {
			svc.err = service.ErrAdviceDisabled
			w, _ := serve(r, http.MethodGet, "/api/v1/ai/patterns", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			w, _ = serve(r, http.MethodGet, "/api/v1/ai/savings", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("其他错误返回通用 500", func() {
			svc.err = errors.New("mongo: connection refused")
			w, resp := serve(r, http.MethodGet, "/api/v1/ai/tips", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "mongo")
			So(resp["code"], ShouldEqual, float64(50001))
		})
	})
}
