package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	. "github.com/smartystreets/goconvey/convey"

	"budgetpilot/internal/pkg/ctxutil"
	httputil "budgetpilot/internal/pkg/http"
	"budgetpilot/internal/pkg/jwt"
)

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	Convey("Auth 中间件", t, func() {
		j := jwt.NewJWT("secret", time.Hour)

		var seenUser string
		r := gin.New()
		r.GET("/me", Auth(j), func(c *gin.Context) {
			seenUser, _ = ctxutil.GetUserID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		Convey("有效 token 注入 user_id", func() {
			token, err := j.GenerateToken("u1")
			So(err, ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			So(serve(r, req).Code, ShouldEqual, http.StatusOK)
			So(seenUser, ShouldEqual, "u1")
		})

		Convey("缺少 header", func() {
			w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Body.String(), ShouldContainSubstring, "40101")
		})

		Convey("非 Bearer 方案", func() {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Basic abc")
			So(serve(r, req).Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("过期 token", func() {
			token, _ := jwt.NewJWT("secret", -time.Minute).GenerateToken("u1")
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := serve(r, req)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Body.String(), ShouldContainSubstring, "40102")
			So(seenUser, ShouldEqual, "")
		})
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	Convey("RequestID 中间件", t, func() {
		var fromCtx string
		r := gin.New()
		r.Use(RequestID())
		r.GET("/", func(c *gin.Context) {
			fromCtx, _ = ctxutil.GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		Convey("透传调用方的请求ID", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, "abc")
			w := serve(r, req)
			So(w.Header().Get(RequestIDHeader), ShouldEqual, "abc")
			So(fromCtx, ShouldEqual, "abc")
		})

		Convey("没有时生成", func() {
			w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Header().Get(RequestIDHeader), ShouldNotBeEmpty)
			So(fromCtx, ShouldEqual, w.Header().Get(RequestIDHeader))
		})
	})
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	Convey("CORS 中间件", t, func() {
		r := gin.New()
		r.Use(CORS([]string{"https://app.example.com"}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		Convey("允许的来源", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "https://app.example.com")
			w := serve(r, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example.com")
		})

		Convey("未允许的来源", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "https://evil.example.com")
			w := serve(r, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})

		Convey("预检请求直接返回", func() {
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set("Origin", "https://app.example.com")
			So(serve(r, req).Code, ShouldEqual, http.StatusNoContent)
		})
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	Convey("Recovery 捕获 panic", t, func() {
		var logs bytes.Buffer
		prev := log.Logger
		log.Logger = zerolog.New(&logs)
		defer func() { log.Logger = prev }()

		j := jwt.NewJWT("secret", time.Hour)
		token, err := j.GenerateToken("u-panic")
		So(err, ShouldBeNil)

		r := gin.New()
		r.Use(Recovery(), RequestID())
		r.GET("/boom/:id", Auth(j), func(c *gin.Context) { panic("boom") })

		req := httptest.NewRequest(http.MethodGet, "/boom/1", nil)
		req.Header.Set(RequestIDHeader, "req-panic")
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)

		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		var body httputil.ErrorResponse
		So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
		So(body.Code, ShouldEqual, 50000)
		So(body.Message, ShouldEqual, "Internal Server Error")

		var entry map[string]any
		So(json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &entry), ShouldBeNil)
		So(entry["message"], ShouldEqual, "Handler panicked")
		So(entry["panic"], ShouldEqual, "boom")
		So(entry["route"], ShouldEqual, "/boom/:id")
		So(entry["request_id"], ShouldEqual, "req-panic")
		So(entry["user_id"], ShouldEqual, "u-panic")
		So(entry["stack"], ShouldNotBeEmpty)
	})
}
