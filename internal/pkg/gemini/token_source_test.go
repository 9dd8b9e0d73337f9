package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// writeAuthorizedUser 写一份指向本地 token 端点的 ADC 文件
func writeAuthorizedUser(t *testing.T, tokenURL string) string {
	path := filepath.Join(t.TempDir(), "adc.json")
	content := fmt.Sprintf(`{
  "type": "authorized_user",
  "client_id": "client",
  "client_secret": "secret",
  "refresh_token": "refresh",
  "token_uri": %q
}`, tokenURL)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTokenProviderFunc(t *testing.T) {
	Convey("TokenProviderFunc 透传结果", t, func() {
		ok := TokenProviderFunc(func(ctx context.Context) (string, error) { return "tok", nil })
		tok, err := ok.Token(context.Background())
		So(err, ShouldBeNil)
		So(tok, ShouldEqual, "tok")

		boom := errors.New("boom")
		bad := TokenProviderFunc(func(ctx context.Context) (string, error) { return "", boom })
		_, err = bad.Token(context.Background())
		So(err, ShouldEqual, boom)
	})
}

func TestGoogleTokenProvider(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&refreshes, 1)
		w.Header().Set("Content-Type", "application/json")
		// expires_in 小于刷新提前量，每次 Token() 都会重新换取
		_, _ = fmt.Fprintf(w, `{"access_token":"ya29.token-%d","token_type":"Bearer","expires_in":1}`, n)
	}))
	defer srv.Close()

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", writeAuthorizedUser(t, srv.URL))

	Convey("GoogleTokenProvider", t, func() {
		p := NewGoogleTokenProvider(nil)
		So(p.scopes, ShouldResemble, DefaultOAuthScopes)

		Convey("首个请求的 ctx 取消后仍能刷新", func() {
			first, cancel := context.WithCancel(context.Background())
			tok, err := p.Token(first)
			So(err, ShouldBeNil)
			So(tok, ShouldStartWith, "ya29.token-")
			cancel()

			tok2, err := p.Token(context.Background())
			So(err, ShouldBeNil)
			So(tok2, ShouldStartWith, "ya29.token-")
			So(tok2, ShouldNotEqual, tok)
			So(atomic.LoadInt32(&refreshes), ShouldBeGreaterThanOrEqualTo, 2)
		})
	})
}

func TestGoogleTokenProvider_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))

	Convey("ADC 文件不存在时返回错误且不缓存", t, func() {
		p := NewGoogleTokenProvider([]string{"scope"})
		_, err := p.Token(context.Background())
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "find default credentials")
		So(p.source, ShouldBeNil)
	})
}
