package gemini

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultOAuthScopes 生成接口所需的 OAuth scope
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/generative-language",
}

// TokenProvider 委托凭证提供方（工作负载身份 / ADC）
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc 函数适配器
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token 实现 TokenProvider
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// GoogleTokenProvider 基于 Application Default Credentials 获取 access token
// 凭证查找失败时不缓存，下次调用重新查找
type GoogleTokenProvider struct {
	scopes []string

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewGoogleTokenProvider 创建 ADC token 提供方
func NewGoogleTokenProvider(scopes []string) *GoogleTokenProvider {
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}
	return &GoogleTokenProvider{scopes: scopes}
}

// Token 返回当前有效的 access token
func (p *GoogleTokenProvider) Token(ctx context.Context) (string, error) {
	ts, err := p.tokenSource(ctx)
	if err != nil {
		return "", err
	}

	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("fetch oauth token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("fetch oauth token: %w", ErrNoCredential)
	}
	return tok.AccessToken, nil
}

func (p *GoogleTokenProvider) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source != nil {
		return p.source, nil
	}

	// 缓存的 source 会在之后的刷新里复用这个 ctx，不能跟随首个请求取消
	creds, err := google.FindDefaultCredentials(context.WithoutCancel(ctx), p.scopes...)
	if err != nil {
		return nil, fmt.Errorf("find default credentials: %w", err)
	}
	p.source = oauth2.ReuseTokenSource(nil, creds.TokenSource)
	return p.source, nil
}
