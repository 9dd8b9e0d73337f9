package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"budgetpilot/internal/config"
	"budgetpilot/internal/pkg/logger"
	"budgetpilot/internal/pkg/metrics"
)

const (
	maxResponseBytes = 8 << 20
	errorBodyLimit   = 512
	defaultTimeout   = 30 * time.Second
)

// Client 生成接口执行器
// 职责: 凭证协商、失败重试、401/403 策略升级、响应文本提取
type Client struct {
	endpoint       string
	apiKey         string
	maxAttempts    int
	requestTimeout time.Duration

	httpClient *http.Client
	resolver   *Resolver
	tokens     TokenProvider
	backoff    *BackoffScheduler
	logger     zerolog.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenProvider 替换委托凭证提供方
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithBackoff 替换退避调度器
func WithBackoff(b *BackoffScheduler) Option {
	return func(c *Client) { c.backoff = b }
}

// NewClient 创建执行器
func NewClient(cfg *config.GeminiConfig, opts ...Option) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		endpoint:       fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
		apiKey:         cfg.APIKey,
		maxAttempts:    maxAttempts,
		requestTimeout: timeout,
		httpClient:     &http.Client{},
		resolver:       NewResolver(cfg.APIKeyMinLen, cfg.APIKeyMaxLen),
		tokens:         NewGoogleTokenProvider(cfg.OAuthScopes),
		backoff:        NewBackoffScheduler(cfg.BackoffBase, cfg.MaxJitter),
		logger:         logger.Component("gemini").With().Str("model", cfg.Model).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate 发送 prompt 并返回模型文本
// 失败类型: ConfigurationError / UpstreamError / CancelledError
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.execute(ctx, prompt)

	outcome := "success"
	switch {
	case err == nil:
	case IsCancelled(err):
		outcome = "cancelled"
	default:
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			outcome = "configuration"
		} else {
			outcome = "upstream"
		}
	}
	metrics.GenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return text, err
}

func (c *Client) execute(ctx context.Context, prompt string) (string, error) {
	cred := c.resolver.Resolve(c.apiKey)
	raw := cred.Secret

	if cred.Kind == StrategyDelegated {
		token, err := c.delegatedToken(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", &CancelledError{Err: ctx.Err()}
			}
			c.logger.Error().Err(err).Msg("No API key configured and delegated credential lookup failed")
			return "", &ConfigurationError{Err: fmt.Errorf("%w: %v", ErrNoCredential, err)}
		}
		cred.Secret = token
	}

	payload, err := json.Marshal(newGenerateRequest(prompt))
	if err != nil {
		return "", &ConfigurationError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	esc := newEscalation(cred)
	calls := 0
	var last *UpstreamError

	for attempt := 1; attempt <= c.maxAttempts; {
		if err := ctx.Err(); err != nil {
			return "", &CancelledError{Err: err}
		}

		status, body, err := c.send(ctx, cred, payload)
		calls++

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", &CancelledError{Err: ctx.Err()}
			}
			metrics.GenerationAttemptsTotal.WithLabelValues(cred.Kind.String(), "transport_error").Inc()
			c.logger.Warn().Err(err).
				Int("attempt", attempt).
				Str("strategy", cred.Kind.String()).
				Msg("Generation request failed")
			last = &UpstreamError{Err: err}

		case status >= 200 && status < 300:
			metrics.GenerationAttemptsTotal.WithLabelValues(cred.Kind.String(), "success").Inc()
			c.logger.Debug().
				Int("attempt", attempt).
				Int("calls", calls).
				Str("strategy", cred.Kind.String()).
				Msg("Generation request succeeded")
			return ExtractText(body), nil

		default:
			metrics.GenerationAttemptsTotal.WithLabelValues(cred.Kind.String(), fmt.Sprintf("status_%d", status)).Inc()
			c.logger.Warn().
				Int("attempt", attempt).
				Int("status", status).
				Str("strategy", cred.Kind.String()).
				Str("credential", cred.Fingerprint()).
				Str("body", redactSecret(snippet(body, errorBodyLimit), cred.Secret)).
				Msg("Generation request returned non-2xx")
			last = &UpstreamError{StatusCode: status, Body: redactSecret(snippet(body, errorBodyLimit), cred.Secret)}

			if isAuthFailure(status) {
				if next, ok := c.escalate(ctx, esc, cred, raw); ok {
					metrics.GenerationEscalationsTotal.WithLabelValues(cred.Kind.String(), next.Kind.String()).Inc()
					c.logger.Info().
						Str("from", cred.Kind.String()).
						Str("to", next.Kind.String()).
						Msg("Escalating credential strategy")
					cred = next
					continue
				}
			}
		}

		if attempt == c.maxAttempts {
			break
		}
		if err := c.backoff.Wait(ctx, attempt); err != nil {
			return "", err
		}
		attempt++
	}

	last.Attempts = calls
	return "", last
}

// escalate 沿升级图寻找下一个可用策略；委托凭证获取失败时跳过该节点
func (c *Client) escalate(ctx context.Context, esc *escalation, current Credential, raw string) (Credential, bool) {
	for {
		kind, ok := esc.next(current)
		if !ok {
			return Credential{}, false
		}

		switch kind {
		case StrategyQueryKey:
			esc.mark(kind, true)
			return Credential{Kind: StrategyQueryKey, Secret: raw}, true
		case StrategyDelegated:
			token, err := c.delegatedToken(ctx)
			if err != nil {
				c.logger.Warn().Err(err).Msg("Delegated credential unavailable, skipping escalation")
				esc.mark(kind, false)
				continue
			}
			esc.mark(kind, true)
			return Credential{Kind: StrategyDelegated, Secret: token}, true
		default:
			return Credential{}, false
		}
	}
}

func (c *Client) delegatedToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrNoCredential
	}
	return c.tokens.Token(ctx)
}

// send 单次请求，带有限超时
func (c *Client) send(ctx context.Context, cred Credential, payload []byte) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	cred.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.redactURL(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// redactURL 传输层错误的 *url.Error 会带上完整 URL（含 ?key=），替换为不带查询串的 endpoint
func (c *Client) redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{Op: uerr.Op, URL: c.endpoint, Err: uerr.Err}
}

// redactSecret 上游回显凭证时替换掉
func redactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
