package gemini

import (
	"encoding/hex"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// StrategyKind 凭证附加方式
type StrategyKind string

const (
	StrategyQueryKey  StrategyKind = "query_key"       // ?key=<value>
	StrategyBearer    StrategyKind = "bearer"          // Authorization: Bearer <value>
	StrategyDelegated StrategyKind = "delegated_oauth" // 委托凭证提供方换取的 Bearer token
)

// String 返回策略名
func (k StrategyKind) String() string {
	return string(k)
}

const (
	oauthTokenPrefix  = "ya29."
	bearerPrefix      = "Bearer "
	apiKeyPrefix      = "AIza"
	defaultKeyMinLen  = 35
	defaultKeyMaxLen  = 45
	queryKeyParamName = "key"
)

// Credential 一次请求使用的凭证策略
// Ambiguous 为 true 表示分类来自启发式猜测，调用方需要准备改判为 query key
type Credential struct {
	Kind      StrategyKind
	Secret    string
	Ambiguous bool
}

// Apply 将凭证附加到请求上
func (c Credential) Apply(req *http.Request) {
	switch c.Kind {
	case StrategyQueryKey:
		q := req.URL.Query()
		q.Set(queryKeyParamName, c.Secret)
		req.URL.RawQuery = q.Encode()
	case StrategyBearer, StrategyDelegated:
		req.Header.Set("Authorization", bearerPrefix+c.Secret)
	}
}

// Fingerprint 凭证指纹，仅用于日志关联，不可逆
func (c Credential) Fingerprint() string {
	return Fingerprint(c.Secret)
}

// Fingerprint 计算秘密值的短指纹
func Fingerprint(secret string) string {
	if secret == "" {
		return "none"
	}
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}

// Resolver 根据原始凭证字符串的形态推断初始策略
type Resolver struct {
	keyMinLen int
	keyMaxLen int
}

// NewResolver 创建凭证分类器，minLen/maxLen 为 API key 长度区间（<=0 使用默认值）
func NewResolver(minLen, maxLen int) *Resolver {
	if minLen <= 0 {
		minLen = defaultKeyMinLen
	}
	if maxLen <= 0 {
		maxLen = defaultKeyMaxLen
	}
	return &Resolver{keyMinLen: minLen, keyMaxLen: maxLen}
}

// Resolve 纯函数分类，不会失败：
//  1. 空白 -> 委托 OAuth（token 由执行器在发请求前获取）
//  2. OAuth token 前缀 -> Bearer
//  3. API key 前缀或长度落在区间内 -> query key
//  4. 其他 -> Bearer，标记 Ambiguous
func (r *Resolver) Resolve(raw string) Credential {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Credential{Kind: StrategyDelegated}
	}

	if strings.HasPrefix(value, bearerPrefix) {
		return Credential{Kind: StrategyBearer, Secret: strings.TrimSpace(strings.TrimPrefix(value, bearerPrefix))}
	}
	if strings.HasPrefix(value, oauthTokenPrefix) {
		return Credential{Kind: StrategyBearer, Secret: value}
	}

	if strings.HasPrefix(value, apiKeyPrefix) || (len(value) >= r.keyMinLen && len(value) <= r.keyMaxLen) {
		return Credential{Kind: StrategyQueryKey, Secret: value}
	}

	return Credential{Kind: StrategyBearer, Secret: value, Ambiguous: true}
}
