package gemini

import "net/http"

// maxEscalations 升级图上任意路径的最大边数
const maxEscalations = 2

// escalation 认证失败后的策略升级状态
//
// 升级图（固定三节点）:
//
//	bearer(ambiguous) -> query_key -> delegated_oauth
//	bearer            -> delegated_oauth
//	query_key         -> delegated_oauth
//
// 每个策略最多尝试一次，delegated_oauth 为终点。
type escalation struct {
	initial Credential
	tried   map[StrategyKind]bool
	count   int
}

func newEscalation(initial Credential) *escalation {
	return &escalation{
		initial: initial,
		tried:   map[StrategyKind]bool{initial.Kind: true},
	}
}

// isAuthFailure 401/403 触发升级
func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// next 返回 current 之后应尝试的策略种类；ok=false 表示图上已无可走的边
func (e *escalation) next(current Credential) (StrategyKind, bool) {
	if e.count >= maxEscalations {
		return "", false
	}

	switch current.Kind {
	case StrategyBearer:
		if e.initial.Ambiguous && !e.tried[StrategyQueryKey] {
			return StrategyQueryKey, true
		}
		if !e.tried[StrategyDelegated] {
			return StrategyDelegated, true
		}
	case StrategyQueryKey:
		if !e.tried[StrategyDelegated] {
			return StrategyDelegated, true
		}
	}
	return "", false
}

// mark 记录一次升级；无论目标策略是否可用都消耗该节点
func (e *escalation) mark(kind StrategyKind, switched bool) {
	e.tried[kind] = true
	if switched {
		e.count++
	}
}
