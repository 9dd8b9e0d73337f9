package advice

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scope 建议的统计范围
type Scope string

const (
	ScopeMonthly  Scope = "monthly"
	ScopeYearly   Scope = "yearly"
	ScopeDetailed Scope = "detailed"
)

// ParseScope 空值视为 monthly；未知值返回 false
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case "":
		return ScopeMonthly, true
	case ScopeMonthly, ScopeYearly, ScopeDetailed:
		return Scope(s), true
	default:
		return "", false
	}
}

// Source 建议来源
type Source string

const (
	SourceAI        Source = "ai"
	SourceRuleBased Source = "rule-based"
	SourceFallback  Source = "fallback"
	SourceNone      Source = "none" // 没有交易记录，未生成也未保存
)

// History 一次理财建议的记录
type History struct {
	ID                        string    `bson:"id" json:"id"`
	UserID                    string    `bson:"user_id" json:"user_id"`
	Scope                     Scope     `bson:"scope" json:"scope"`
	Source                    Source    `bson:"source" json:"source"`
	Summary                   string    `bson:"summary" json:"summary"`
	Actions                   []string  `bson:"actions" json:"actions"`
	EstimatedSavingsNextMonth float64   `bson:"estimated_savings_next_month" json:"estimated_savings_next_month"`
	ConfidenceScore           int       `bson:"confidence_score" json:"confidence_score"`
	Citations                 []string  `bson:"citations" json:"citations"`
	CreatedAt                 time.Time `bson:"created_at" json:"created_at"`
}

// OwnedBy 是否属于该用户
func (h *History) OwnedBy(userID string) bool {
	return h.UserID == userID
}

// Collection 返回集合名称
func (h *History) Collection() string { return "ai_history" }

// EnsureIndexes 创建和维护索引
func (h *History) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(h.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
