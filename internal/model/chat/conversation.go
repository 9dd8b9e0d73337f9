package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String 返回角色的字符串表示
func (r Role) String() string {
	return string(r)
}

// 会话 meta 中使用的 key
const (
	MetaStep        = "step"
	MetaLastError   = "last_error"
	MetaLastUpdated = "last_updated"
)

// 消息 metadata 中使用的 key
const (
	MetadataSource     = "source"
	MetadataConfidence = "confidence"
	MetadataStructured = "structured"
	MetadataError      = "error"
	MetadataOption     = "option"

	SourceGeneration = "generation"
)

// StepGreeting 新会话的初始步骤
const StepGreeting = "greeting"

// Conversation 会话实体
// 消息按追加顺序保存，不重排、不修改
type Conversation struct {
	ID        string         `bson:"id" json:"id"` // 会话ID（UUID），首次保存时分配
	UserID    string         `bson:"user_id" json:"user_id"`
	Title     string         `bson:"title" json:"title"`
	Messages  []Message      `bson:"messages" json:"messages"`
	Meta      map[string]any `bson:"meta" json:"meta"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
}

// Message 会话消息，追加后不可变
type Message struct {
	Role      Role           `bson:"role" json:"role"`
	Text      string         `bson:"text" json:"text"`
	Options   []string       `bson:"options,omitempty" json:"options,omitempty"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}

// NewConversation 创建未保存的会话
func NewConversation(userID, title string) *Conversation {
	return &Conversation{
		UserID:   userID,
		Title:    title,
		Messages: []Message{},
		Meta:     map[string]any{},
	}
}

// Append 追加消息
func (c *Conversation) Append(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	c.Messages = append(c.Messages, msg)
}

// SetMeta 设置会话状态
func (c *Conversation) SetMeta(key string, value any) {
	if c.Meta == nil {
		c.Meta = map[string]any{}
	}
	c.Meta[key] = value
}

// Tail 最近 n 条消息
func (c *Conversation) Tail(n int) []Message {
	if n <= 0 || len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}

// OwnedBy 是否属于该用户
func (c *Conversation) OwnedBy(userID string) bool {
	return c.UserID == userID
}

// Collection 返回集合名称
func (c *Conversation) Collection() string { return "conversations" }

// EnsureIndexes 创建和维护索引
func (c *Conversation) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(c.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_user_updated"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
