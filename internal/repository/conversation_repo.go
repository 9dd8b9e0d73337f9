package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetpilot/internal/model/chat"
	"budgetpilot/internal/pkg/id"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// ConversationRepository 会话存储
// Save 首次保存时分配 ID；并发保存同一会话以最后一次为准
type ConversationRepository interface {
	Save(ctx context.Context, conv *chat.Conversation) (*chat.Conversation, error)
	FindByID(ctx context.Context, id string) (*chat.Conversation, error)
	FindByUser(ctx context.Context, userID string) ([]*chat.Conversation, error)
}

// ConversationRepo MongoDB 会话仓库
type ConversationRepo struct {
	coll *mongo.Collection
}

// NewConversationRepo 创建会话仓库
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	var c chat.Conversation
	return &ConversationRepo{coll: db.Collection(c.Collection())}
}

// Save 整体替换写入（upsert），返回写入的副本；写入失败时入参保持不变
func (r *ConversationRepo) Save(ctx context.Context, conv *chat.Conversation) (*chat.Conversation, error) {
	doc := stampForSave(conv, time.Now())

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"id": doc.ID}, doc, opts); err != nil {
		return nil, err
	}
	return doc, nil
}

// stampForSave 在副本上补 ID 与时间戳
func stampForSave(conv *chat.Conversation, now time.Time) *chat.Conversation {
	doc := *conv
	if doc.ID == "" {
		doc.ID = id.New()
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return &doc
}

// FindByID 根据ID查询，不存在返回 ErrNotFound
func (r *ConversationRepo) FindByID(ctx context.Context, id string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByUser 查询用户的会话，最近更新的在前
func (r *ConversationRepo) FindByUser(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	convs := []*chat.Conversation{}
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
