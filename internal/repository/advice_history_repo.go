package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetpilot/internal/model/advice"
	"budgetpilot/internal/pkg/id"
)

// AdviceHistoryRepository 理财建议历史，只追加
type AdviceHistoryRepository interface {
	Save(ctx context.Context, h *advice.History) (*advice.History, error)
	FindByID(ctx context.Context, id string) (*advice.History, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]*advice.History, error)
}

// AdviceHistoryRepo MongoDB 建议历史仓库
type AdviceHistoryRepo struct {
	coll *mongo.Collection
}

// NewAdviceHistoryRepo 创建建议历史仓库
func NewAdviceHistoryRepo(db *mongo.Database) *AdviceHistoryRepo {
	var h advice.History
	return &AdviceHistoryRepo{coll: db.Collection(h.Collection())}
}

// Save 分配 ID 与创建时间后插入，返回写入的副本
func (r *AdviceHistoryRepo) Save(ctx context.Context, h *advice.History) (*advice.History, error) {
	doc := *h
	if doc.ID == "" {
		doc.ID = id.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByID 根据ID查询，不存在返回 ErrNotFound
func (r *AdviceHistoryRepo) FindByID(ctx context.Context, id string) (*advice.History, error) {
	var h advice.History
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// FindByUser 用户的建议历史，最新的在前；limit<=0 不限制
func (r *AdviceHistoryRepo) FindByUser(ctx context.Context, userID string, limit int) ([]*advice.History, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	list := []*advice.History{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
