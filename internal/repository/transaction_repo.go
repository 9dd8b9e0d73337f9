package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetpilot/internal/model/finance"
)

// TransactionRepository 交易记录只读仓库
type TransactionRepository interface {
	FindByUser(ctx context.Context, userID string) ([]*finance.Transaction, error)
	FindByUserSince(ctx context.Context, userID string, since time.Time) ([]*finance.Transaction, error)
}

// TransactionRepo MongoDB 交易仓库
type TransactionRepo struct {
	coll *mongo.Collection
}

// NewTransactionRepo 创建交易仓库
func NewTransactionRepo(db *mongo.Database) *TransactionRepo {
	var t finance.Transaction
	return &TransactionRepo{coll: db.Collection(t.Collection())}
}

// FindByUser 查询用户全部交易，按日期倒序
func (r *TransactionRepo) FindByUser(ctx context.Context, userID string) ([]*finance.Transaction, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// FindByUserSince 查询 since 之后（不含）的交易，没有日期的记录不返回
func (r *TransactionRepo) FindByUserSince(ctx context.Context, userID string, since time.Time) ([]*finance.Transaction, error) {
	return r.find(ctx, bson.M{"user_id": userID, "date": bson.M{"$gt": since}})
}

func (r *TransactionRepo) find(ctx context.Context, filter bson.M) ([]*finance.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var txns []*finance.Transaction
	if err := cur.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}
