package finance

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionType 收支类型
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Normalize 小写化，未知类型原样保留
func (t TransactionType) Normalize() TransactionType {
	return TransactionType(strings.ToLower(strings.TrimSpace(string(t))))
}

// Transaction 交易记录（由账本服务写入，这里只读）
type Transaction struct {
	ID          string          `bson:"id" json:"id"`
	UserID      string          `bson:"user_id" json:"user_id"`
	Type        TransactionType `bson:"type" json:"type"`
	Category    string          `bson:"category,omitempty" json:"category,omitempty"`
	Amount      float64         `bson:"amount" json:"amount"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Date        *time.Time      `bson:"date,omitempty" json:"date,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (t *Transaction) Collection() string { return "transactions" }

// EnsureIndexes 创建和维护索引
func (t *Transaction) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(t.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_user_date"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
