package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"budgetpilot/internal/model/advice"
	"budgetpilot/internal/model/chat"
	"budgetpilot/internal/model/finance"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时调用一次
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []Model{
		&chat.Conversation{},
		&finance.Transaction{},
		&advice.History{},
	}
	return EnsureAllIndexes(ctx, db, models...)
}
