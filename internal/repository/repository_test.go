// 仓库集成测试
//
// 运行：
//
//	MONGO_URI=mongodb://localhost:27017 REDIS_ADDR=localhost:6379 go test ./internal/repository -v
//
// 未设置 MONGO_URI 时跳过；未设置 REDIS_ADDR 时跳过缓存相关用例。
// 测试使用独立数据库，结束后删除。
package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetpilot/internal/model/advice"
	"budgetpilot/internal/model/chat"
	"budgetpilot/internal/model/finance"
	"budgetpilot/internal/pkg/cache"
	"budgetpilot/internal/pkg/id"
	"budgetpilot/internal/pkg/mongodb"
)

func setupTestDB(t *testing.T) (*mongo.Database, func()) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}

	db := client.Database("budgetpilot_test_" + id.New()[:8])
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	return db, func() {
		if os.Getenv("KEEP_TEST_DATA") != "true" {
			_ = db.Drop(ctx)
		}
		_ = client.Disconnect(ctx)
	}
}

func TestConversationRepo(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	Convey("ConversationRepo", t, func() {
		ctx := context.Background()
		repo := NewConversationRepo(db)

		Convey("首次保存分配 ID，再次保存整体替换", func() {
			conv := chat.NewConversation("u-save", "Chat with BudgetPilot")
			conv.Append(chat.Message{Role: chat.RoleAssistant, Text: "hello"})

			saved, err := repo.Save(ctx, conv)
			So(err, ShouldBeNil)
			So(saved.ID, ShouldNotBeEmpty)
			So(saved.CreatedAt.IsZero(), ShouldBeFalse)

			saved.Append(chat.Message{Role: chat.RoleUser, Text: "hi"})
			saved.SetMeta(chat.MetaStep, "active")
			_, err = repo.Save(ctx, saved)
			So(err, ShouldBeNil)

			found, err := repo.FindByID(ctx, saved.ID)
			So(err, ShouldBeNil)
			So(len(found.Messages), ShouldEqual, 2)
			So(found.Messages[1].Text, ShouldEqual, "hi")
			So(found.Meta[chat.MetaStep], ShouldEqual, "active")
		})

		Convey("不存在返回 ErrNotFound", func() {
			_, err := repo.FindByID(ctx, id.New())
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("按用户列出，最近更新在前", func() {
			older, err := repo.Save(ctx, chat.NewConversation("u-list", "first"))
			So(err, ShouldBeNil)
			time.Sleep(10 * time.Millisecond)
			_, err = repo.Save(ctx, chat.NewConversation("u-list", "second"))
			So(err, ShouldBeNil)
			time.Sleep(10 * time.Millisecond)
			_, err = repo.Save(ctx, older)
			So(err, ShouldBeNil)

			list, err := repo.FindByUser(ctx, "u-list")
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].Title, ShouldEqual, "first")

			empty, err := repo.FindByUser(ctx, "nobody")
			So(err, ShouldBeNil)
			So(empty, ShouldBeEmpty)
		})
	})
}

func TestTransactionRepo(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	Convey("TransactionRepo.FindByUser 按日期倒序", t, func() {
		ctx := context.Background()
		var model finance.Transaction
		coll := db.Collection(model.Collection())

		d1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		d2 := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
		_, err := coll.InsertMany(ctx, []any{
			finance.Transaction{ID: id.New(), UserID: "u-tx", Type: finance.TransactionTypeExpense, Amount: 10, Date: &d1},
			finance.Transaction{ID: id.New(), UserID: "u-tx", Type: finance.TransactionTypeIncome, Amount: 100, Date: &d2},
			finance.Transaction{ID: id.New(), UserID: "other", Type: finance.TransactionTypeIncome, Amount: 1, Date: &d2},
		})
		So(err, ShouldBeNil)

		txns, err := NewTransactionRepo(db).FindByUser(ctx, "u-tx")
		So(err, ShouldBeNil)
		So(len(txns), ShouldEqual, 2)
		So(txns[0].Amount, ShouldEqual, 100)

		since, err := NewTransactionRepo(db).FindByUserSince(ctx, "u-tx", d1)
		So(err, ShouldBeNil)
		So(len(since), ShouldEqual, 1)
		So(since[0].Amount, ShouldEqual, 100)
	})
}

func TestAdviceHistoryRepo(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	Convey("AdviceHistoryRepo", t, func() {
		ctx := context.Background()
		repo := NewAdviceHistoryRepo(db)

		first, err := repo.Save(ctx, &advice.History{UserID: "u-adv", Scope: advice.ScopeMonthly, Summary: "first"})
		So(err, ShouldBeNil)
		So(first.ID, ShouldNotBeEmpty)
		So(first.CreatedAt.IsZero(), ShouldBeFalse)
		time.Sleep(10 * time.Millisecond)
		_, err = repo.Save(ctx, &advice.History{UserID: "u-adv", Scope: advice.ScopeYearly, Summary: "second"})
		So(err, ShouldBeNil)

		found, err := repo.FindByID(ctx, first.ID)
		So(err, ShouldBeNil)
		So(found.Summary, ShouldEqual, "first")

		list, err := repo.FindByUser(ctx, "u-adv", 10)
		So(err, ShouldBeNil)
		So(len(list), ShouldEqual, 2)
		So(list[0].Summary, ShouldEqual, "second")

		limited, err := repo.FindByUser(ctx, "u-adv", 1)
		So(err, ShouldBeNil)
		So(len(limited), ShouldEqual, 1)

		_, err = repo.FindByID(ctx, id.New())
		So(err, ShouldEqual, ErrNotFound)
	})
}

func TestCachedConversationRepo(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	Convey("CachedConversationRepo 读穿缓存", t, func() {
		ctx := context.Background()
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		rc := cache.NewRedisCacheFromClient(client)
		repo := NewCachedConversationRepo(NewConversationRepo(db), rc, time.Minute)

		saved, err := repo.Save(ctx, chat.NewConversation("u-cache", "cached"))
		So(err, ShouldBeNil)
		defer rc.Delete(ctx, cache.ConversationCacheKey(saved.ID))

		var cached chat.Conversation
		So(rc.Get(ctx, cache.ConversationCacheKey(saved.ID), &cached), ShouldBeNil)
		So(cached.Title, ShouldEqual, "cached")

		So(rc.Delete(ctx, cache.ConversationCacheKey(saved.ID)), ShouldBeNil)
		found, err := repo.FindByID(ctx, saved.ID)
		So(err, ShouldBeNil)
		So(found.UserID, ShouldEqual, "u-cache")
		So(rc.Get(ctx, cache.ConversationCacheKey(saved.ID), &cached), ShouldBeNil)

		_, err = repo.FindByID(ctx, id.New())
		So(err, ShouldEqual, ErrNotFound)
	})
}
