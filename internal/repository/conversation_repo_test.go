package repository

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetpilot/internal/model/chat"
)

func TestStampForSave(t *testing.T) {
	Convey("stampForSave 只修改副本", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("新会话分配 ID 与创建时间", func() {
			conv := chat.NewConversation("u1", "t")
			doc := stampForSave(conv, now)

			So(doc, ShouldNotPointTo, conv)
			So(doc.ID, ShouldNotBeEmpty)
			So(doc.CreatedAt, ShouldEqual, now)
			So(doc.UpdatedAt, ShouldEqual, now)
			So(conv.ID, ShouldBeEmpty)
		})

		Convey("已有 ID 只刷新更新时间", func() {
			conv := chat.NewConversation("u1", "t")
			conv.ID = "c1"
			created := conv.CreatedAt
			doc := stampForSave(conv, now)

			So(doc.ID, ShouldEqual, "c1")
			So(doc.CreatedAt, ShouldEqual, created)
			So(doc.UpdatedAt, ShouldEqual, now)
			So(conv.UpdatedAt, ShouldNotEqual, now)
		})
	})
}

func TestConversationRepo_SaveFailureLeavesInput(t *testing.T) {
	Convey("写入失败时入参不被修改", t, func() {
		client, err := mongo.Connect(context.Background(), options.Client().
			ApplyURI("mongodb://127.0.0.1:1").
			SetServerSelectionTimeout(50*time.Millisecond))
		So(err, ShouldBeNil)
		defer client.Disconnect(context.Background())

		repo := NewConversationRepo(client.Database("budgetpilot_unreachable"))
		conv := chat.NewConversation("u1", "t")
		updated := conv.UpdatedAt

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		saved, err := repo.Save(ctx, conv)
		So(err, ShouldNotBeNil)
		So(saved, ShouldBeNil)
		So(conv.ID, ShouldBeEmpty)
		So(conv.UpdatedAt, ShouldEqual, updated)
	})
}
