package chat

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConversation(t *testing.T) {
	Convey("Conversation 辅助方法", t, func() {
		conv := NewConversation("u1", "Chat with BudgetPilot")
		So(conv.Messages, ShouldBeEmpty)
		So(conv.Meta, ShouldNotBeNil)

		Convey("Append 保持顺序并补时间戳", func() {
			conv.Append(Message{Role: RoleAssistant, Text: "hi"})
			conv.Append(Message{Role: RoleUser, Text: "hello"})
			So(len(conv.Messages), ShouldEqual, 2)
			So(conv.Messages[0].Text, ShouldEqual, "hi")
			So(conv.Messages[1].Role, ShouldEqual, RoleUser)
			So(conv.Messages[1].Timestamp.IsZero(), ShouldBeFalse)
		})

		Convey("Tail 返回最近 n 条", func() {
			for i := 0; i < 20; i++ {
				conv.Append(Message{Role: RoleUser, Text: string(rune('a' + i))})
			}
			tail := conv.Tail(15)
			So(len(tail), ShouldEqual, 15)
			So(tail[0].Text, ShouldEqual, "f")
			So(len(conv.Tail(100)), ShouldEqual, 20)
		})

		Convey("SetMeta 在 nil map 上也可用", func() {
			c := &Conversation{}
			c.SetMeta(MetaStep, StepGreeting)
			So(c.Meta[MetaStep], ShouldEqual, StepGreeting)
		})

		Convey("OwnedBy 比较用户", func() {
			So(conv.OwnedBy("u1"), ShouldBeTrue)
			So(conv.OwnedBy("u2"), ShouldBeFalse)
		})
	})
}
