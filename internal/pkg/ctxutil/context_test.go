package ctxutil

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestContextValues(t *testing.T) {
	Convey("context 注入与读取", t, func() {
		ctx := context.Background()

		_, ok := GetUserID(ctx)
		So(ok, ShouldBeFalse)

		_, ok = GetUserID(WithUserID(ctx, ""))
		So(ok, ShouldBeFalse)

		ctx = WithRequestID(WithUserID(ctx, "u1"), "r1")
		userID, ok := GetUserID(ctx)
		So(ok, ShouldBeTrue)
		So(userID, ShouldEqual, "u1")

		requestID, ok := GetRequestID(ctx)
		So(ok, ShouldBeTrue)
		So(requestID, ShouldEqual, "r1")
	})
}
