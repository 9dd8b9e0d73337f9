package advice

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseScope(t *testing.T) {
	Convey("ParseScope", t, func() {
		s, ok := ParseScope("")
		So(ok, ShouldBeTrue)
		So(s, ShouldEqual, ScopeMonthly)

		for _, v := range []string{"monthly", "yearly", "detailed"} {
			s, ok = ParseScope(v)
			So(ok, ShouldBeTrue)
			So(string(s), ShouldEqual, v)
		}

		_, ok = ParseScope("weekly")
		So(ok, ShouldBeFalse)
		_, ok = ParseScope("Monthly")
		So(ok, ShouldBeFalse)
	})

	Convey("OwnedBy", t, func() {
		h := &History{UserID: "u1"}
		So(h.OwnedBy("u1"), ShouldBeTrue)
		So(h.OwnedBy("u2"), ShouldBeFalse)
		So(h.Collection(), ShouldEqual, "ai_history")
	})
}
