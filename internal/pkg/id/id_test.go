package id

import (
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("New 生成 UUIDv7", t, func() {
		seen := make(map[string]bool)
		prev := ""
		for i := 0; i < 100; i++ {
			v := New()
			parsed, err := uuid.Parse(v)
			So(err, ShouldBeNil)
			So(parsed.Version(), ShouldEqual, uuid.Version(7))
			So(seen[v], ShouldBeFalse)
			So(v > prev, ShouldBeTrue)
			seen[v] = true
			prev = v
		}
	})
}
