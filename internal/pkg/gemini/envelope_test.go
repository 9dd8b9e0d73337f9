package gemini

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractText(t *testing.T) {
	Convey("ExtractText 从响应信封提取文本", t, func() {
		Convey("标准信封", func() {
			body := `{"candidates":[{"content":{"parts":[{"text":"hello"},{"text":"ignored"}]}}]}`
			So(ExtractText([]byte(body)), ShouldEqual, "hello")
		})

		Convey("非 JSON 响应原样返回", func() {
			So(ExtractText([]byte("plain text reply")), ShouldEqual, "plain text reply")
		})

		Convey("路径缺失返回空串", func() {
			So(ExtractText([]byte(`{}`)), ShouldEqual, "")
			So(ExtractText([]byte(`{"candidates":[]}`)), ShouldEqual, "")
			So(ExtractText([]byte(`{"candidates":[{"content":{"parts":[]}}]}`)), ShouldEqual, "")
		})

		Convey("类型不符返回空串", func() {
			So(ExtractText([]byte(`{"candidates":{"content":1}}`)), ShouldEqual, "")
			So(ExtractText([]byte(`{"candidates":[{"content":{"parts":[{"text":42}]}}]}`)), ShouldEqual, "")
		})
	})
}

func TestNewGenerateRequest(t *testing.T) {
	Convey("请求信封结构", t, func() {
		data, err := json.Marshal(newGenerateRequest("hi"))
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, `{"contents":[{"parts":[{"text":"hi"}]}]}`)
	})
}
