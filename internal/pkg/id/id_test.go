package id

import (
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("New 生成合法且不重复的 UUID", t, func() {
		a, b := New(), New()
		So(a, ShouldNotEqual, b)
		_, err := uuid.Parse(a)
		So(err, ShouldBeNil)
	})
}

func TestShort(t *testing.T) {
	Convey("Short 截取前8位", t, func() {
		So(Short("1a2b3c4d-0000-0000-0000-000000000000"), ShouldEqual, "1a2b3c4d")
		So(Short("abc"), ShouldEqual, "abc")
	})
}
