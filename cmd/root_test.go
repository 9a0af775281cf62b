package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInitConfig_Defaults(t *testing.T) {
	Convey("未提供配置文件时使用默认值", t, func() {
		initConfig()
		c := GetConfig()

		So(c.Mongo.URI, ShouldEqual, "mongodb://localhost:27017")
		So(c.Mongo.Database, ShouldEqual, "wemoova_questionnaires")
		So(c.Mongo.ConnectTimeout, ShouldEqual, 10*time.Second)
		So(c.Provision.LockTTL, ShouldEqual, 5*time.Minute)
		So(c.Provision.Report, ShouldBeTrue)
		So(c.Redis.Enabled(), ShouldBeFalse)
		So(c.Validate(), ShouldBeNil)
	})
}

func TestInitConfig_Env(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("QINDEX_MONGO_DATABASE", "questionnaires_staging")
	t.Setenv("QINDEX_PROVISION_LOCK_TTL", "90s")

	Convey("环境变量覆盖默认值，兼容服务端的 MONGODB_URI", t, func() {
		initConfig()
		c := GetConfig()

		So(c.Mongo.URI, ShouldEqual, "mongodb://db.internal:27017")
		So(c.Mongo.Database, ShouldEqual, "questionnaires_staging")
		So(c.Provision.LockTTL, ShouldEqual, 90*time.Second)
	})
}

func TestPlanCommand(t *testing.T) {
	Convey("plan 不连接数据库即可输出声明表", t, func() {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"plan"})
		defer rootCmd.SetArgs(nil)

		So(Execute(), ShouldBeNil)

		text := out.String()
		So(text, ShouldContainSubstring, "27 indexes on 5 collections")
		for _, collection := range []string{
			"companies", "questionnaires", "company_questionnaires",
			"user_questionnaire_assignments", "users_metadata",
		} {
			So(strings.Contains(text, collection), ShouldBeTrue)
		}
	})
}
