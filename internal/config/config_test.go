package config

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func validConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console", Output: "stderr"},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "wemoova_questionnaires",
			ConnectTimeout: 10 * time.Second,
		},
		Provision: ProvisionConfig{Lock: true, LockTTL: 5 * time.Minute, Report: true},
	}
}

func TestConfig_Validate(t *testing.T) {
	Convey("Config.Validate 校验必填项", t, func() {
		Convey("完整配置通过校验", func() {
			So(validConfig().Validate(), ShouldBeNil)
		})

		Convey("缺少 URI 返回错误", func() {
			cfg := validConfig()
			cfg.Mongo.URI = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("缺少数据库名返回错误", func() {
			cfg := validConfig()
			cfg.Mongo.Database = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("连接超时必须为正数", func() {
			cfg := validConfig()
			cfg.Mongo.ConnectTimeout = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("启用锁时 TTL 必须为正数", func() {
			cfg := validConfig()
			cfg.Provision.LockTTL = 0
			So(cfg.Validate(), ShouldNotBeNil)

			cfg.Provision.Lock = false
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("未知日志格式返回错误", func() {
			cfg := validConfig()
			cfg.Log.Format = "xml"
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}

func TestRedisConfig_Enabled(t *testing.T) {
	Convey("Redis 地址为空时视为未启用", t, func() {
		So((&RedisConfig{}).Enabled(), ShouldBeFalse)
		So((&RedisConfig{Addr: "localhost:6379"}).Enabled(), ShouldBeTrue)
	})
}
