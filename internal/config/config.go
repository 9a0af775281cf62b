package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Provision ProvisionConfig `mapstructure:"provision"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"` // stdout, stderr, file
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // 连接与选主超时
}

// RedisConfig Redis 配置
// Addr 为空时不启用运行锁和运行记录
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled 是否配置了 Redis
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// ProvisionConfig 索引创建流程配置
type ProvisionConfig struct {
	Lock    bool          `mapstructure:"lock"`     // 是否使用 Redis 运行锁
	LockTTL time.Duration `mapstructure:"lock_ttl"` // 锁过期时间
	Report  bool          `mapstructure:"report"`   // 创建完成后是否打印索引目录
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongo database is required")
	}
	if c.Mongo.ConnectTimeout <= 0 {
		return errors.New("invalid mongo connect timeout")
	}
	if c.Provision.Lock && c.Provision.LockTTL <= 0 {
		return errors.New("invalid provision lock ttl")
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Log.Format] {
		return errors.New("invalid log format, must be console/json")
	}

	return nil
}
