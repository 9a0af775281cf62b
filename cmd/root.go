package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"qindex/internal/config"
	"qindex/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qindex",
	Short: "qindex - MongoDB index provisioner for the questionnaire service",
	Long: `qindex creates and inspects the MongoDB indexes used by the
questionnaire-assignment service (companies, questionnaires,
company questionnaires, user assignments and user metadata).`,
	SilenceUsage: true,
}

// Execute runs the root command
// SIGINT/SIGTERM 会取消命令的 context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")
	flags.String("uri", "", "MongoDB connection string (env: QINDEX_MONGO_URI or MONGODB_URI)")
	flags.StringP("database", "d", "", "MongoDB database name")
	flags.String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	flags.String("log-format", "console", "log format (json/console)")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("mongo.uri", flags.Lookup("uri"))
	_ = viper.BindPFlag("mongo.database", flags.Lookup("database"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.qindex")
	}

	// 环境变量设置
	viper.SetEnvPrefix("QINDEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// 兼容服务端使用的变量名
	_ = viper.BindEnv("mongo.uri", "QINDEX_MONGO_URI", "MONGODB_URI")
	_ = viper.BindEnv("mongo.database", "QINDEX_MONGO_DATABASE", "MONGODB_DATABASE")

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stderr")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "wemoova_questionnaires")
	viper.SetDefault("mongo.max_pool_size", 10)
	viper.SetDefault("mongo.min_pool_size", 0)
	viper.SetDefault("mongo.connect_timeout", "10s")

	// Redis（addr 为空时不启用）
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	// Provision
	viper.SetDefault("provision.lock", true)
	viper.SetDefault("provision.lock_ttl", "5m")
	viper.SetDefault("provision.report", true)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
