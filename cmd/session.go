package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"qindex/internal/model/questionnaire"
	"qindex/internal/pkg/cache"
	"qindex/internal/pkg/mongodb"
	"qindex/internal/service"
)

// session 一次命令使用的连接和服务
type session struct {
	mongo *mongodb.Client
	redis *cache.RedisCache
	svc   *service.ProvisionService
}

// openSession 校验配置并建立连接
// lock 为 true 且配置允许时启用 Redis 运行锁
func openSession(cmd *cobra.Command, lock bool) (*session, error) {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	ctx := cmd.Context()
	client, err := mongodb.New(ctx, &cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	s := &session{mongo: client}
	s.svc = service.NewProvisionService(client.Database(), cmd.OutOrStdout(), questionnaire.Models()...)

	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		s.redis = rc
		s.svc.WithRunStore(rc)
		if lock && cfg.Provision.Lock {
			s.svc.WithLock(rc, cfg.Provision.LockTTL)
		}
	}

	return s, nil
}

// Close 关闭所有连接
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.mongo.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to disconnect mongodb")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
}
