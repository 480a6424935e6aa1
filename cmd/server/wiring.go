package main

import (
	"context"
	"log/slog"

	"superadmin/internal/auth/logout"
	authService "superadmin/internal/auth/service"
	"superadmin/internal/auth/store/cooldown"
	"superadmin/internal/auth/store/revocation"
	"superadmin/internal/platform/config"
	redisClient "superadmin/internal/platform/redis"
	"superadmin/pkg/platform/audit/publisher"
	"superadmin/pkg/platform/audit/store/kafka"
	"superadmin/pkg/platform/audit/store/logsink"
)

const auditBufferSize = 256

type stores struct {
	cooldowns   authService.CooldownStore
	revocations logout.RevocationStore
}

// buildStores shares cooldowns and revocations across replicas when Redis is
// configured; a single instance keeps them in memory.
func buildStores(rdb *redisClient.Client, log *slog.Logger) stores {
	if rdb == nil {
		log.Info("redis not configured, using in-memory stores")
		return stores{
			cooldowns:   cooldown.NewInMemory(),
			revocations: revocation.NewInMemory(),
		}
	}
	log.Info("using redis stores")
	return stores{
		cooldowns:   cooldown.NewRedis(rdb.Client),
		revocations: revocation.NewRedis(rdb.Client),
	}
}

// buildAuditor ships audit events to Kafka when brokers are configured and
// to the structured log otherwise. The returned func flushes and closes.
func buildAuditor(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (*publisher.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		p := publisher.NewPublisher(logsink.New(log), publisher.WithLogger(log))
		return p, p.Close, nil
	}
	store, err := kafka.New(ctx, cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	p := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	log.Info("audit events published to kafka", "topic", cfg.Topic)
	return p, func() {
		p.Close()
		store.Close()
	}, nil
}
