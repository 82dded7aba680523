package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/zma-auto/taxi-landing/internal/config"
	"github.com/zma-auto/taxi-landing/internal/crm"
	"github.com/zma-auto/taxi-landing/internal/observability/metrics"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRetryQueue returns the CRM retry queue when it is enabled and Redis is
// reachable, nil otherwise.
func BuildRetryQueue(cfg *appconfig.Config, redisClient *redis.Client, m *metrics.LeadMetrics, logger *logging.Logger) *crm.RedisRetryQueue {
	if cfg == nil || !cfg.RetryQueueEnabled() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient == nil {
		logger.Warn("crm retry queue requested but redis is unavailable; failed leads will only be logged")
		return nil
	}
	logger.Info("crm retry queue enabled", "redis", cfg.RedisAddr, "max_attempts", cfg.CRMRetryMaxAttempts)
	return crm.NewRedisRetryQueue(redisClient, m)
}

// BuildGateway wires the CRM webhook gateway. A nil queue leaves transport
// failures logged only.
func BuildGateway(cfg *appconfig.Config, queue *crm.RedisRetryQueue, m *metrics.LeadMetrics, logger *logging.Logger) *crm.WebhookGateway {
	if logger == nil {
		logger = logging.Default()
	}
	opts := []crm.Option{crm.WithMetrics(m)}
	if queue != nil {
		opts = append(opts, crm.WithFailureSink(queue))
	}
	endpoint := ""
	if cfg != nil {
		endpoint = cfg.CRMWebhookURL
	}
	if strings.TrimSpace(endpoint) == "" {
		logger.Warn("CRM_WEBHOOK_URL is empty; every lead submission will fail in transport")
	}
	return crm.NewWebhookGateway(endpoint, logger, opts...)
}

// BuildReplayer returns the retry worker for queue, or nil without a queue.
func BuildReplayer(cfg *appconfig.Config, queue *crm.RedisRetryQueue, gateway crm.PayloadDeliverer, m *metrics.LeadMetrics, logger *logging.Logger) *crm.Replayer {
	if queue == nil || gateway == nil {
		return nil
	}
	r := crm.NewReplayer(queue, gateway, logger).WithMetrics(m)
	if cfg != nil {
		r = r.WithInterval(cfg.CRMRetryInterval).WithMaxAttempts(cfg.CRMRetryMaxAttempts)
	}
	return r
}
