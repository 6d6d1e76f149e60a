package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"estate-intake/handler"
	"estate-intake/internal/cache"
	"estate-intake/internal/integrations/paramstore"
	"estate-intake/internal/referral"
	"estate-intake/internal/repository"
	"estate-intake/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	tableName := mustEnv("TABLE_NAME")
	paramPrefix := mustEnv("PARAM_PREFIX")
	redisAddr := os.Getenv("REDIS_ADDR")
	cacheTTL := time.Duration(envInt("LIMITS_CACHE_TTL_SECONDS", 300)) * time.Second

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), tableName)
	if err != nil {
		slog.Error("failed to create repository", "err", err)
		os.Exit(1)
	}
	published, err := paramstore.NewLimitsParameter(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create published limits source", "err", err)
		os.Exit(1)
	}

	// ---- State limits: table (optionally cached), then Parameter Store, then built-in ----
	var tableSource referral.LimitSource = store
	var invalidator usecase.CacheInvalidator
	if redisAddr != "" {
		limitsCache, err := cache.NewLimitsCache(cache.NewClient(redisAddr), store, cache.DefaultKey, cacheTTL, slog.Default())
		if err != nil {
			slog.Error("failed to create limits cache", "err", err)
			os.Exit(1)
		}
		tableSource = limitsCache
		invalidator = limitsCache
	} else {
		slog.Info("REDIS_ADDR not set, state limits are read uncached")
	}
	resolver := referral.NewResolver(slog.Default(), tableSource, published)

	// ---- Use cases ----
	submissions, err := usecase.NewSubmissionService(store, resolver)
	if err != nil {
		slog.Error("failed to create submission service", "err", err)
		os.Exit(1)
	}
	limits, err := usecase.NewStateLimitService(store, invalidator)
	if err != nil {
		slog.Error("failed to create state limit service", "err", err)
		os.Exit(1)
	}
	drafts, err := usecase.NewDraftService(store, submissions)
	if err != nil {
		slog.Error("failed to create draft service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(submissions, limits, drafts)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
