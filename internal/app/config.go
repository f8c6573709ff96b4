package app

import (
	"strings"

	"github.com/ybotello/finstream-backend/internal/pkg/envutil"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/resilience"
	"github.com/ybotello/finstream-backend/internal/sources"
)

type Config struct {
	Port         string
	RedisAddr    string
	AllowOrigins []string
	Sources      []sources.HTTPSourceConfig
	Resilience   map[resilience.Class]resilience.ClassConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:      envutil.String("PORT", "8080"),
		RedisAddr: envutil.String("REDIS_ADDR", ""),
	}

	if v := envutil.String("ALLOW_ORIGINS", ""); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
			}
		}
	}

	res := resilience.DefaultConfigs()
	sourceCfg := res[resilience.ClassSourceFetch]
	sourceCfg.Timeout = envutil.Duration("SOURCE_FETCH_TIMEOUT", sourceCfg.Timeout)
	res[resilience.ClassSourceFetch] = sourceCfg
	cacheCfg := res[resilience.ClassCache]
	cacheCfg.Timeout = envutil.Duration("CACHE_TIMEOUT", cacheCfg.Timeout)
	res[resilience.ClassCache] = cacheCfg
	persistCfg := res[resilience.ClassPersistence]
	persistCfg.Timeout = envutil.Duration("PERSISTENCE_TIMEOUT", persistCfg.Timeout)
	res[resilience.ClassPersistence] = persistCfg
	cfg.Resilience = res

	// SOURCE_ENDPOINTS is a comma-separated list of name=url pairs.
	fetchTimeout := res[resilience.ClassSourceFetch].Timeout
	for _, pair := range strings.Split(envutil.String("SOURCE_ENDPOINTS", ""), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, url, ok := strings.Cut(pair, "=")
		if !ok {
			log.Warn("skipping malformed source endpoint", "entry", pair)
			continue
		}
		cfg.Sources = append(cfg.Sources, sources.HTTPSourceConfig{
			Name:    strings.TrimSpace(name),
			URL:     strings.TrimSpace(url),
			Timeout: fetchTimeout,
		})
	}

	log.Info("Configuration loaded",
		"port", cfg.Port,
		"redis", cfg.RedisAddr != "",
		"sources", len(cfg.Sources))
	return cfg
}
