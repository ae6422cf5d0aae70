// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

/*
Package config loads and validates application configuration.

Configuration is layered with Koanf v2:

 1. Built-in defaults (structs provider)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml or
    /etc/fundwise/config.yaml
 3. Environment variables, mapped explicitly by envTransformFunc

Before the environment layer is read, a .env file (or $DOTENV_PATH) is
loaded with godotenv. It never overrides a variable that is already set.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS: comma-separated
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Classifier:
  - RECOMMEND_ALGORITHM: random_forest, decision_tree or rules
  - RECOMMEND_TREES, RECOMMEND_MAX_DEPTH, RECOMMEND_SEED
  - RECOMMEND_MODEL_DIR, RECOMMEND_RETRAIN_INTERVAL
  - CORPUS_SIZE, CORPUS_SEED

Fund catalog:
  - FUNDS_SOURCE: embedded, csv, json, yaml or remote
  - FUNDS_PATH, FUNDS_URL, FUNDS_WATCH, FUNDS_REFRESH_INTERVAL

Delivery:
  - DELIVERY_ENABLED, DELIVERY_RATE_PER_MINUTE
  - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM,
    SMTP_FROM_NAME, SMTP_USE_TLS, SMTP_TIMEOUT
  - DELIVERY_ASYNC_ENABLED, DELIVERY_STATUS_DIR, DELIVERY_STATUS_TTL

SMTP credentials have no defaults and are never logged; SMTPConfig.String
in the delivery package redacts the password.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.RecommendSettings()
*/
package config
