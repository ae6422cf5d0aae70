// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

/*
Package main is the entry point for the Fundwise server.

Fundwise classifies an investor profile (age, monthly income, savings, risk
appetite, goal, horizon) as Conservative, Balanced or Aggressive, applies
two fixed override rules, and answers with the mutual funds listed for the
category. A PDF report can be downloaded or emailed.

# Startup

 1. Configuration: Koanf v2 (defaults, config.yaml, .env, environment)
 2. Logging: zerolog, level and format from LOG_LEVEL / LOG_FORMAT
 3. Classifier: synthetic corpus generated and the model trained; a
    training failure exits with status 1 before any port is opened
 4. Fund catalog: embedded CSV, a local CSV/JSON/YAML file, or a remote URL
 5. Report renderer and delivery dispatcher, if enabled
 6. Supervisor tree (suture v4) running the HTTP server, catalog reloaders,
    the retrain scheduler and the delivery worker

# Configuration

The most common settings:

	HTTP_PORT=8080
	LOG_LEVEL=info
	RECOMMEND_ALGORITHM=random_forest
	FUNDS_SOURCE=embedded
	REPORT_ENABLED=true
	DELIVERY_ENABLED=true
	SMTP_HOST=smtp.example.com
	SMTP_USERNAME=...
	SMTP_PASSWORD=...
	SMTP_FROM=reports@example.com

Mail credentials are read only from the environment, a .env file or the
config file. See internal/config for the full list.

# Signals

SIGINT and SIGTERM stop the tree. In-flight requests get
HTTP_SHUTDOWN_TIMEOUT to finish and queued deliveries are drained by the
worker before the job store is closed.
*/
package main
