// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

/*
Package supervisor runs Fundwise's long-lived services under suture v4.

# Tree

	fundwise
	├── data-layer
	│   ├── catalog-watcher     (local catalog file, fsnotify)
	│   ├── catalog-refresher   (remote catalog, periodic)
	│   └── retrain-scheduler   (if recommend.retrain_interval > 0)
	├── messaging-layer
	│   └── delivery-worker     (if async delivery is enabled)
	└── api-layer
	    └── http-server

Each layer restarts its own services with backoff. A catalog loop that
keeps failing never takes the HTTP server down with it; the store keeps
serving its last good snapshot.

The model is trained and the catalog loaded in main before the tree starts,
so a training failure exits the process instead of entering a restart loop.

# Logging

Supervisor events go through sutureslog to a *slog.Logger built by
logging.NewSlogLogger, which writes through the process zerolog logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, timeout, logger))
	err = tree.Serve(ctx) // blocks until ctx is canceled
*/
package supervisor
