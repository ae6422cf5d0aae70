// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

/*
Package services adapts Fundwise's long-running loops to suture.Service.

Every wrapper implements

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, so suture's event log names the service.

# Available Services

HTTPServerService runs the API's *http.Server and shuts it down gracefully
when the tree stops. A bind failure terminates the tree instead of being
retried.

CatalogService runs one fund catalog reload loop, either the fsnotify
file watcher (NewCatalogWatchService) or the remote refresher
(NewCatalogRefreshService). Loop failures are returned so suture restarts
the loop with backoff; the store keeps serving its last snapshot meanwhile.

RetrainService retrains the classifier on a fixed interval. A failed
retrain is logged and the previous model stays installed.

DeliveryWorkerService runs the asynchronous delivery queue.

# Usage

	tree.AddAPIService(services.NewHTTPServerService(server, timeout, logger))
	tree.AddDataService(services.NewCatalogWatchService(funds.NewWatcher(store, path, debounce)))
	tree.AddDataService(services.NewRetrainService(engine, interval, logger))
	tree.AddMessagingService(services.NewDeliveryWorkerService(dispatcher))
*/
package services
