package main

import (
	"context"

	"go.uber.org/zap"
)

type stopper interface {
	Stop()
}

type hubCloser interface {
	Close()
}

type httpShutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops the worker pool first so in-flight generations finish while
// the store and providers are still open, then closes sockets and the
// listener.
func shutdown(ctx context.Context, pool stopper, hub hubCloser, server httpShutdowner, zlog *zap.Logger) {
	pool.Stop()
	hub.Close()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Warn("http shutdown incomplete", zap.Error(err))
	}
}
