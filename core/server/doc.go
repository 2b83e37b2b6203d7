// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g.Go(srv.Run(ctx, router))
//
// Run fits errgroup: it returns nil when the context is cancelled after the
// server drained in-flight requests, or the serve error otherwise.
//
// Timeouts come from Config (SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT and
// so on) and can be overridden with options. Setting both TLSCertFile and
// TLSKeyFile serves HTTPS.
package server
