// Package httpserver runs the HTTP surface with graceful shutdown.
//
// Server.Run serves until its context ends or SIGINT/SIGTERM arrives. On
// shutdown the request base context is canceled first so open SSE streams
// return, then http.Server.Shutdown drains the rest and the registered
// shutdown hooks release dependencies such as live subscriptions, background
// tasks and database clients.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//	    httpserver.WithLogger(log),
//	    httpserver.WithShutdownHook("notifications", func(context.Context) error {
//	        svc.Cleanup()
//	        return nil
//	    }),
//	)
//	err := srv.Run(ctx, router)
//
// LivenessHandler and ReadinessHandler back the /healthz and /readyz probes.
package httpserver
