package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rollupnet/rollupd/util/panics"
)

const gracefulShutdownTimeout = 30 * time.Second

// Start starts the API server and returns a function to gracefully shut it
// down.
func Start(listenAddr string) func() {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	addRoutes(router)
	httpServer := &http.Server{Addr: listenAddr, Handler: router}
	spawn := panics.GoroutineWrapperFunc(log)
	spawn(func() {
		log.Infof("API server listening on %s", listenAddr)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %s", err)
		}
	})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(ctx)
		if err != nil {
			log.Errorf("Error shutting down HTTP server: %s", err)
		}
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("Recieved request: %s %s", r.Method, r.URL)
		next.ServeHTTP(w, r)
	})
}
