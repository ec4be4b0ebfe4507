// Command stub-api serves an in-memory phishing simulation backend with
// seeded data, for running the dashboard locally without the real backend.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	seed := flag.Int64("seed", 42, "random seed for the generated organization")
	usersPerDept := flag.Int("users-per-dept", 6, "users generated per department")
	empty := flag.Bool("empty", false, "start with no data")
	flag.Parse()

	log.Println("Starting phishing simulation STUB backend (in-memory, data is lost on exit)")

	var b *backend
	if *empty {
		b = newBackend(nil)
	} else {
		b = seedData(*seed, *usersPerDept, time.Now().UTC())
		log.Printf("Seeded %d departments, %d users, %d email logs", len(b.departments), len(b.users), len(b.logs))
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           corsMiddleware(b.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Stub backend listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down stub backend...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Stub backend stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("X-Server-Identity", "phishing-stub-backend")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
