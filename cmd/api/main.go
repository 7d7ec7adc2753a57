package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"droneplan/internal/api"
)

func main() {
	_ = godotenv.Load()

	srv, err := api.NewFromEnv()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(srv.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("droneplan api listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
