// Command server runs the Cockroach Poker match engine: it authenticates
// websocket connections, accepts HTTP room-lifecycle requests, and drives
// every in-progress game through a single-writer room loop per match.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cockroachpoker/internal/app"
	"cockroachpoker/internal/audit"
	"cockroachpoker/internal/config"
	"cockroachpoker/internal/httpapi"
	"cockroachpoker/internal/identity"
	"cockroachpoker/internal/logging"
	"cockroachpoker/internal/session"
	"cockroachpoker/internal/transport"
)

var version = "dev"

func main() {
	help := flag.Bool("help", false, "print usage and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	issueToken := flag.String("issue-dev-token", "", "mint a dev access token for the given user id and exit (requires JWT_SECRET)")
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logging.Logger("MAIN")

	verifier := identity.NewVerifier(cfg.JWTSecret)

	if *issueToken != "" {
		token, err := verifier.Issue(*issueToken, *issueToken, 24*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		os.Exit(0)
	}

	sink, err := audit.OpenSQLiteSink(cfg.SQLitePath)
	if err != nil {
		log.Errorf("open audit sink: %v", err)
		os.Exit(1)
	}
	defer sink.Close()

	hub := transport.NewHub()
	svc := app.NewService()
	store := session.NewStore(svc, sink, hub)

	router := httpapi.NewRouter(store, verifier)
	router.GET("/ws", gin.WrapF(transport.NewServer(hub, verifier, store).ServeHTTP))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("serve: %v", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Infof("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
		os.Exit(1)
	}
}
