package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"uyadmin.io/cli/internal/logging"
	"uyadmin.io/cli/internal/stubapi"
)

// Stub listing backend for local testing of the uyadmin CLI.
func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	accessTTL := flag.Duration("access-ttl", time.Minute, "access token lifetime")
	refreshTTL := flag.Duration("refresh-ttl", 24*time.Hour, "refresh token lifetime")
	secret := flag.String("secret", os.Getenv("STUBAPI_SECRET"), "HS256 signing secret")
	user := flag.String("user", "admin", "seeded username")
	password := flag.String("password", "admin12345", "seeded password")
	flag.Parse()

	logger := logging.New("debug", "text")

	srv := stubapi.New(stubapi.Config{
		Secret:     []byte(*secret),
		AccessTTL:  *accessTTL,
		RefreshTTL: *refreshTTL,
		Logger:     logger,
	})
	if err := srv.RegisterUser(*user, *user+"@example.com", *password); err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":       *addr,
			"user":       *user,
			"access_ttl": accessTTL.String(),
		}).Info("stub backend listening")
		if err := srv.Start(*addr); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
}
