package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/bookshelf-api/bookshelf/pkg/config"
	"github.com/bookshelf-api/bookshelf/pkg/database"
	"github.com/bookshelf-api/bookshelf/pkg/server"
	"github.com/bookshelf-api/bookshelf/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting bookshelf", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	log.Info("connected to database", logger.Data{"driver": cfg.DatabaseDriver, "host": cfg.DatabaseHost, "name": cfg.DatabaseName})

	// The table is created outside of this service, so a missing one is only
	// worth a warning: requests will fail with 500s until it exists.
	count, err := database.CheckBooksTable(ctx, db)
	if err != nil {
		log.Err(err).Warn("books table check failed")
	} else {
		log.Info("books table found", logger.Data{"rows": count})
	}

	srv, err := server.New(cfg, db)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		addr := listener.Addr().(*net.TCPAddr)
		log.Info("server started", logger.Data{"port": addr.Port, "url": fmt.Sprintf("http://localhost:%d", addr.Port)})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
