package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/settings"
	logsvc "github.com/trezcool/hisani/services/logger"
	rediscache "github.com/trezcool/hisani/storage/cache/redis"
	"github.com/trezcool/hisani/storage/database"
	sqlxrepos "github.com/trezcool/hisani/storage/database/sqlx"
)

// The sweeper closes open jobs whose application deadline has passed.
// It runs the sweep once at start, then on every cron tick.
func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "SWEEPER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	cache := rediscache.New(conf)
	defer func() {
		if err = cache.Close(); err != nil {
			logger.Error("closing cache", err)
		}
	}()

	settingsSvc := settings.NewService(db, sqlxrepos.NewSettingsRepository(db), cache, conf)
	jobSvc := job.NewService(db, sqlxrepos.NewJobRepository(db), settingsSvc, conf)

	sweep := func() {
		ctx := context.Background()
		n, err := jobSvc.CloseExpired(ctx)
		if err != nil {
			logger.Error(fmt.Sprintf("sweeping expired jobs: %v", err), err)
			return
		}
		logger.Info(fmt.Sprintf("sweep done: %d job(s) closed", n))
	}

	c := cron.New(cron.WithLogger(cron.DefaultLogger))
	if _, err = c.AddFunc(conf.SweeperSpec, sweep); err != nil {
		logger.Fatal(fmt.Sprintf("registering sweep job: %v", err), err)
	}
	c.Start()
	logger.Info(fmt.Sprintf("sweeper started: spec %q", conf.SweeperSpec))

	// run once at start so a restart does not delay overdue closings
	go sweep()

	shutCh := make(chan os.Signal, 1)
	signal.Notify(shutCh, os.Interrupt, syscall.SIGTERM)
	sig := <-shutCh
	logger.Info(fmt.Sprintf("%v: stopping sweeper...", sig))

	<-c.Stop().Done()
	logger.Info("sweeper stopped")
}
