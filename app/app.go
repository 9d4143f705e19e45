package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ulordnet/ulordd/infrastructure/config"
	"github.com/ulordnet/ulordd/infrastructure/logger"
	"github.com/ulordnet/ulordd/infrastructure/os/signal"
	"github.com/ulordnet/ulordd/util/panics"
	"github.com/ulordnet/ulordd/version"
)

// StartApp loads the configuration, imports the configured block file and
// returns when the import is done or interrupted.
func StartApp() error {
	// Load configuration and parse command line. This function also
	// sets the log levels.
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger.InitLog(cfg.LogFile, cfg.ErrLogFile)
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, nil)

	interrupt := signal.InterruptListener()

	// Show version at startup.
	log.Infof("Version %s (%s)", version.Version(), version.UserAgent())
	log.Infof("Network %s, %s block store, headers only: %t", cfg.NetParams().Name, cfg.DbType, cfg.HeadersOnly)

	componentManager, err := NewComponentManager(cfg)
	if err != nil {
		log.Errorf("Unable to start ulordd: %+v", err)
		return err
	}
	defer componentManager.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	spawn(func() {
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
	})

	err = componentManager.Run(ctx)
	if err != nil {
		log.Errorf("Import failed: %+v", err)
		fmt.Fprintf(os.Stderr, "Import failed: %s\n", err)
		return err
	}
	return nil
}
