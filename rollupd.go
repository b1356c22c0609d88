package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jinzhu/gorm/dialects/mysql"

	"github.com/rollupnet/rollupd/apiserver"
	apidatabase "github.com/rollupnet/rollupd/apiserver/database"
	"github.com/rollupnet/rollupd/apiserver/server"
	"github.com/rollupnet/rollupd/bridge"
	"github.com/rollupnet/rollupd/coordinator"
	"github.com/rollupnet/rollupd/database"
	"github.com/rollupnet/rollupd/dbaccess"
	"github.com/rollupnet/rollupd/devprover"
	"github.com/rollupnet/rollupd/fees"
	"github.com/rollupnet/rollupd/logger"
	"github.com/rollupnet/rollupd/mempool"
	"github.com/rollupnet/rollupd/signal"
	"github.com/rollupnet/rollupd/util/panics"
)

// feePayingAssets lists the assets the sequencer accepts fees in; asset 0 is
// the settlement layer's native asset.
var feePayingAssets = []uint32{0, 1}

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	logger.InitLogRotator(cfg.logFile())
	logger.SetLogLevels(cfg.LogLevel)

	if cfg.Migrate {
		err := apidatabase.Migrate(apiServerConnectionConfig(cfg))
		if err != nil {
			panic(fmt.Errorf("Error migrating database: %s", err))
		}
		return
	}

	db, err := database.Open(filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		panic(fmt.Errorf("Error opening database: %s", err))
	}
	defer func() {
		err := db.Close()
		if err != nil {
			panic(fmt.Errorf("Error closing the database: %s", err))
		}
	}()

	bridgeResolver := bridge.NewStaticResolver(nil)
	feeResolver := fees.NewStaticResolver(bridgeResolver, feePayingAssets)
	backend := devprover.NewBackend(db)
	timeSource := coordinator.NewSystemTimeSource()
	publishTimeManager := coordinator.NewPublishTimeManager(
		cfg.activeParams.PublishInterval, bridgeResolver, timeSource)
	validator := mempool.NewValidator(backend, backend, backend)

	if cfg.APIListen != "" {
		err := apidatabase.Connect(apiServerConnectionConfig(cfg))
		if err != nil {
			panic(fmt.Errorf("Error connecting to the API server database: %s", err))
		}
		defer func() {
			err := apidatabase.Close()
			if err != nil {
				panic(fmt.Errorf("Error closing the API server database: %s", err))
			}
		}()

		shutdownServer := server.Start(cfg.APIListen)
		defer shutdownServer()

		syncDoneChan := make(chan struct{}, 1)
		sync := apiserver.NewSync(db)
		spawn(func() {
			err := sync.Start(syncDoneChan)
			if err != nil {
				panic(err)
			}
		})
		defer func() {
			syncDoneChan <- struct{}{}
		}()
	}

	tickDoneChan := make(chan struct{}, 1)
	spawn(func() {
		runTickLoop(cfg, db, feeResolver, backend, publishTimeManager, validator, tickDoneChan)
	})
	defer func() {
		tickDoneChan <- struct{}{}
	}()

	interrupt := signal.InterruptListener()
	<-interrupt
}

// runTickLoop drives one coordinator tick per interval.  Each tick works on a
// fresh coordinator over a fresh snapshot of the pending pool; a published
// rollup is followed by a pool revalidation against the settled state.
func runTickLoop(cfg *config, db database.Database, feeResolver coordinator.TxFeeResolver,
	backend *devprover.Backend, publishTimeManager *coordinator.PublishTimeManager,
	validator *mempool.Validator, doneChan chan struct{}) {

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-doneChan:
			log.Infof("Tick loop stopped")
			return
		case <-ticker.C:
		}

		pendingTxs, err := dbaccess.PendingTxs(dbaccess.NoTx(db))
		if err != nil {
			log.Errorf("Failed to read the pending pool: %s", err)
			continue
		}
		if len(pendingTxs) == 0 {
			continue
		}

		coord, err := coordinator.New(coordinator.Config{
			Params:      &cfg.activeParams,
			FeeResolver: feeResolver,
			Creator:     backend,
			Aggregator:  backend,
			Publisher:   backend,
		})
		if err != nil {
			log.Errorf("Failed to create coordinator: %s", err)
			continue
		}

		profile, err := coord.ProcessPendingTxs(pendingTxs, false,
			publishTimeManager.LastTimeouts())
		if coordinator.IsInterruptError(err) {
			return
		}
		if err != nil {
			log.Errorf("Coordinator tick failed: %+v", err)
			continue
		}
		if profile.Published {
			err := validator.HandleSettledBlock()
			if err != nil {
				log.Errorf("Failed to revalidate the pending pool: %+v", err)
			}
		}
	}
}

func apiServerConnectionConfig(cfg *config) *apidatabase.ConnectionConfig {
	return &apidatabase.ConnectionConfig{
		User:           cfg.DBUser,
		Password:       cfg.DBPassword,
		Address:        cfg.DBAddress,
		DatabaseName:   cfg.DBName,
		MigrationsPath: cfg.MigrationsPath,
	}
}
