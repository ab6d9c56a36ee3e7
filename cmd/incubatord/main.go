package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/incubator-tracker/internal/config"
	"github.com/tdex-network/incubator-tracker/internal/core/application"
	"github.com/tdex-network/incubator-tracker/internal/core/domain"
	dbbadger "github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/inmemory"
	dbredis "github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/redis"
	httpinterface "github.com/tdex-network/incubator-tracker/internal/interfaces/http"
	"github.com/tdex-network/incubator-tracker/pkg/explorer/solana"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	explorerSvc, err := solana.NewService(solana.ServiceOpts{
		Endpoint:          config.GetString(config.RPCEndpointKey),
		Commitment:        config.GetString(config.RPCCommitmentKey),
		RequestsPerSecond: config.GetInt(config.RPCRequestsPerSecondKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to ledger node")
	}

	cache, err := newDepositCache()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize deposit cache")
	}

	depositSvc, err := application.NewDepositService(application.DepositServiceOpts{
		Explorer:         explorerSvc,
		Cache:            cache,
		IncubatorAddress: config.GetString(config.IncubatorAddressKey),
		AssetMint:        config.GetString(config.AssetMintKey),
		TTL:              config.GetDuration(config.CacheTTLKey),
		ActivityLimit:    config.GetInt(config.ActivityLimitKey),
		BatchSize:        config.GetInt(config.BatchSizeKey),
		PipelineTimeout:  config.GetDuration(config.PipelineTimeoutKey),
	})
	if err != nil {
		cache.Close()
		log.WithError(err).Fatal("failed to initialize deposit service")
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:        fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey)),
		AllowedOrigins: config.GetAllowedOrigins(),
		DepositSvc:     depositSvc,
		Explorer:       explorerSvc,
	})
	if err != nil {
		cache.Close()
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	log.RegisterExitHandler(cache.Close)
	log.RegisterExitHandler(svc.Stop)

	log.Info("starting daemon")
	defer log.Info("shutdown")

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}

	log.Infof(
		"tracking deposits of %s to %s",
		config.GetString(config.AssetMintKey),
		config.GetString(config.IncubatorAddressKey),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("stopping daemon")
	svc.Stop()
	cache.Close()
}

func newDepositCache() (domain.DepositCache, error) {
	switch cacheType := config.GetString(config.CacheTypeKey); cacheType {
	case config.CacheBadger:
		dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
		return dbbadger.NewDepositCache(dbDir, log.StandardLogger())
	case config.CacheRedis:
		return dbredis.NewDepositCache(dbredis.Config{
			Addr:     config.GetString(config.RedisAddrKey),
			Password: config.GetString(config.RedisPasswordKey),
			DB:       config.GetInt(config.RedisDBKey),
			TTL:      config.GetDuration(config.CacheTTLKey),
		})
	case config.CacheInMemory:
		return inmemory.NewDepositCache(config.GetInt(config.CacheCapacityKey)), nil
	default:
		return nil, fmt.Errorf("unknown cache type %s", cacheType)
	}
}
