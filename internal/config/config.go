package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// RPCEndpointKey is the URL of the JSON-RPC node used to scan the ledger
	RPCEndpointKey = "RPC_ENDPOINT"
	// RPCCommitmentKey is the confirmation level required for the scanned
	// transactions, one of processed, confirmed or finalized
	RPCCommitmentKey = "RPC_COMMITMENT"
	// RPCRequestsPerSecondKey limits the rate of requests sent to the node
	RPCRequestsPerSecondKey = "RPC_REQUESTS_PER_SECOND"
	// IncubatorAddressKey is the account receiving the deposits
	IncubatorAddressKey = "INCUBATOR_ADDRESS"
	// AssetMintKey is the mint of the tracked token
	AssetMintKey = "ASSET_MINT"
	// CacheTTLKey is the duration a computed deposit is served from cache
	CacheTTLKey = "CACHE_TTL"
	// ActivityLimitKey is the number of most recent transactions of the
	// incubator scanned to compute a deposit
	ActivityLimitKey = "ACTIVITY_LIMIT"
	// BatchSizeKey is the max number of transactions fetched concurrently
	BatchSizeKey = "BATCH_SIZE"
	// PipelineTimeoutKey bounds a single scan of the incubator activity
	PipelineTimeoutKey = "PIPELINE_TIMEOUT"
	// CacheTypeKey is used to switch cache type between those supported
	CacheTypeKey = "CACHE_TYPE"
	// CacheCapacityKey is the max number of expired deposits kept in memory
	// as fallback when the node is unreachable
	CacheCapacityKey = "CACHE_CAPACITY"
	// RedisAddrKey is the <host:port> address of the redis server
	RedisAddrKey = "REDIS_ADDR"
	// RedisPasswordKey is the password of the redis server, if any
	RedisPasswordKey = "REDIS_PASSWORD"
	// RedisDBKey is the redis database to use
	RedisDBKey = "REDIS_DB"
	// CORSAllowedOriginsKey is the comma separated list of origins allowed to
	// query the HTTP interface from a browser
	CORSAllowedOriginsKey = "CORS_ALLOWED_ORIGINS"

	CacheInMemory = "inmemory"
	CacheBadger   = "badger"
	CacheRedis    = "redis"

	// USDT on mainnet.
	DefaultAssetMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("incubator-tracker", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("INCUBATOR")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 8080)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(RPCEndpointKey, rpc.MainNetBeta_RPC)
	vip.SetDefault(RPCCommitmentKey, string(rpc.CommitmentConfirmed))
	vip.SetDefault(RPCRequestsPerSecondKey, 10)
	vip.SetDefault(AssetMintKey, DefaultAssetMint)
	vip.SetDefault(CacheTTLKey, 5*time.Minute)
	vip.SetDefault(ActivityLimitKey, 1000)
	vip.SetDefault(BatchSizeKey, 10)
	vip.SetDefault(PipelineTimeoutKey, 2*time.Minute)
	vip.SetDefault(CacheTypeKey, CacheInMemory)
	vip.SetDefault(CacheCapacityKey, 10000)
	vip.SetDefault(RedisAddrKey, "localhost:6379")
	vip.SetDefault(RedisDBKey, 0)
	vip.SetDefault(CORSAllowedOriginsKey, "*")

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetAllowedOrigins returns the list of CORS origins, env vars only carry
// comma separated strings.
func GetAllowedOrigins() []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(GetString(CORSAllowedOriginsKey), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if !vip.IsSet(IncubatorAddressKey) {
		return fmt.Errorf("missing incubator address")
	}
	if _, err := solana.PublicKeyFromBase58(
		GetString(IncubatorAddressKey),
	); err != nil {
		return fmt.Errorf("invalid incubator address: %s", err)
	}
	if _, err := solana.PublicKeyFromBase58(GetString(AssetMintKey)); err != nil {
		return fmt.Errorf("invalid asset mint: %s", err)
	}

	switch rpc.CommitmentType(GetString(RPCCommitmentKey)) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf(
			"%s must be one of processed, confirmed or finalized", RPCCommitmentKey,
		)
	}

	for _, key := range []string{CacheTTLKey, PipelineTimeoutKey} {
		if GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}
	for _, key := range []string{
		ActivityLimitKey, BatchSizeKey, RPCRequestsPerSecondKey, CacheCapacityKey,
	} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be greater than zero", key)
		}
	}

	switch GetString(CacheTypeKey) {
	case CacheInMemory, CacheBadger:
	case CacheRedis:
		if GetString(RedisAddrKey) == "" {
			return fmt.Errorf("missing redis address")
		}
	default:
		return fmt.Errorf(
			"%s must be one of %s, %s or %s",
			CacheTypeKey, CacheInMemory, CacheBadger, CacheRedis,
		)
	}

	return nil
}

func initDatadir() error {
	if GetString(CacheTypeKey) != CacheBadger {
		return nil
	}

	datadir := GetDatadir()
	return makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
