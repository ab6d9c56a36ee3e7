package main

import (
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	daemonconfig "github.com/tdex-network/incubator-tracker/internal/config"
	"github.com/tdex-network/incubator-tracker/internal/core/application"
	"github.com/tdex-network/incubator-tracker/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/incubator-tracker/pkg/explorer/solana"
	"github.com/urfave/cli/v2"
)

var (
	rpcEndpointFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "url of the JSON-RPC node",
		Value: rpc.MainNetBeta_RPC,
	}
	commitmentFlag = cli.StringFlag{
		Name:  "commitment",
		Usage: "confirmation level: processed, confirmed or finalized",
		Value: string(rpc.CommitmentConfirmed),
	}
	incubatorFlag = cli.StringFlag{
		Name:     "incubator",
		Usage:    "address of the incubator account",
		Required: true,
	}
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Usage: "mint of the tracked token",
		Value: daemonconfig.DefaultAssetMint,
	}
	limitFlag = cli.IntFlag{
		Name:  "limit",
		Usage: "number of most recent incubator transactions to scan",
		Value: application.DefaultActivityLimit,
	}
	batchSizeFlag = cli.IntFlag{
		Name:  "batch",
		Usage: "max number of transactions fetched concurrently",
		Value: application.DefaultBatchSize,
	}
	rpsFlag = cli.IntFlag{
		Name:  "rps",
		Usage: "max number of requests per second sent to the node",
		Value: solana.DefaultRequestsPerSecond,
	}
)

var scan = cli.Command{
	Name:      "scan",
	Usage:     "compute the deposit of a user by scanning the ledger, without daemon",
	ArgsUsage: "<user>",
	Action:    scanAction,
	Flags: []cli.Flag{
		&rpcEndpointFlag,
		&commitmentFlag,
		&incubatorFlag,
		&assetFlag,
		&limitFlag,
		&batchSizeFlag,
		&rpsFlag,
	},
}

type scanResult struct {
	User      string `json:"user"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
	Stale     bool   `json:"stale"`
}

func scanAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	user := ctx.Args().First()

	explorerSvc, err := solana.NewService(solana.ServiceOpts{
		Endpoint:          ctx.String(rpcEndpointFlag.Name),
		Commitment:        ctx.String(commitmentFlag.Name),
		RequestsPerSecond: ctx.Int(rpsFlag.Name),
	})
	if err != nil {
		return err
	}

	cache := inmemory.NewDepositCache(1)
	defer cache.Close()

	depositSvc, err := application.NewDepositService(application.DepositServiceOpts{
		Explorer:         explorerSvc,
		Cache:            cache,
		IncubatorAddress: ctx.String(incubatorFlag.Name),
		AssetMint:        ctx.String(assetFlag.Name),
		ActivityLimit:    ctx.Int(limitFlag.Name),
		BatchSize:        ctx.Int(batchSizeFlag.Name),
	})
	if err != nil {
		return err
	}

	info, err := depositSvc.GetUserDepositInfo(ctx.Context, user)
	if err != nil {
		return err
	}

	return printRespJSON(ctx, scanResult{
		User:      info.User,
		Amount:    info.Amount.String(),
		Timestamp: info.Timestamp.UTC().Format(time.RFC3339),
		Stale:     info.Stale,
	})
}
