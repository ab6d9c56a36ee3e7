package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var health = cli.Command{
	Name:   "health",
	Usage:  "check whether the daemon can reach the ledger node",
	Action: healthAction,
	Flags: []cli.Flag{
		&daemonFlag,
	},
}

func healthAction(ctx *cli.Context) error {
	daemonURL, err := getDaemonURL(ctx)
	if err != nil {
		return err
	}

	return getAndPrint(
		ctx, fmt.Sprintf("%s/healthz", strings.TrimSuffix(daemonURL, "/")),
	)
}
