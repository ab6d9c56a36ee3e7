package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	daemonFlag = cli.StringFlag{
		Name:  "daemon",
		Usage: "url of the incubatord HTTP interface",
	}

	initDaemonFlag = cli.StringFlag{
		Name:  "daemon",
		Usage: "url of the incubatord HTTP interface",
		Value: "http://localhost:8080",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the incubator CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Usage:     "set a <key> <value> in the local state",
			ArgsUsage: "<key> <value>",
			Action:    configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&initDaemonFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range state {
		fmt.Fprintln(ctx.App.Writer, key+": "+value)
	}

	return nil
}

func configInitAction(ctx *cli.Context) error {
	return setState(map[string]string{
		"daemon": ctx.String(initDaemonFlag.Name),
	})
}

func configSetAction(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	key := ctx.Args().Get(0)
	value := ctx.Args().Get(1)

	return setState(map[string]string{key: value})
}
