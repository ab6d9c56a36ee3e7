package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tdex-network/incubator-tracker/pkg/httputil"
	"github.com/urfave/cli/v2"
)

var deposit = cli.Command{
	Name:      "deposit",
	Usage:     "get the amount a user deposited to the incubator",
	ArgsUsage: "<user>",
	Action:    depositAction,
	Flags: []cli.Flag{
		&daemonFlag,
	},
}

func depositAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	user := ctx.Args().First()

	daemonURL, err := getDaemonURL(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf(
		"%s/v1/deposits/%s",
		strings.TrimSuffix(daemonURL, "/"), url.PathEscape(user),
	)
	return getAndPrint(ctx, endpoint)
}

func getAndPrint(ctx *cli.Context, endpoint string) error {
	status, body, err := httputil.NewHTTPRequest(
		ctx.Context, http.MethodGet, endpoint, "", nil,
	)
	if err != nil {
		return err
	}

	var resp map[string]interface{}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return fmt.Errorf("unexpected response (%d): %s", status, body)
	}
	if status != http.StatusOK {
		if msg, ok := resp["error"]; ok {
			return fmt.Errorf("%v", msg)
		}
		return fmt.Errorf("request failed with status %d", status)
	}

	return printRespJSON(ctx, resp)
}
