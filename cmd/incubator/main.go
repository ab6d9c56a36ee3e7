package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

var (
	cliDataDir = btcutil.AppDataDir("incubator-cli", false)
	statePath  = path.Join(cliDataDir, "state.json")
)

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "incubator CLI"
	app.Usage = "Command line interface to query incubator deposits"
	app.Commands = append(
		app.Commands,
		&config,
		&deposit,
		&health,
		&scan,
	)
	return app
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(path.Dir(statePath)); os.IsNotExist(err) {
		if err := os.MkdirAll(path.Dir(statePath), os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func printRespJSON(ctx *cli.Context, resp interface{}) error {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}

	fmt.Fprintln(ctx.App.Writer, string(jsonStr))
	return nil
}

// getDaemonURL returns the url of the daemon from flags, or from the local
// state otherwise.
func getDaemonURL(ctx *cli.Context) (string, error) {
	if url := ctx.String(daemonFlag.Name); url != "" {
		return url, nil
	}

	state, err := getState()
	if err != nil {
		return "", err
	}
	url, ok := state["daemon"]
	if !ok || url == "" {
		return "", errors.New("set daemon with `config set daemon <url>`")
	}
	return url, nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[incubator] %v\n", err)
	}
	os.Exit(1)
}
