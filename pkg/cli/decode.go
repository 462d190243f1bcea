package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	githubcontroller "github.com/m-mizutani/gakoci/pkg/controller/github"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdDecode() *cli.Command {
	var event string

	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a webhook payload file and print the event fields",
		ArgsUsage: "<payload.json | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "event",
				Aliases:     []string{"e"},
				Usage:       "X-GitHub-Event value of the payload",
				Value:       "push",
				Destination: &event,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("payload file is required")
			}

			payload, err := readPayload(c, path)
			if err != nil {
				return err
			}

			info, err := githubcontroller.Decode(event, payload)
			if err != nil {
				return err
			}

			printEventInfo(c.Root().Writer, info)
			return nil
		},
	}
}

func readPayload(c *cli.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(c.Root().Reader)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read payload from stdin")
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read payload", goerr.V("path", path))
	}
	return data, nil
}

func printEventInfo(w io.Writer, info *model.EventInfo) {
	key := color.New(color.FgCyan)
	fields := []struct {
		name  string
		value string
	}{
		{"kind", string(info.Kind)},
		{"event", info.Event},
		{"owner", info.Owner},
		{"repo", info.Repo},
		{"branch", info.Branch},
		{"commit", info.Commit},
		{"statuses_url", info.StatusesURL},
		{"base_owner", info.BaseOwner},
		{"base_repo", info.BaseRepo},
		{"pr_number", info.PRNumber},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		_, _ = key.Fprintf(w, "%-13s", f.name)
		_, _ = fmt.Fprintln(w, f.value)
	}

	if !info.Actionable() {
		_, _ = color.New(color.FgYellow).Fprintln(w, "not actionable, no hooks would run")
	}
}
