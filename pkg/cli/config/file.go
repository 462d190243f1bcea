package config

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File loads flag values from a TOML file. Keys are flag names; a table prefixes its keys, so
// `[github] token = "..."` sets --github-token. Values given on the command line or through
// the environment are kept.
type File struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("GAKOCI_CONFIG"),
		},
	}
}

// Load reads the file into flat flag name/value pairs
func (c *File) Load() (map[string]string, error) {
	if c.Path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}

	values := make(map[string]string)
	if err := flatten("", raw, values); err != nil {
		return nil, goerr.Wrap(err, "invalid config file", goerr.V("path", c.Path))
	}
	return values, nil
}

// Apply sets every flag of cmd that the file names and that was not set otherwise.
// Keys that are not flags of cmd are skipped; another command may own them.
func (c *File) Apply(cmd *cli.Command) error {
	values, err := c.Load()
	if err != nil {
		return err
	}

	for _, flag := range cmd.Flags {
		for _, name := range flag.Names() {
			v, ok := values[name]
			if !ok || cmd.IsSet(name) {
				continue
			}
			if err := cmd.Set(name, v); err != nil {
				return goerr.Wrap(err, "invalid config value", goerr.V("key", name), goerr.V("path", c.Path))
			}
		}
	}
	return nil
}

func flatten(prefix string, raw map[string]any, out map[string]string) error {
	for key, value := range raw {
		name := key
		if prefix != "" {
			name = prefix + "-" + key
		}

		switch v := value.(type) {
		case map[string]any:
			if err := flatten(name, v, out); err != nil {
				return err
			}
		case []any:
			return goerr.New("arrays are not supported", goerr.V("key", name))
		default:
			out[name] = fmt.Sprint(v)
		}
	}
	return nil
}
