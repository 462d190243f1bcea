package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr          string
	AdminToken    string `masq:"secret"`
	ShutdownGrace time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("GAKOCI_ADDR"),
		},
		&cli.StringFlag{
			Name:        "admin-token",
			Usage:       "Bearer token for POST /admin/shutdown (endpoint disabled when empty)",
			Destination: &c.AdminToken,
			Sources:     cli.EnvVars("GAKOCI_ADMIN_TOKEN"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-grace",
			Usage:       "How long in-flight hooks may run after a shutdown was requested",
			Value:       time.Minute,
			Destination: &c.ShutdownGrace,
			Sources:     cli.EnvVars("GAKOCI_SHUTDOWN_GRACE"),
		},
	}
}
