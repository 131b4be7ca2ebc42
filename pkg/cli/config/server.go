package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr            string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "0.0.0.0:8800",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("PUSHDEPLOY_ADDR"),
		},
		&cli.Int64Flag{
			Name:        "max-body-bytes",
			Usage:       "Maximum accepted request body size",
			Value:       25 << 20,
			Destination: &c.MaxBodyBytes,
			Sources:     cli.EnvVars("PUSHDEPLOY_MAX_BODY_BYTES"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			Value:       10 * time.Second,
			Destination: &c.ShutdownTimeout,
			Sources:     cli.EnvVars("PUSHDEPLOY_SHUTDOWN_TIMEOUT"),
		},
	}
}
