// Command snakes-and-ladders runs the Snakes & Ladders game server.
//
// It supports three modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "simulate" plays a headless game and prints the game log
//
// Flags control host/port, config directory, debug logging, the roll rate limit
// and optional ngrok tunneling for easy external access during development.
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/snakes-and-ladders/internal/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Snakes & Ladders Game Server"
)

const (
	defaultPort      = 8080
	defaultHost      = "localhost"
	defaultConfigDir = "configs"
	defaultRollRate  = 10.0
	defaultRollBurst = 20
	defaultMaxTurns  = 1000
	externalAPIURL   = "http://localhost:8080"
)

// newApp builds the command tree. Flags on the root are visible to every
// subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "snakes-and-ladders",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   defaultPort,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   defaultHost,
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   defaultConfigDir,
				Usage:   "directory containing rule set files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.FloatFlag{
				Name:    "roll-rate",
				Value:   defaultRollRate,
				Usage:   "rolls per second allowed for each session",
				Sources: cli.EnvVars("ROLL_RATE"),
			},
		},
		DefaultCommand: "server",
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "enable ngrok tunnel",
						Sources: cli.EnvVars("NGROK_ENABLED"),
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: serverAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server backed by an external or internal HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   externalAPIURL,
						Usage:   "API server to reuse when it is reachable",
						Sources: cli.EnvVars("API_URL"),
					},
				},
				Action: mcpAction,
			},
			{
				Name:  "simulate",
				Usage: "play a headless game and print the game log",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Value: "classic",
						Usage: "rule set to play",
					},
					&cli.IntFlag{
						Name:  "players",
						Value: 2,
						Usage: "number of players (2-6)",
					},
					&cli.StringSliceFlag{
						Name:  "name",
						Usage: "player name, repeat for each seat",
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "random seed, 0 draws one from the clock",
					},
					&cli.IntFlag{
						Name:  "max-turns",
						Value: defaultMaxTurns,
						Usage: "stop after this many turns",
					},
				},
				Action: simulateAction,
			},
		},
	}
}

// main loads .env, then runs the selected command until it returns or a
// shutdown signal arrives.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

// setupLogging installs the global logger from the --debug flag
func setupLogging(cmd *cli.Command) {
	logging.Setup(cmd.Bool("debug"), nil)
}
