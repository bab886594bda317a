package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/time/rate"

	"github.com/wricardo/snakes-and-ladders/api"
	"github.com/wricardo/snakes-and-ladders/game/config"
	"github.com/wricardo/snakes-and-ladders/game/engine"
	"github.com/wricardo/snakes-and-ladders/game/service"
	"github.com/wricardo/snakes-and-ladders/game/session"
	"github.com/wricardo/snakes-and-ladders/transport/mcp"
	"github.com/wricardo/snakes-and-ladders/transport/websocket"
)

const (
	cleanupInterval = time.Hour
	sessionMaxAge   = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// initializeServices wires the session and config managers into the game
// service. Stale sessions are pruned in the background until ctx is done.
func initializeServices(ctx context.Context, configDir string) (service.GameService, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	go sessionManager.RunCleanup(ctx, cleanupInterval, sessionMaxAge)

	return service.NewGameService(sessionManager, configManager), nil
}

// newAPIServer creates the REST server with a roll limit taken from the flags
func newAPIServer(cmd *cli.Command, gameService service.GameService, hub *websocket.Hub) *api.Server {
	perSecond := cmd.Float("roll-rate")
	if perSecond <= 0 {
		return api.NewServer(gameService, hub, api.WithRollLimit(rate.Inf, 0))
	}
	return api.NewServer(gameService, hub, api.WithRollLimit(rate.Limit(perSecond), defaultRollBurst))
}

// mcpHandler answers one JSON-RPC message per POST request
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, client *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", mcpHandler(client))
	return router
}

// serverAction runs the HTTP server with REST API, WebSocket hub and an /mcp
// proxy endpoint. With --ngrok it also provisions a public tunnel.
func serverAction(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gameService, err := initializeServices(ctx, cmd.String("config-dir"))
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	router := newRouter(newAPIServer(cmd, gameService, hub), mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("version", Version).Str("addr", addr).Msg("starting " + AppName)

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), router)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serverErr:
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("🚀 ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// apiReachable reports whether an API server answers its health check
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves the REST API on a random loopback port and returns
// its base URL. The server stops when ctx is done.
func startInternalAPI(ctx context.Context, handler http.Handler) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: handler}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return "http://" + listener.Addr().String(), nil
}

// mcpAction runs an MCP stdio server. It reuses an external API when one is
// reachable and otherwise starts an internal one on a loopback port.
func mcpAction(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	externalURL := cmd.String("api-url")
	baseURL := externalURL

	log.Info().Str("url", externalURL).Msg("checking for external API server")
	if apiReachable(externalURL) {
		log.Info().Str("url", externalURL).Msg("MCP stdio server ready (using external HTTP server)")
	} else {
		gameService, err := initializeServices(ctx, cmd.String("config-dir"))
		if err != nil {
			return err
		}
		hub := websocket.NewHub()
		go hub.Run(ctx)

		baseURL, err = startInternalAPI(ctx, newAPIServer(cmd, gameService, hub))
		if err != nil {
			return err
		}
		log.Info().Str("url", baseURL).Msg("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// simulateAction plays one game with the engine directly and prints its log
func simulateAction(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		log.Warn().Err(err).Msg("config directory unavailable, using built-in rule sets")
		configManager, _ = config.NewManager("")
	}
	rules, err := configManager.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if seed := cmd.Int("seed"); seed > 0 {
		rules.Seed = uint64(seed)
	}

	snapshot, err := simulate(ctx, os.Stdout, rules, cmd.Int("players"), cmd.StringSlice("name"), cmd.Int("max-turns"))
	if err != nil {
		return err
	}
	if snapshot.Winner == nil {
		fmt.Printf("No winner after %d turns\n", snapshot.Turn)
	}
	return nil
}

// simulate plays until a player wins, maxTurns is reached or ctx is done,
// writing every engine log line to w.
func simulate(ctx context.Context, w io.Writer, rules *engine.Rules, players int, names []string, maxTurns int) (engine.GameSnapshot, error) {
	e, err := engine.NewEngine(rules)
	if err != nil {
		return engine.GameSnapshot{}, err
	}
	if err := e.StartGame(players, names); err != nil {
		return engine.GameSnapshot{}, err
	}
	for _, line := range e.Log() {
		fmt.Fprintln(w, line)
	}

	for turn := 0; turn < maxTurns && e.Status() == engine.InProgress; turn++ {
		if err := ctx.Err(); err != nil {
			return e.Snapshot(), err
		}
		result, err := e.Roll()
		if err != nil {
			return e.Snapshot(), err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(w, line)
		}
	}
	return e.Snapshot(), nil
}
