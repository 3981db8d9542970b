// Command sokoban starts the Sokoban game server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server backed by an existing API or an internal one
//
// Settings come from SOKOBAN_* environment variables (a .env file is loaded
// first); flags given on the command line override them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/sokoban/api"
	"github.com/wricardo/mcp-training/sokoban/game/config"
	"github.com/wricardo/mcp-training/sokoban/game/journal"
	"github.com/wricardo/mcp-training/sokoban/game/records"
	"github.com/wricardo/mcp-training/sokoban/game/service"
	"github.com/wricardo/mcp-training/sokoban/game/session"
	"github.com/wricardo/mcp-training/sokoban/telemetry"
	"github.com/wricardo/mcp-training/sokoban/transport/mcp"
	"github.com/wricardo/mcp-training/sokoban/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sokoban Server"
)

var (
	port          = flag.Int("port", 8080, "HTTP server port (SOKOBAN_PORT)")
	host          = flag.String("host", "localhost", "HTTP server host (SOKOBAN_HOST)")
	levelDir      = flag.String("level-dir", "levels", "Directory containing level files (SOKOBAN_LEVEL_DIR)")
	defaultLevel  = flag.String("default-level", "", "Level used when a session names none (SOKOBAN_DEFAULT_LEVEL)")
	recordsDriver = flag.String("records", "memory", "Records store: memory, sqlite or postgres (SOKOBAN_RECORDS_DRIVER)")
	recordsDSN    = flag.String("records-dsn", "", "Records store DSN (SOKOBAN_RECORDS_DSN)")
	journalDir    = flag.String("journal-dir", "", "Write a compressed move journal here (SOKOBAN_JOURNAL_DIR)")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	version       = flag.Bool("version", false, "Show version information")
	ngrokEnabled  = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth     = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain   = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                               # Serve levels/ on port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -records sqlite -records-dsn sokoban.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                     # Run MCP stdio server\n", os.Args[0])
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	applyFlags(&settings, setFlags())

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	if err := run(mode, settings); err != nil {
		log.Fatal(err)
	}
}

// Modes accepted on the command line
const (
	modeServer = "server"
	modeStdio  = "stdio-mcp"
)

// parseMode resolves a mode name or alias
func parseMode(mode string) (string, error) {
	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		return modeStdio, nil
	case "server", "http":
		return modeServer, nil
	default:
		return "", fmt.Errorf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// run starts the services for mode and blocks until the process is
// signalled. Stores, journal and tracing are closed before it returns.
func run(mode string, settings config.Settings) error {
	mode, err := parseMode(mode)
	if err != nil {
		return err
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.ServiceName, settings.OTelEndpoint)
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	app, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer app.Close()

	go app.sessions.RunJanitor(ctx, settings.SessionTTL, 0)

	if mode == modeStdio {
		return runStdioMCP(ctx, app.game, settings)
	}
	return runHTTPServer(ctx, app.game, settings)
}

// setFlags returns the names of the flags given on the command line
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags copies explicitly set flags over the environment settings
func applyFlags(s *config.Settings, set map[string]bool) {
	if set["port"] {
		s.Port = *port
	}
	if set["host"] {
		s.Host = *host
	}
	if set["level-dir"] {
		s.LevelDir = *levelDir
	}
	if set["default-level"] {
		s.DefaultLevel = *defaultLevel
	}
	if set["records"] {
		s.RecordsDriver = *recordsDriver
	}
	if set["records-dsn"] {
		s.RecordsDSN = *recordsDSN
	}
	if set["journal-dir"] {
		s.JournalDir = *journalDir
	}
}

// services bundles what main owns and must close on exit
type services struct {
	game     service.GameService
	sessions *session.Manager
	records  records.Store
	journal  *journal.Writer
}

func (s *services) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			log.Printf("Journal close error: %v", err)
		}
	}
	if s.records != nil {
		if err := s.records.Close(); err != nil {
			log.Printf("Records store close error: %v", err)
		}
	}
}

// initializeServices wires the level manager, records store, journal and
// session manager into the game service
func initializeServices(settings config.Settings) (*services, error) {
	configManager, err := config.NewManager(settings.LevelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	if settings.DefaultLevel != "" {
		if err := configManager.SetDefault(settings.DefaultLevel); err != nil {
			return nil, fmt.Errorf("default level %q: %w", settings.DefaultLevel, err)
		}
	}

	store, err := records.Open(settings.RecordsDriver, settings.RecordsDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open records store: %w", err)
	}

	app := &services{
		sessions: session.NewManager(),
		records:  store,
	}

	opts := []service.Option{service.WithRecords(store)}
	if settings.JournalDir != "" {
		if err := os.MkdirAll(settings.JournalDir, 0o755); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		app.journal = journal.NewWriter(settings.JournalDir, "moves")
		opts = append(opts, service.WithJournal(app.journal))
		log.Printf("Journaling moves to %s", settings.JournalDir)
	}

	app.game = service.NewGameService(app.sessions, configManager, opts...)
	log.Printf("Levels: %s, records: %s", settings.LevelDir, settings.RecordsDriver)
	return app, nil
}

// mcpHandler serves single JSON-RPC messages against the MCP server
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
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

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to write MCP response: %v", err)
		}
	}
}

// newRootHandler mounts the API at / and the MCP proxy at /mcp
func newRootHandler(gameService service.GameService, hub *websocket.Hub, mcpBaseURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(gameService, hub))
	mux.Handle("/mcp", mcpHandler(mcp.NewClient(mcpBaseURL).GetMCPServer()))
	return mux
}

// runHTTPServer serves the API, WebSocket hub and /mcp until ctx is done.
// With ngrok enabled the same handler is also served through a tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService, settings config.Settings) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	handler := newRootHandler(gameService, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if ngrokRequested() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, handler)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case runErr = <-serveErr:
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

func ngrokRequested() bool {
	if *ngrokEnabled {
		return true
	}
	v := os.Getenv("NGROK_ENABLED")
	return v == "true" || v == "1"
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Println("Starting ngrok tunnel...")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	log.Printf("Ngrok tunnel established: %s", tun.URL())
	log.Printf("  REST API (ngrok): %s/api", tun.URL())
	log.Printf("  MCP endpoint (ngrok): %s/mcp", tun.URL())

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// externalAPI reports whether an API server already answers at baseURL
func externalAPI(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP serves MCP over stdio. It reuses an API already running at the
// configured address; otherwise it starts one on a random loopback port.
func runStdioMCP(ctx context.Context, gameService service.GameService, settings config.Settings) error {
	baseURL := fmt.Sprintf("http://%s:%d", settings.Host, settings.Port)

	if externalAPI(baseURL) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", listener.Addr())

		hub := websocket.NewHub()
		go hub.Run(ctx)

		internal := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := internal.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer internal.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
