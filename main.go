// Command iuro-server starts the Iuri-Ware connection hub: a websocket
// server where clients gather in rooms, chat, and play quick rounds of
// mini-games against each other.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the websocket
//     route, a small REST introspection API, the static web client, and
//     an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server against an internal HTTP
//     server bound to a random loopback port
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/QS-Iuro-Ware/Iuri-Ware/api"
	"github.com/QS-Iuro-Ware/Iuri-Ware/game/hub"
	"github.com/QS-Iuro-Ware/Iuri-Ware/transport/mcp"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Iuri-Ware Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	cmd := &cli.Command{
		Name:    "iuro-server",
		Usage:   "real-time chat and mini-game hub",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "0.0.0.0",
				Usage: "address to bind the HTTP server to",
			},
			&cli.IntFlag{
				Name:  "port",
				Value: 8080,
				Usage: "HTTP server port",
			},
			&cli.StringFlag{
				Name:  "static-dir",
				Value: "static",
				Usage: "directory with the web client assets (empty to disable)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging(cmd.Bool("debug"))
			addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
			return runHTTPServer(addr, cmd.String("static-dir"))
		},
		Commands: []*cli.Command{
			{
				Name:  "stdio-mcp",
				Usage: "run an MCP stdio server with an internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					setupLogging(cmd.Bool("debug"))
					return runStdioMCP(cmd.String("static-dir"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// runHTTPServer starts the hub event loop and serves HTTP until a
// shutdown signal arrives.
func runHTTPServer(addr, staticDir string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New()
	go h.Run(ctx)

	router := newRouter(h, staticDir)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		IdleTimeout: 60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		log.Printf("%s v%s listening on %s", AppName, Version, addr)
		log.Printf("WebSocket: ws://%s/ws/", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		log.Printf("Received signal: %v. Shutting down...", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// newRouter combines the API server with the /mcp endpoint.
func newRouter(h *hub.Hub, staticDir string) http.Handler {
	apiServer := api.NewServer(h, staticDir)
	mcpServer := mcp.NewServer(h, Version)

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return router
}

// runStdioMCP serves MCP over stdio. The hub and a full HTTP server are
// started on a random loopback port so the tools have a live server to
// inspect.
func runStdioMCP(staticDir string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New()
	go h.Run(ctx)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to get available port: %w", err)
	}

	internalAddr := listener.Addr().String()
	log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

	httpServer := &http.Server{Handler: newRouter(h, staticDir)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	mcpServer := mcp.NewServer(h, Version)
	log.Println("MCP stdio server ready")
	return mcpserver.ServeStdio(mcpServer.GetMCPServer())
}
