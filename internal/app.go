package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"
	"withings-mcp/internal/auth"
	"withings-mcp/internal/controllers"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/services"
	"withings-mcp/internal/structures"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const instructions = "Withings health data: user devices, body measurements, daily activity, " +
	"sleep, workouts and heart rate. Dates are YYYY-MM-DD. If a tool reports that you are not " +
	"authenticated, call get_authorization_url and then exchange_authorization_code."

var ErrAuthorizationTimeout = errors.New("timed out waiting for the authorization callback")

type App struct {
	MCPServer *server.MCPServer

	conf     *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	router   providers.RouterProviderInterface
	data     services.HealthDataServiceInterface
	callback *controllers.CallbackController

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewApp(toolController *controllers.ToolController, callbackController *controllers.CallbackController, data services.HealthDataServiceInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(_ context.Context, _ any, message *mcp.InitializeRequest, _ *mcp.InitializeResult) {
		logger.Infof(providers.TypeApp, "Client connected: %s %s", message.Params.ClientInfo.Name, message.Params.ClientInfo.Version)
	})

	s := server.NewMCPServer(
		conf.AppName,
		conf.Version,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(toolController.Middleware),
		server.WithRecovery(),
		server.WithHooks(hooks),
		server.WithInstructions(instructions),
	)
	s.AddTools(toolController.Tools()...)

	return &App{
		MCPServer: s,
		conf:      conf,
		logger:    logger,
		metrics:   metrics,
		router:    router,
		data:      data,
		callback:  callbackController,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// Serve speaks MCP over stdio until the input closes or a signal arrives.
// With metrics enabled a side listener exposes /metrics and /health; the
// OAuth callback is mounted there too but refuses codes outside an
// authorization flow.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Infof(providers.TypeApp, "Starting %s %s on stdio", a.conf.AppName, a.conf.Version)
	if !a.data.TokenStatus().Authenticated {
		a.logger.Warnf(providers.TypeAuth, "No Withings access token, tools will ask for authorization")
	}

	serverErr := make(chan error, 1)
	var telemetry *http.Server
	if a.conf.Metrics.Enabled {
		ln, err := net.Listen("tcp", a.conf.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("telemetry listener: %w", err)
		}
		telemetry = a.newHTTPServer(a.TelemetryHandler())
		go func() {
			a.logger.Infof(providers.TypeHttp, "Listening telemetry on %s", ln.Addr())
			if err := telemetry.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	stdio := server.NewStdioServer(a.MCPServer)
	go func() {
		serverErr <- stdio.Listen(ctx, a.stdin, a.stdout)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err = <-serverErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("server error: %w", err)
		} else {
			err = nil
		}
	}

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := telemetry.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}
	if err != nil {
		return err
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

func (a *App) TokenStatus() auth.TokenStatus {
	return a.data.TokenStatus()
}

// TelemetryHandler serves the registered routes plus the Prometheus scrape
// endpoint.
func (a *App) TelemetryHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", a.router.Mux(a.metrics))
	return mux
}

// Authorize runs the interactive OAuth flow: it listens on the redirect URI,
// prints the authorization URL and waits for the callback to deliver a code.
func (a *App) Authorize(ctx context.Context, timeout time.Duration) error {
	redirect, err := parseRedirect(a.conf.Withings.RedirectURI)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", listenAddr(redirect))
	if err != nil {
		return fmt.Errorf("callback listener: %w", err)
	}
	return a.authorize(ctx, ln, timeout)
}

func (a *App) authorize(ctx context.Context, ln net.Listener, timeout time.Duration) error {
	authURL, err := a.data.AuthorizationURL(a.conf.Withings.Scope)
	if err != nil {
		_ = ln.Close()
		return err
	}
	if u, err := url.Parse(authURL); err == nil {
		a.callback.ExpectState(u.Query().Get("state"))
	}
	defer a.callback.ExpectState("")

	srv := a.newHTTPServer(a.router.Mux(a.metrics))
	serverErr := make(chan error, 1)
	go func() {
		a.logger.Debugf(providers.TypeHttp, "Waiting for callback on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	_, _ = fmt.Fprintf(a.stderr, "Open this URL in a browser to authorize access:\n\n%s\n\n", authURL)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-a.callback.Done():
		if err != nil {
			return err
		}
		status := a.data.TokenStatus()
		_, _ = fmt.Fprintf(a.stderr, "Authorization complete. Tokens saved to %s\n", status.TokenFile)
		return nil
	case err := <-serverErr:
		return fmt.Errorf("callback server: %w", err)
	case <-timer.C:
		return ErrAuthorizationTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func parseRedirect(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("redirect URI %q has no host", raw)
	}
	return u, nil
}

func listenAddr(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
