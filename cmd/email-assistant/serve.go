package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hal9000y/email-assistant/internal/auth"
	"github.com/hal9000y/email-assistant/internal/config"
	"github.com/hal9000y/email-assistant/internal/gservice"
	"github.com/hal9000y/email-assistant/internal/instrumentation"
	"github.com/hal9000y/email-assistant/internal/logging"
	"github.com/hal9000y/email-assistant/internal/tool"
)

type serveOptions struct {
	httpAddr       string
	oauthTokenFile string
	oauthURL       string
	envFile        string
	stdio          bool
	logFile        string
	namespaces     []string
	extended       bool
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent tools over MCP",
		Long: `Serve the agent tools over streamable HTTP at /mcp, and over stdio with --stdio.

The default tools are always exposed. Gmail search and retrieval are added with
--namespace gmail or --extended, and require OAuth credentials. Written emails
are only drafted unless EMAIL_ASSISTANT_SEND is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.httpAddr, "http-addr", "localhost:0", "HTTP server listen addr")
	f.StringVar(&opts.oauthTokenFile, "oauth-token-file", "./data/email-assistant-token.json", "Path to cache google oauth token, empty to avoid storing")
	f.StringVar(&opts.oauthURL, "oauth-url", "", "OAuth redirect URL")
	f.StringVar(&opts.envFile, "env-file", "", "Path to env file")
	f.BoolVar(&opts.stdio, "stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	f.StringVar(&opts.logFile, "log-file", "", "Path to log file (otherwise logs go to stdout unless --stdio)")
	f.StringSliceVar(&opts.namespaces, "namespace", nil, "Extension tool namespaces to expose")
	f.BoolVar(&opts.extended, "extended", false, "Expose every extension namespace")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	w, closeLog, err := logOutput(opts.stdio, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger, err := newLogger(cmd, w)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("config.Load failed: %w", err)
	}

	ln, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}

	mux := http.NewServeMux()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := instrumentation.NewMetrics(promReg)
	if err != nil {
		return fmt.Errorf("instrumentation.NewMetrics failed: %w", err)
	}
	mux.Handle("/metrics", instrumentation.Handler(promReg))

	namespaces := opts.namespaces
	needMailbox := cfg.Send || opts.extended || slices.Contains(namespaces, tool.GmailNamespace)

	var (
		mb   mailbox
		send sender
	)
	if needMailbox {
		gm, stop, err := setupMailbox(mux, ln, cfg, opts, logger)
		if err != nil {
			return err
		}
		defer stop()

		mb = gm
		if cfg.Send {
			send = gm
		}
	}

	reg, err := newRegistry(mb, send, logger)
	if err != nil {
		return err
	}
	if opts.extended {
		namespaces = reg.Extended()
	}

	srv := tool.NewServer(reg, namespaces, tool.WithLogger(logger), tool.WithMetrics(metrics))
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return srv }, nil))

	logger.Info("tools registered",
		slog.Any("namespaces", append([]string{tool.DefaultNamespace}, namespaces...)),
		slog.Bool("send", cfg.Send),
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(&http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}, ln, logger)
	defer stopHTTP()

	var errStdioCh <-chan error
	if opts.stdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(srv, logger)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		return err
	case err := <-errStdioCh:
		return err
	case <-shutdown:
		logger.Info("shutdown signal received")
	}

	return nil
}

// setupMailbox mounts the OAuth flow and returns the Gmail client. stop
// persists the token.
func setupMailbox(mux *http.ServeMux, ln net.Listener, cfg config.Config, opts serveOptions, logger *slog.Logger) (*gservice.GMail, func(), error) {
	redirectURL := opts.oauthURL
	if redirectURL == "" {
		redirectURL = fmt.Sprintf("http://%s/oauth", ln.Addr().String())
	}

	oauthCfg, err := cfg.OAuth(redirectURL)
	if err != nil {
		return nil, nil, fmt.Errorf("cfg.OAuth failed: %w", err)
	}

	tok, err := auth.NewToken(oauthCfg, opts.oauthTokenFile, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.NewToken failed: %w", err)
	}

	mux.Handle("/oauth", auth.NewHTTPHandler(tok, logger))

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(oauthCfg.RedirectURL, logger)
	}

	stop := func() {
		logger.Info("persisting token if exists")
		if err := tok.Persist(); err != nil {
			logger.Error("tok.Persist failed", logging.Err(err))
		}
	}

	return gservice.NewGmail(oauthCfg, tok), stop, nil
}

func serveStdio(srv *mcp.Server, logger *slog.Logger) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		logger.Info("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		logger.Info("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener, logger *slog.Logger) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		logger.Info("starting http server", slog.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("srv.Shutdown failed", logging.Err(err))
		}

		<-errHTTPCh
		logger.Info("http server stopped")
	}, errHTTPCh
}

// logOutput picks the log destination. Stdio mode owns stdout, so logs are
// discarded there unless a log file is given.
func logOutput(stdio bool, logFile string) (io.Writer, func(), error) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("os.OpenFile failed: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if stdio {
		return io.Discard, func() {}, nil
	}

	return os.Stdout, func() {}, nil
}

func openBrowser(url string, logger *slog.Logger) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		logger.Warn("could not open browser automatically, open the link manually",
			slog.String("url", url), logging.Err(err))
	}
}
