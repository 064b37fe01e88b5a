// Package main implements paddlectl, an operator CLI for the Paddle vendor
// API and for checking webhook signatures offline.
//
// Usage:
//
//	paddlectl <command> [flags]
//
// Credentials come from the same environment as the receiver
// (PADDLE_VENDOR_ID, PADDLE_VENDOR_AUTH_CODE, PADDLE_PUBLIC_KEY, ...). When the
// auth code is unset and stdin is a terminal it is prompted for without echo.
//
// Results are written to stdout as indented JSON. Vendor API errors exit with
// status 2, every other failure with status 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"paddle/internal/config"
	"paddle/internal/paddle"
	"paddle/internal/types"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitAPIError = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	app := &cli{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		loadConfig: func() (*config.Config, error) {
			var provider config.SecretProvider
			if os.Getenv("APP_ENV") != "local" {
				provider = config.NewSSMProvider(os.Getenv("AWS_REGION"))
			}
			return config.LoadConfig(provider)
		},
	}
	code := app.run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// cli carries the process boundary so tests can drive run directly.
type cli struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.Config, error)
	httpClient *http.Client
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		c.usage()
		if len(args) == 0 {
			return exitFailure
		}
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.stderr, "error: unknown command %q\n\n", args[0])
		c.usage()
		return exitFailure
	}

	err := c.execute(ctx, cmd, args[1:])
	return c.report(err)
}

func (c *cli) execute(ctx context.Context, cmd command, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg, c.stderr)

	if cmd.needsVendor {
		if cfg.Paddle.VendorAuthCode.IsZero() {
			code, err := c.promptSecret("Paddle vendor auth code: ")
			if err != nil {
				return err
			}
			cfg.Paddle.VendorAuthCode = types.SecretString(code)
		}
		if err := cfg.RequireVendorCredentials(); err != nil {
			return err
		}
	}

	env := &commandEnv{
		client: newClient(cfg, logger, c.httpClient),
		cfg:    cfg,
		stdin:  c.stdin,
		out:    c.stdout,
		errOut: c.stderr,
	}
	return cmd.run(ctx, env, args)
}

// report maps err to an exit code, printing vendor errors as code and
// message.
func (c *cli) report(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errHelp) {
		return exitOK
	}
	if apiErr, ok := paddle.IsAPIError(err); ok {
		fmt.Fprintf(c.stderr, "paddle error %d: %s\n", apiErr.Code, apiErr.Message)
		return exitAPIError
	}
	fmt.Fprintf(c.stderr, "error: %v\n", err)
	return exitFailure
}

// promptSecret reads a line without echo when stdin is a terminal. Piped or
// redirected stdin is not read, so scripts fail fast on missing credentials.
func (c *cli) promptSecret(prompt string) (string, error) {
	f, ok := c.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", nil
	}

	fmt.Fprint(c.stderr, prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func (c *cli) usage() {
	fmt.Fprintf(c.stderr, "paddlectl: Paddle vendor API operator tool\n\n")
	fmt.Fprintf(c.stderr, "Usage:\n  paddlectl <command> [flags]\n\nCommands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(c.stderr, "  %-13s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(c.stderr, "\nRun 'paddlectl <command> -h' for command flags.\n")
}

// newClient builds the vendor client from configuration.
func newClient(cfg *config.Config, logger *slog.Logger, httpClient *http.Client) *paddle.Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Paddle.HTTPTimeout}
	}

	var opts []paddle.Option
	if cfg.Paddle.CircuitBreaker {
		opts = append(opts, paddle.WithCircuitBreaker("paddlectl"))
	}

	return paddle.New(paddle.Config{
		VendorID:       cfg.Paddle.VendorID,
		VendorAuthCode: cfg.Paddle.VendorAuthCode,
		PublicKey:      cfg.Paddle.PublicKey,
		ServerURL:      cfg.Paddle.ServerURL,
		HTTPClient:     httpClient,
		UserAgent:      cfg.Paddle.UserAgent + " paddlectl/" + cfg.Build.UserAgentSuffix(),
		Logger:         logger,
	}, opts...)
}

// newLogger writes to stderr so stdout stays machine-readable.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	lvl := slog.LevelWarn
	if cfg.LogLevel == "debug" {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
