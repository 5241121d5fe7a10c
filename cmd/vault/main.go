// Package main is the vault command.
//
// SUBCOMMANDS:
//
//	vault serve          run the web server (gallery, admin, notes, JSON API)
//	vault tui            terminal client against a running server
//	vault hash-password  print a bcrypt hash for auth.admin_password_hash
//	vault issue-token    print a long-lived API token for the terminal client
//
// Every subcommand reads the same YAML config (--config, or VAULT_CONFIG_FILE).
// A .env file in the working directory is loaded first, so values there are
// visible to both the ${VAR} expansion in the YAML and the env overrides.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/sakif/project-vault/internal/auth"
	"github.com/sakif/project-vault/internal/client"
	"github.com/sakif/project-vault/internal/config"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/server"
	"github.com/sakif/project-vault/internal/service"
	"github.com/sakif/project-vault/internal/tui"
)

func main() {
	cmd := &cli.Command{
		Name:  "vault",
		Usage: "Personal project gallery and notes vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/vault.yaml",
				Value:       "config/vault.yaml",
				Sources:     cli.EnvVars("VAULT_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web server",
				Action: serve,
			},
			{
				Name:   "tui",
				Usage:  "Open the terminal client",
				Action: runTUI,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Write client logs to this file (logs are discarded otherwise)",
					},
				},
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash of a password (reads stdin when no argument is given)",
				ArgsUsage: "[password]",
				Action:    hashPassword,
			},
			{
				Name:   "issue-token",
				Usage:  "Print an admin API token for the terminal client",
				Action: issueToken,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: 30 * 24 * time.Hour,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.App.NewLogger()
	slog.SetDefault(logger)

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Run blocks until SIGINT/SIGTERM and closes the store on the way out.
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runTUI builds the services on the HTTP client, so the terminal shares the
// server's store, validation and change feed.
func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Client.Validate(); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}

	// The alternate screen owns stdout; logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	remote := client.New(cfg.Client.URL, cfg.Client.Token)
	projects := service.NewProjectService(remote.Projects(), nil, logger)
	notes := service.NewNoteService(remote.Notes(), nil, logger)

	return tui.Run(ctx, projects, notes)
}

func hashPassword(_ context.Context, cmd *cli.Command) error {
	password := cmd.Args().First()
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password is empty")
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func issueToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateWithDuration(model.AdminSubject, cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
