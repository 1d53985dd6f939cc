package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"nexora/internal/auth"
	"nexora/internal/catalog"
	"nexora/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const requestTimeout = 15 * time.Second

// cli carries the state shared by every subcommand.
type cli struct {
	out        io.Writer
	v          *viper.Viper
	configPath string
	httpClient *http.Client
	session    *auth.State
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{
		out:        out,
		v:          viper.New(),
		httpClient: &http.Client{Timeout: requestTimeout},
		session:    auth.NewState(),
	}

	root := &cobra.Command{
		Use:           "nexoractl",
		Short:         "Manage the Nexora storefront catalog",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $HOME/.nexoractl.yaml)")
	root.PersistentFlags().String("server", "http://localhost:8080", "storefront server base URL")

	root.AddCommand(
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newWhoamiCmd(),
		c.newProductsCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command) error {
	if c.configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to locate home directory: %w", err)
		}
		c.configPath = filepath.Join(home, ".nexoractl.yaml")
	}
	c.v.SetConfigFile(c.configPath)
	c.v.SetConfigType("yaml")
	c.v.SetEnvPrefix("NEXORACTL")
	c.v.AutomaticEnv()
	if err := c.v.BindPFlag("server", cmd.Flag("server")); err != nil {
		return err
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", c.configPath, err)
		}
	}

	if token := c.v.GetString("token"); token != "" {
		c.session.SignIn(&models.User{
			ID:    c.v.GetString("user_id"),
			Email: c.v.GetString("email"),
		}, token)
	}
	return nil
}

func (c *cli) saveConfig() error {
	if err := c.v.WriteConfigAs(c.configPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.configPath, err)
	}
	return os.Chmod(c.configPath, 0o600)
}

func (c *cli) server() string {
	return c.v.GetString("server")
}

// catalog builds a Catalog that talks to the server with the stored session.
func (c *cli) catalog() *catalog.Catalog {
	return catalog.New(catalog.NewHTTPClient(c.server(), c.session, c.httpClient))
}

func (c *cli) requireSession() error {
	if !c.session.SignedIn() {
		return fmt.Errorf("%w: run `nexoractl login --id-token <token>` first", catalog.ErrSignedOut)
	}
	return nil
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}
