package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nexora/internal/app"
	"nexora/internal/auth"
	"nexora/internal/catalog"
	"nexora/internal/config"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed test token", auth.ErrInvalidIdentity)
	}
	return &auth.Identity{Subject: parts[0], Email: parts[1], Name: "Test Admin"}, nil
}

// startServer runs the storefront on a loopback port with in-memory storage.
func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth:     config.AuthConfig{JWTSecret: "cli_test_secret", SessionTTL: time.Hour},
	}
	server, err := app.NewApp(cfg, app.Options{Verifier: fakeVerifier{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Fiber.Listener(ln)
	t.Cleanup(func() { server.Shutdown() })
	return "http://" + ln.Addr().String()
}

func run(t *testing.T, cfgPath, serverURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--server", serverURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ProductWorkflow(t *testing.T) {
	serverURL := startServer(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nexoractl.yaml")

	_, err := run(t, cfgPath, serverURL, "products", "list")
	assert.ErrorIs(t, err, catalog.ErrSignedOut)

	out, err := run(t, cfgPath, serverURL, "login", "--id-token", "sub-1:owner@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as owner@example.com")

	out, err = run(t, cfgPath, serverURL, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "<owner@example.com> (admin)")

	out, err = run(t, cfgPath, serverURL, "products", "add",
		"--name", "Tee", "--gender", "Unisex", "--price", "19.99", "--image", "https://img.example/tee.jpg")
	require.NoError(t, err)
	assert.Contains(t, out, "Product added successfully")

	_, err = run(t, cfgPath, serverURL, "products", "add",
		"--name", "Scarf", "--gender", "female", "--price", "25", "--old-price", "30", "--image", "https://img.example/scarf.jpg")
	require.NoError(t, err)

	_, err = run(t, cfgPath, serverURL, "products", "add", "--name", "Hoodie", "--gender", "male", "--image", "x")
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, catalog.FieldPrice, verr.Field)

	out, err = run(t, cfgPath, serverURL, "products", "list", "--gender", "female")
	require.NoError(t, err)
	assert.Contains(t, out, "Scarf")
	assert.NotContains(t, out, "Tee")

	csvPath := filepath.Join(dir, "products.csv")
	_, err = run(t, cfgPath, serverURL, "products", "export", "--out", csvPath)
	require.NoError(t, err)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	var rows []*productRow
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	f.Close()
	require.Len(t, rows, 2)
	byName := map[string]*productRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	assert.Equal(t, "19.99", byName["Tee"].Price)
	assert.Empty(t, byName["Tee"].OldPrice)
	assert.Equal(t, "30.00", byName["Scarf"].OldPrice)

	out, err = run(t, cfgPath, serverURL, "products", "delete", fmt.Sprint(byName["Tee"].ID))
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	out, err = run(t, cfgPath, serverURL, "products", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Tee")

	_, err = run(t, cfgPath, serverURL, "products", "delete", fmt.Sprint(byName["Tee"].ID))
	assert.Error(t, err)

	out, err = run(t, cfgPath, serverURL, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = run(t, cfgPath, serverURL, "whoami")
	assert.ErrorIs(t, err, catalog.ErrSignedOut)
}

func TestCLI_LoginRejected(t *testing.T) {
	serverURL := startServer(t)
	cfgPath := filepath.Join(t.TempDir(), "nexoractl.yaml")

	_, err := run(t, cfgPath, serverURL, "login", "--id-token", "garbage")
	assert.ErrorContains(t, err, "sign-in rejected (401)")

	_, err = run(t, cfgPath, serverURL, "login")
	assert.ErrorContains(t, err, "--id-token is required")
}
