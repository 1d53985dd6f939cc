package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"

	"nexora/internal/app"
	"nexora/internal/models"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerStartupAndHealthCheck(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("CATALOG_REFRESH", "off")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)

	server, err := app.NewApp(cfg, app.Options{})
	require.NoError(t, err)
	defer server.Shutdown()

	_, err = server.Catalog.Add(context.Background(), models.ProductDraft{
		Name: "Tote", Gender: "unisex", Price: 15, Image: "https://img.example/tote.jpg",
	})
	require.NoError(t, err)
	require.NoError(t, server.Start(context.Background()))

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := server.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, float64(1), body["catalog"].(map[string]interface{})["products"])
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := server.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/admin/add-product", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestStartupReportsInvalidConfig(t *testing.T) {
	if os.Getenv("NEXORA_RUN_MAIN") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestStartupReportsInvalidConfig$")
	cmd.Env = append(os.Environ(), "NEXORA_RUN_MAIN=1", "DATABASE_DRIVER=bogus")
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(output), "failed to load configuration")
	assert.Contains(t, string(output), `unsupported DATABASE_DRIVER "bogus"`)
}
