package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coreybb/itemgate/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSourceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvPort, config.EnvBasePath, config.EnvSourceAURL, config.EnvSourceBURL,
		config.EnvLegacySourceA, config.EnvLegacySourceB, config.EnvSourceAName, config.EnvSourceBName,
		config.EnvFetchTimeout, config.EnvShutdownTimeout, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--"+FlagEnvFile, filepath.Join(t.TempDir(), "absent.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestFetch_MissingSourcesFailsAtStartup(t *testing.T) {
	clearSourceEnv(t)

	_, err := execute(t, CmdFetch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestServe_MissingSourcesFailsAtStartup(t *testing.T) {
	clearSourceEnv(t)

	_, err := execute(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestFetch_InvalidPortFlag(t *testing.T) {
	clearSourceEnv(t)
	t.Setenv(config.EnvSourceAURL, "mongodb://localhost:27017/shop")
	t.Setenv(config.EnvSourceBURL, "mongodb://localhost:27018/shop")

	_, err := execute(t, CmdFetch, "--"+FlagPort, "not-a-port")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestFetch_UnreachableSourcesPrintEmptyList(t *testing.T) {
	clearSourceEnv(t)
	unreachable := "mongodb://127.0.0.1:1/shop?serverSelectionTimeoutMS=200&connectTimeoutMS=200"
	t.Setenv(config.EnvSourceAURL, unreachable)
	t.Setenv(config.EnvSourceBURL, unreachable)

	out, err := execute(t, CmdFetch, "--"+FlagLogLevel, "error")
	require.NoError(t, err)
	assert.Contains(t, out, "[]")
}

func TestStartServer_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- startServer(ctx, "0", http.NotFoundHandler(), time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}
