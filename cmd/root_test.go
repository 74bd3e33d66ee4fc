package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/killallgit/liftchat/pkg/api"
	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/config"
	"github.com/killallgit/liftchat/pkg/storage"
	"github.com/killallgit/liftchat/pkg/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestReadPrompt(t *testing.T) {
	t.Run("should join arguments", func(t *testing.T) {
		prompt, err := readPrompt([]string{"how", "much", "protein?"}, strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, "how much protein?", prompt)
	})

	t.Run("should read piped stdin", func(t *testing.T) {
		prompt, err := readPrompt(nil, strings.NewReader("  best squat cues?\n"))
		require.NoError(t, err)
		assert.Equal(t, "best squat cues?", prompt)
	})
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(config.TransportConfig{AttemptsPerSecond: 0}))

	limiter := newLimiter(config.TransportConfig{AttemptsPerSecond: 5, AttemptBurst: 0})
	require.NotNil(t, limiter)
	assert.Equal(t, rate.Limit(5), limiter.Limit())
	assert.Equal(t, 1, limiter.Burst())
}

func TestOpenStore(t *testing.T) {
	mem, err := openStore(config.StorageConfig{Ephemeral: true})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, mem)

	path := t.TempDir() + "/local.json"
	file, err := openStore(config.StorageConfig{Path: path})
	require.NoError(t, err)
	require.IsType(t, &storage.FileStore{}, file)
	assert.Equal(t, path, file.(*storage.FileStore).Path())
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	a := &app{
		cfg:   &config.Config{API: config.APIConfig{SendToken: true}},
		store: store,
		log:   zap.NewNop().Sugar(),
	}

	source := a.tokenSource()
	require.NotNil(t, source)
	assert.Empty(t, source(ctx))

	require.NoError(t, store.Set(ctx, storage.KeyToken, "opaque-token"))
	assert.Equal(t, "opaque-token", source(ctx))

	a.cfg.API.SendToken = false
	assert.Nil(t, a.tokenSource())
}

func TestPromptCredentialsFromStdin(t *testing.T) {
	var out bytes.Buffer

	creds, err := promptCredentials(strings.NewReader("s3cret\n"), &out, "lifter", true)
	require.NoError(t, err)
	assert.Equal(t, credentials{username: "lifter", password: "s3cret"}, creds)

	_, err = promptCredentials(strings.NewReader("s3cret\n"), &out, "", true)
	assert.Error(t, err)

	_, err = promptCredentials(strings.NewReader("\n"), &out, "lifter", true)
	assert.Error(t, err)
}

func TestProbeAll(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer up.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	client := api.NewClient(api.Options{UserAgent: "liftchat-test"})
	statuses, err := probeAll(context.Background(), client, []string{up.URL, broken.URL}, time.Second)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, up.URL, statuses[0].BaseURL)
	assert.True(t, statuses[0].Available)
	assert.Equal(t, http.StatusNotFound, statuses[0].StatusCode)

	assert.Equal(t, broken.URL, statuses[1].BaseURL)
	assert.False(t, statuses[1].Available)

	var buf bytes.Buffer
	renderProbeTable(&buf, statuses)
	table := buf.String()
	assert.Contains(t, table, "BASE URL")
	assert.Contains(t, table, up.URL)
	assert.Contains(t, table, "reachable")
	assert.Contains(t, table, "unreachable")
	assert.Contains(t, table, "502")
}

// askAgainst runs the one-shot path against backend with an in-memory store
func askAgainst(t *testing.T, backend *testutil.FakeBackend, prompt string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("api.base_urls", []string{backend.URL})
	viper.Set("storage.ephemeral", true)
	viper.Set("logging.log_file", filepath.Join(t.TempDir(), "system.log"))

	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())

	err := runAsk(cmd, prompt, true)
	return out.String(), err
}

func TestAskStreamsReply(t *testing.T) {
	backend := testutil.NewFakeBackend("Squat to depth.\n\nSources:\n[Squat guide](http://example.com/squat)")
	defer backend.Close()

	out, err := askAgainst(t, backend, "how deep should I squat?")
	require.NoError(t, err)

	assert.Contains(t, out, "Squat to depth.")
	assert.NotContains(t, out, "[Squat guide]")
	assert.Contains(t, out, "Squat guide <http://example.com/squat>")

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/chat/stream", reqs[0].Path)
	assert.Equal(t, "how deep should I squat?", reqs[0].Query)
	assert.NotEmpty(t, reqs[0].SessionID)
	assert.Contains(t, reqs[0].UserAgent, "liftchat/")
}

func TestAskReportsRateLimit(t *testing.T) {
	backend := testutil.NewFakeBackend("unused")
	backend.StreamStatus = http.StatusServiceUnavailable
	backend.BufferedStatus = http.StatusTooManyRequests
	defer backend.Close()

	out, err := askAgainst(t, backend, "hello")
	require.Error(t, err)

	var exhausted *chat.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.Contains(t, out, chat.RateLimitMessage)
	assert.Len(t, backend.Requests(), 2)
}
