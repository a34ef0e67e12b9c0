package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devotionalReply = `{"reflection":"Be still.","application":["Sit quietly for five minutes."],"prayer":"Amen."}`

// env holds the directories of one isolated CLI environment.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("DEVOTIONAL_IMPORT_SECRET", "")
	t.Setenv("DEVOTIONAL_OTEL_ENDPOINT", "")
	return env{configDir: t.TempDir(), dataDir: t.TempDir()}
}

// exec runs the CLI and returns its exit code with captured output.
func (e env) exec(args ...string) (int, string, string) {
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(root, full, &stderr)
	return code, stdout.String(), stderr.String()
}

// fakeProvider serves chat completions and counts the calls.
func fakeProvider(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "served-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": devotionalReply},
			}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	code, out, _ := e.exec("version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "devotional v"+Version)
}

func TestInit_WritesConfigAndSeeds(t *testing.T) {
	e := newEnv(t)

	code, out, errOut := e.exec("init", "--seed")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "Seeded 90 verses")
	assert.FileExists(t, filepath.Join(e.configDir, "config.yaml"))

	code, out, errOut = e.exec("--json", "verse", "status")
	require.Equal(t, exitSuccess, code, errOut)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.EqualValues(t, 90, summary["verses_in_database"])
}

func TestVerse_ImportFileThenToday(t *testing.T) {
	e := newEnv(t)
	today := time.Now().UTC().Format("2006-01-02")
	csvPath := filepath.Join(t.TempDir(), "schedule.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Date,Verse of the Day,Reference Text\n"+
			today+",Psalm 46:10,Be still and know that I am God.\n"), 0o644))

	code, out, errOut := e.exec("verse", "import", "--file", csvPath)
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "Imported 1 verses from file")

	code, out, errOut = e.exec("verse", "today")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "Psalm 46:10")
	assert.Contains(t, out, "Be still and know")
}

func TestVerse_TodayWithoutSchedule(t *testing.T) {
	e := newEnv(t)
	code, _, errOut := e.exec("verse", "today")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "no verse scheduled")
}

func TestVerse_ImportRejectsBothSources(t *testing.T) {
	e := newEnv(t)
	code, _, _ := e.exec("verse", "import", "--file", "a.csv", "--url", "http://example.invalid/a.csv")
	assert.Equal(t, exitUserError, code)
}

func TestDevotional_RequiresAPIKey(t *testing.T) {
	e := newEnv(t)
	code, _, errOut := e.exec("devotional", "--verse", "John 3:16")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "OPENROUTER_API_KEY")
}

func TestDevotional_GenerateLookupStatsExport(t *testing.T) {
	e := newEnv(t)
	var calls atomic.Int32
	srv := fakeProvider(t, &calls)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("DEVOTIONAL_GENERATION_BASE_URL", srv.URL+"/v1")

	code, _, _ := e.exec("lookup", "--verse", "John 3:16")
	assert.Equal(t, exitUserError, code, "nothing cached yet")

	code, out, errOut := e.exec("--json", "devotional", "--verse", "John 3:16", "--verse-text", "For God so loved the world.")
	require.Equal(t, exitSuccess, code, errOut)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, false, first["cache_hit"])
	assert.EqualValues(t, 1, calls.Load())

	code, out, errOut = e.exec("devotional", "--verse", "John 3:16")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "John 3:16 (cached)")
	assert.Contains(t, out, "- Sit quietly for five minutes.")
	assert.EqualValues(t, 1, calls.Load())

	code, out, errOut = e.exec("lookup", "--verse", "John 3:16")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "access count:  2")

	code, out, errOut = e.exec("--json", "stats")
	require.Equal(t, exitSuccess, code, errOut)
	var stats statsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, statsOutput{
		TotalCachedDevotionals:    1,
		TotalTimesServedFromCache: 3,
		UniqueVersesCached:        1,
		EstimatedAPICallsSaved:    2,
	}, stats)

	exportPath := filepath.Join(t.TempDir(), "cache.jsonl")
	code, out, errOut = e.exec("cache", "export", exportPath)
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "Exported 1 devotionals")
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(string(data)), "\n")+1)
}

func TestDevotional_InvalidProfile(t *testing.T) {
	e := newEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	code, _, errOut := e.exec("devotional", "--verse", "John 3:16", "--gender", "robot")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "invalid cache key")
}
