package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"faqbot/internal/corpus"
)

const faqs = `[
  {"id": "1", "q": "how to reset password", "a": "use the reset link"},
  {"id": "2", "q": "how to cancel subscription", "a": "go to billing"}
]`

func writeFixture(t *testing.T, corpusType, indexType string) string {
	t.Helper()
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "faqs.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(faqs), 0o644))
	if corpusType == "sqlite" {
		corpusPath = filepath.Join(dir, "faq.db")
	}
	cfg := "corpus:\n  type: " + corpusType + "\n  path: " + corpusPath + "\n" +
		"index:\n  type: " + indexType + "\n  path: " + filepath.Join(dir, "index") + "\n"
	path := filepath.Join(dir, "faqbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"faqbot", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "Warn", "error"} {
		t.Run(level, func(t *testing.T) {
			app := &cli.App{
				Name:   "test",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
				Before: setupLogger,
				Action: func(*cli.Context) error { return nil },
			}
			require.NoError(t, app.Run([]string{"test", "--log-level", level}))
		})
	}

	app := &cli.App{
		Name:   "test",
		Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
		Before: setupLogger,
		Action: func(*cli.Context) error { return nil },
	}
	err := app.Run([]string{"test", "--log-level", "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestAskCommand(t *testing.T) {
	cfg := writeFixture(t, "json", "none")

	out, err := run(t, "--config", cfg, "ask", "reset", "my", "password")
	require.NoError(t, err)
	assert.Contains(t, out, "use the reset link")
	assert.Contains(t, out, `matched "how to reset password"`)

	out, err = run(t, "--config", cfg, "ask", "what is the weather")
	require.NoError(t, err)
	assert.Contains(t, out, "I'm not sure")

	out, err = run(t, "--config", cfg, "ask")
	require.NoError(t, err)
	assert.Contains(t, out, "Please type a question.")
}

func TestTopKCommand(t *testing.T) {
	cfg := writeFixture(t, "json", "none")
	out, err := run(t, "--config", cfg, "topk", "--k", "1", "cancel subscription")
	require.NoError(t, err)
	assert.Contains(t, out, "how to cancel subscription")
	assert.NotContains(t, out, "reset")
}

func TestReindexThenAskFromSavedIndex(t *testing.T) {
	cfg := writeFixture(t, "json", "file")

	out, err := run(t, "--config", cfg, "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2 entries")
	_, err = os.Stat(filepath.Join(filepath.Dir(cfg), "index"))
	require.NoError(t, err)

	// the saved index answers even when the corpus is gone
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfg), "faqs.json")))
	out, err = run(t, "--config", cfg, "ask", "cancel my subscription")
	require.NoError(t, err)
	assert.Contains(t, out, "go to billing")
}

func TestImportIntoSQLite(t *testing.T) {
	cfg := writeFixture(t, "sqlite", "badger")
	jsonPath := filepath.Join(filepath.Dir(cfg), "faqs.json")

	out, err := run(t, "--config", cfg, "import", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 entries")

	out, err = run(t, "--config", cfg, "ask", "reset password")
	require.NoError(t, err)
	assert.Contains(t, out, "use the reset link")
}

func TestImportNeedsSQLite(t *testing.T) {
	cfg := writeFixture(t, "json", "none")
	_, err := run(t, "--config", cfg, "import", "x.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  threshold: 2\n"), 0o644))
	_, err := run(t, "--config", path, "ask", "hello")
	assert.Error(t, err)
}

func TestFAQCommandsOnSQLite(t *testing.T) {
	cfg := writeFixture(t, "sqlite", "file")

	out, err := run(t, "--config", cfg, "faq", "add", "--id", "a1",
		"-q", "how do I change my email", "-a", "open account settings")
	require.NoError(t, err)
	assert.Contains(t, out, "stored a1, indexed 1 entries")

	out, err = run(t, "--config", cfg, "faq", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "a1")
	assert.Contains(t, out, "how do I change my email")

	out, err = run(t, "--config", cfg, "faq", "show", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "open account settings")

	out, err = run(t, "--config", cfg, "ask", "change my email")
	require.NoError(t, err)
	assert.Contains(t, out, "open account settings")

	out, err = run(t, "--config", cfg, "faq", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"q": "how do I change my email"`)

	exported := filepath.Join(t.TempDir(), "out.json")
	out, err = run(t, "--config", cfg, "faq", "export", "--out", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 entries")
	entries, err := corpus.NewJSONFile(exported).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a1", entries[0].ID)

	out, err = run(t, "--config", cfg, "faq", "rm", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed a1, indexed 0 entries")

	_, err = run(t, "--config", cfg, "faq", "show", "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, corpus.ErrEntryNotFound)

	// the saved index was rebuilt without the entry
	out, err = run(t, "--config", cfg, "ask", "change my email")
	require.NoError(t, err)
	assert.Contains(t, out, "I'm not sure")
}

func TestFAQEditNeedsSQLite(t *testing.T) {
	cfg := writeFixture(t, "json", "none")

	out, err := run(t, "--config", cfg, "faq", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "how to reset password")

	for _, args := range [][]string{
		{"faq", "show", "1"},
		{"faq", "rm", "1"},
		{"faq", "add", "-q", "x", "-a", "y"},
		{"consultations"},
	} {
		_, err := run(t, append([]string{"--config", cfg}, args...)...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "needs corpus.type sqlite")
	}
}

func TestConsultationsCommand(t *testing.T) {
	cfg := writeFixture(t, "sqlite", "none")

	_, err := run(t, "--config", cfg, "faq", "add", "--id", "a1",
		"-q", "how do I change my email", "-a", "open account settings")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "ask", "change my email")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "ask", "what is the weather")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "consultations")
	require.NoError(t, err)
	assert.Contains(t, out, `"change my email"`)
	assert.Contains(t, out, `"what is the weather"`)
	assert.Contains(t, out, "answer")
	assert.Contains(t, out, "defer")
	assert.Less(t, strings.Index(out, "weather"), strings.Index(out, "change my email"))

	out, err = run(t, "--config", cfg, "consultations", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "weather")
	assert.NotContains(t, out, "change my email")
}
