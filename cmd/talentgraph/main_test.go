package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type env struct {
	dir    string
	config string
	db     string
	out    *bytes.Buffer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("TALENTGRAPH_API_KEY", "")
	dir := t.TempDir()
	return &env{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "db"),
		out:    &bytes.Buffer{},
	}
}

func (e *env) run(args ...string) error {
	app := newApp()
	app.Writer = e.out
	app.ErrWriter = e.out
	base := []string{"talentgraph", "--log-level", "error", "--config", e.config, "--db", e.db}
	return app.Run(append(base, args...))
}

func (e *env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		err := app.Run([]string{"talentgraph", "--log-level", level, "help"})
		assert.NoError(t, err, level)
	}

	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"talentgraph", "--log-level", "verbose", "help"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	for _, name := range []string{"ingest", "query", "list", "show", "ats", "rank", "reindex", "connections", "export-neo4j", "config"} {
		assert.NotNil(t, findCommand(app, name), name)
	}

	t.Run("ats requires a job description", func(t *testing.T) {
		var job *cli.StringFlag
		for _, flag := range findCommand(app, "ats").Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "job" {
				job = f
			}
		}
		require.NotNil(t, job)
		assert.True(t, job.Required)
	})

	t.Run("rank limit defaults to 10", func(t *testing.T) {
		var limit *cli.IntFlag
		for _, flag := range findCommand(app, "rank").Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "limit" {
				limit = f
			}
		}
		require.NotNil(t, limit)
		assert.Equal(t, 10, limit.Value)
	})

	t.Run("export-neo4j reads the URI from the environment", func(t *testing.T) {
		var uri *cli.StringFlag
		for _, flag := range findCommand(app, "export-neo4j").Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "uri" {
				uri = f
			}
		}
		require.NotNil(t, uri)
		assert.Equal(t, []string{"NEO4J_URI"}, uri.EnvVars)
	})
}

func TestConfigInit(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.run("config", "init"))
	assert.Contains(t, e.out.String(), e.config)
	_, err := os.Stat(e.config)
	require.NoError(t, err)

	err = e.run("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, e.run("config", "init", "--force"))
}

func TestListEmptyDatabase(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.run("list"))
	assert.Contains(t, e.out.String(), "No candidates found")

	err := e.run("list", "--status", "pending")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestReindexEmptyDatabase(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.run("reindex", "--full"))
	assert.Contains(t, e.out.String(), "full reindex: 0 processed, 0 indexed, 0 failed")
}

func TestArgumentValidation(t *testing.T) {
	e := newEnv(t)

	err := e.run("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one file")

	err = e.run("query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query text is required")

	err = e.run("show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one candidate")

	err = e.run("show", "Nobody Here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidate matches")

	err = e.run("ingest", filepath.Join(e.dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestATSWithResumeFile(t *testing.T) {
	e := newEnv(t)
	job := e.write(t, "job.txt", "Looking for Python and Kubernetes experience")
	resume := e.write(t, "resume.txt", "Jane Doe\nPython developer.")

	require.NoError(t, e.run("ats", "--job", job, "--resume", resume))
	out := e.out.String()
	assert.Contains(t, out, "resume.txt: ATS score 50.0 (medium)")
	assert.Contains(t, out, "Missing:  kubernetes")
	assert.Contains(t, out, "Add experience with kubernetes")

	e.out.Reset()
	require.NoError(t, e.run("ats", "--job", job, "--resume", resume, "--json"))
	var result struct {
		Score   float64  `json:"ats_score"`
		Missing []string `json:"missing_keywords"`
	}
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &result))
	assert.Equal(t, 50.0, result.Score)
	assert.Equal(t, []string{"kubernetes"}, result.Missing)
}
