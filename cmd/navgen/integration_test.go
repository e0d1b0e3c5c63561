package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dura2d/navgen/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoReadme = `# Demo

## Features

### Rigid bodies

## Building
`

const demoHeader = `#ifndef DEMO_WORLD_H
#define DEMO_WORLD_H

#define DEMO_VERSION 3

class d2World
{
public:
    void Step(float dt);
    int BodyCount() const;

private:
    int m_count;
};

float d2Clamp(float v, float lo, float hi);

#endif
`

func TestCommandLineFlow(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "README.md"), demoReadme)
	mustWriteFile(t, filepath.Join(root, "include", "demo", "d2World.h"), demoHeader)

	withWorkingDir(t, root, func() {
		out, err := execute(t, "init", "--name", "Demo", "--no-generate")
		require.NoError(t, err)
		assert.Contains(t, out, "navgen.yml")

		out, err = execute(t, "generate", "--json")
		require.NoError(t, err)
		var summary cli.RunSummary
		require.NoError(t, json.Unmarshal([]byte(out), &summary), out)
		assert.Equal(t, 1, summary.Sources)
		assert.Equal(t, 3, summary.Anchors)
		assert.Equal(t, "annotated.html", summary.Index[0])

		data, err := os.ReadFile(filepath.Join(root, "docs", "html", "navtreedata.js"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `[ "Demo", "index.html", [`)
		assert.Contains(t, string(data), `[ "Rigid bodies", "index.html#autotoc_md2", null ]`)

		out, err = execute(t, "check", "--json")
		require.NoError(t, err, out)
		var report cli.CheckReport
		require.NoError(t, json.Unmarshal([]byte(out), &report), out)
		assert.Zero(t, report.Errors)
		assert.True(t, report.Resolved)

		out, err = execute(t, "show", "--depth", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Classes")
		assert.Contains(t, out, "Files")

		out, err = execute(t, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "up to date")

		out, err = execute(t, "schema")
		require.NoError(t, err)
		assert.Contains(t, out, "toc_include_headings")

		_, err = execute(t, "generate", "--set", "output.shard_size=0x")
		assert.Error(t, err)
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand("test")
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)

	var err error
	out := captureStdout(t, func() {
		err = cmd.Execute()
	})
	return out, err
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = writer

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, reader)
		done <- buf.String()
	}()

	func() {
		defer func() {
			os.Stdout = original
			_ = writer.Close()
		}()
		fn()
	}()

	out := <-done
	_ = reader.Close()
	return strings.TrimSpace(out)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
