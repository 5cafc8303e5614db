package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreoz/ctormeta/internal/config"
	"github.com/coreoz/ctormeta/internal/metadata"
	"github.com/coreoz/ctormeta/internal/rewrite"
	"github.com/coreoz/ctormeta/internal/swcjson"
	"github.com/coreoz/ctormeta/internal/testutil"
	"github.com/coreoz/ctormeta/internal/watcher"
)

const workDir = "/work"

const sampleSource = `class Sample {
  constructor(private readonly api: SampleApi) {}

  sayHello(name: string) {
    return this.api.sample(name);
  }
}
`

const sampleOutput = `class Sample {
  constructor(private readonly api: SampleApi) {}

  sayHello(name: string) {
    return this.api.sample(name);
  }
  static get [Symbol.for("___CTOR_ARGS___")]() {
    return ["SampleApi"];
  }
  static get [Symbol.for("___CTOR_NAME___")]() {
    return "Sample";
  }
}
`

func newTestApp(t *testing.T, files map[string]string) *app {
	t.Helper()
	return &app{
		fs:              testutil.MemFS(t, workDir, files),
		cwd:             workDir,
		stdin:           strings.NewReader(""),
		stdinIsTerminal: func() bool { return false },
	}
}

func execute(a *app, args ...string) (string, string, error) {
	cmd := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// findLogEntry returns the first JSON log line of out with the given message.
func findLogEntry(t *testing.T, out, msg string) (map[string]any, bool) {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		if entry["msg"] == msg {
			return entry, true
		}
	}
	return nil, false
}

func workPath(parts ...string) string {
	return filepath.Join(append([]string{workDir}, parts...)...)
}

func TestTransform(t *testing.T) {
	t.Run("Should write a single file to stdout", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"src/sample.ts": sampleSource})
		stdout, _, err := execute(a, "transform", "src/sample.ts")
		require.NoError(t, err)
		assert.Equal(t, sampleOutput, stdout)
		assert.Equal(t, sampleSource, testutil.ReadFile(t, a.fs, workPath("src", "sample.ts")))
	})

	t.Run("Should mirror sources under the output directory", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"src/sample.ts":           sampleSource,
			"src/view.tsx":            "export class View {\n  render() {\n    return <div />;\n  }\n}\n",
			"src/types.d.ts":          "declare class Ambient {}\n",
			"node_modules/x/index.ts": "export class Dep {}\n",
		})
		_, stderr, err := execute(a, "transform", "--out-dir", "build")
		require.NoError(t, err)
		assert.Contains(t, stderr, "transform complete")

		assert.Equal(t, sampleOutput, testutil.ReadFile(t, a.fs, workPath("build", "src", "sample.ts")))
		view := testutil.ReadFile(t, a.fs, workPath("build", "src", "view.tsx"))
		assert.Contains(t, view, `return "View";`)
		assert.False(t, testutil.Exists(t, a.fs, workPath("build", "src", "types.d.ts")))
		assert.False(t, testutil.Exists(t, a.fs, workPath("build", "node_modules", "x", "index.ts")))
	})

	t.Run("Should expand doublestar patterns", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"src/a/one.service.ts": "class One {}\n",
			"src/b/two.service.ts": "class Two {}\n",
			"src/b/three.ts":       "class Three {}\n",
		})
		_, _, err := execute(a, "transform", "src/**/*.service.ts", "-o", "out")
		require.NoError(t, err)
		assert.True(t, testutil.Exists(t, a.fs, workPath("out", "src", "a", "one.service.ts")))
		assert.True(t, testutil.Exists(t, a.fs, workPath("out", "src", "b", "two.service.ts")))
		assert.False(t, testutil.Exists(t, a.fs, workPath("out", "src", "b", "three.ts")))
	})

	t.Run("Should rewrite changed files in place", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"src/sample.ts": sampleSource,
			"src/util.ts":   "export const x = 1;\n",
		})
		_, _, err := execute(a, "transform", "src", "--in-place")
		require.NoError(t, err)
		assert.Equal(t, sampleOutput, testutil.ReadFile(t, a.fs, workPath("src", "sample.ts")))
		assert.Equal(t, "export const x = 1;\n", testutil.ReadFile(t, a.fs, workPath("src", "util.ts")))
	})

	t.Run("Should keep a byte order mark", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"a.ts": "\xEF\xBB\xBFclass A {}\n"})
		_, _, err := execute(a, "transform", "a.ts", "--in-place")
		require.NoError(t, err)
		out := testutil.ReadFile(t, a.fs, workPath("a.ts"))
		assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBFclass A {\n"))
		assert.Equal(t, 1, strings.Count(out, "\xEF\xBB\xBF"))
	})

	t.Run("Should refuse several files on stdout", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"a.ts": "class A {}", "b.ts": "class B {}"})
		_, _, err := execute(a, "transform")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--out-dir")
	})

	t.Run("Should refuse both output modes", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"a.ts": "class A {}"})
		_, _, err := execute(a, "transform", "a.ts", "--in-place", "--out-dir", "build")
		assert.Error(t, err)
	})

	t.Run("Should warn when nothing matches", func(t *testing.T) {
		a := newTestApp(t, nil)
		_, stderr, err := execute(a, "transform", "src/**/*.ts")
		require.NoError(t, err)
		assert.Contains(t, stderr, "no TypeScript files matched")
	})

	t.Run("Should skip files that are not TypeScript", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"a.js": "class A {}"})
		_, stderr, err := execute(a, "transform", "a.js")
		require.NoError(t, err)
		assert.Contains(t, stderr, "[unsupported-file]")
	})

	t.Run("Should reject patterns outside the working directory", func(t *testing.T) {
		a := newTestApp(t, nil)
		_, _, err := execute(a, "transform", "../elsewhere/*.ts")
		assert.ErrorIs(t, err, rewrite.ErrOutsideBase)
	})
}

func TestTransform_Diagnostics(t *testing.T) {
	broken := "class Broken {\n  constructor(a: Foo {}\n}\n"

	t.Run("Should report syntax errors as warnings", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"broken.ts": broken})
		_, stderr, err := execute(a, "transform", "broken.ts", "-o", "build")
		require.NoError(t, err)
		assert.Contains(t, stderr, "broken.ts:")
		assert.Contains(t, stderr, "[syntax]")
		assert.Contains(t, stderr, "warning(s)")
	})

	t.Run("Should fail on syntax errors in strict mode", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"broken.ts": broken})
		_, _, err := execute(a, "transform", "broken.ts", "-o", "build", "--strict")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error(s)")
	})

	t.Run("Should warn about files transformed twice", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"a.ts": "class A {}\n"})
		_, stderr, err := execute(a, "transform", "a.ts", "--in-place")
		require.NoError(t, err)
		assert.NotContains(t, stderr, "[already-processed]")

		_, stderr, err = execute(a, "transform", "a.ts", "--in-place")
		require.NoError(t, err)
		assert.Contains(t, stderr, "[already-processed]")
		assert.Equal(t, 2, strings.Count(testutil.ReadFile(t, a.fs, workPath("a.ts")), "___CTOR_NAME___"))
	})
}

func TestConfig(t *testing.T) {
	t.Run("Should discover a YAML config", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"ctormeta.config.yaml": "log: info\n",
			"sample.ts":            sampleSource,
		})
		stdout, _, err := execute(a, "transform", "sample.ts", "-o", "build")
		require.NoError(t, err)
		assert.Contains(t, stdout, "processing class")
		assert.Contains(t, stdout, "Sample")
	})

	t.Run("Should send class reports to stderr when stdout carries output", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"ctormeta.config.json": `{"log": "INFO"}`,
			"sample.ts":            sampleSource,
		})
		stdout, stderr, err := execute(a, "transform", "sample.ts")
		require.NoError(t, err)
		assert.Equal(t, sampleOutput, stdout)
		assert.Contains(t, stderr, "processing class")
	})

	t.Run("Should let --log override the config", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"ctormeta.config.json": `{"log": "info"}`,
			"sample.ts":            sampleSource,
		})
		_, stderr, err := execute(a, "transform", "sample.ts", "--log", "debug")
		require.NoError(t, err)
		assert.Contains(t, stderr, "class after transform")
		assert.Contains(t, stderr, "[config-invalid]")
	})

	t.Run("Should print nothing at level none", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"sample.ts": sampleSource})
		stdout, stderr, err := execute(a, "transform", "sample.ts", "--log", "none")
		require.NoError(t, err)
		assert.Equal(t, sampleOutput, stdout)
		assert.NotContains(t, stderr, "processing class")
	})

	t.Run("Should load an explicit config path", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"conf/custom.yml": "log: info\n",
			"sample.ts":       sampleSource,
		})
		_, stderr, err := execute(a, "inspect", "sample.ts", "--config", "conf/custom.yml")
		require.NoError(t, err)
		assert.Contains(t, stderr, "processing class")
	})

	t.Run("Should reject an invalid level", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"ctormeta.config.json": `{"log": "verbose"}`,
			"sample.ts":            sampleSource,
		})
		_, _, err := execute(a, "transform", "sample.ts")
		assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
	})

	t.Run("Should reject unknown keys", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"ctormeta.config.yaml": "log: info\nmode: fast\n",
			"sample.ts":            sampleSource,
		})
		_, _, err := execute(a, "transform", "sample.ts")
		assert.Error(t, err)
	})

	t.Run("Should leave sources untouched in place when the config is invalid", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"ctormeta.config.json": `{"log": "verbose"}`,
			"sample.ts":            sampleSource,
		})
		_, _, err := execute(a, "transform", "sample.ts", "--in-place")
		assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
		assert.Equal(t, sampleSource, testutil.ReadFile(t, a.fs, workPath("sample.ts")))
	})

	t.Run("Should write JSON log lines", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"sample.ts": sampleSource})
		stdout, stderr, err := execute(a, "transform", "sample.ts", "--log", "info", "--log-format", "json")
		require.NoError(t, err)
		assert.Equal(t, sampleOutput, stdout)
		entry, ok := findLogEntry(t, stderr, "processing class")
		require.True(t, ok, "stderr: %s", stderr)
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "sample.ts", entry["file"])
	})

	t.Run("Should log per-file progress at debug", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"src/sample.ts": sampleSource})
		_, stderr, err := execute(a, "transform", "src", "-o", "build", "--log", "debug", "--log-format", "json")
		require.NoError(t, err)
		entry, ok := findLogEntry(t, stderr, "transformed file")
		require.True(t, ok, "stderr: %s", stderr)
		assert.Equal(t, "src/sample.ts", entry["file"])
		assert.Equal(t, float64(1), entry["classes"])
	})

	t.Run("Should reject an invalid --log-format", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"sample.ts": sampleSource})
		_, _, err := execute(a, "transform", "sample.ts", "--log-format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--log-format")
	})

	t.Run("Should reject an invalid --log", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"sample.ts": sampleSource})
		_, _, err := execute(a, "transform", "sample.ts", "--log", "loud")
		assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
	})
}

func TestInspect(t *testing.T) {
	files := map[string]string{
		"src/a.ts": "export class A {\n  constructor(foo: Foo, bar) {}\n}\n",
		"src/b.ts": "class B {}\nexport default class C {\n  constructor() {}\n}\nconst D = class {};\n",
	}

	t.Run("Should print the report to stdout", func(t *testing.T) {
		a := newTestApp(t, files)
		stdout, _, err := execute(a, "inspect", "src")
		require.NoError(t, err)
		report, err := metadata.ParseReport([]byte(stdout))
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, report.Names())
		assert.Equal(t, metadata.Class{Name: "A", CtorArgs: []string{"Foo"}, HasConstructor: true, File: "src/a.ts"}, report.Classes[0])
		assert.False(t, report.Classes[1].HasConstructor)
		assert.True(t, report.Classes[2].HasConstructor)
		assert.Empty(t, report.Classes[2].CtorArgs)
	})

	t.Run("Should not modify sources", func(t *testing.T) {
		a := newTestApp(t, files)
		_, _, err := execute(a, "inspect", "src")
		require.NoError(t, err)
		assert.Equal(t, files["src/a.ts"], testutil.ReadFile(t, a.fs, workPath("src", "a.ts")))
	})

	t.Run("Should write the report to a file", func(t *testing.T) {
		a := newTestApp(t, files)
		stdout, _, err := execute(a, "inspect", "src", "--output", "meta.json", "-j", "1")
		require.NoError(t, err)
		assert.Empty(t, stdout)
		report, err := metadata.ParseReport([]byte(testutil.ReadFile(t, a.fs, workPath("meta.json"))))
		require.NoError(t, err)
		assert.Len(t, report.Classes, 3)
	})

	t.Run("Should accept an up to date report with --check", func(t *testing.T) {
		a := newTestApp(t, files)
		_, _, err := execute(a, "inspect", "src", "--output", "meta.json")
		require.NoError(t, err)
		written := testutil.ReadFile(t, a.fs, workPath("meta.json"))

		_, _, err = execute(a, "inspect", "src", "--output", "meta.json", "--check")
		require.NoError(t, err)
		assert.Equal(t, written, testutil.ReadFile(t, a.fs, workPath("meta.json")))
	})

	t.Run("Should fail --check on a stale report", func(t *testing.T) {
		stale := map[string]string{
			"src/a.ts":  files["src/a.ts"],
			"meta.json": `{"classes": [{"name": "Gone", "ctorArgs": []}]}`,
		}
		a := newTestApp(t, stale)
		_, stderr, err := execute(a, "inspect", "src", "--output", "meta.json", "--check")
		assert.ErrorIs(t, err, errStaleReport)
		assert.Contains(t, stderr, "Gone")
		assert.Equal(t, stale["meta.json"], testutil.ReadFile(t, a.fs, workPath("meta.json")))
	})

	t.Run("Should require --output with --check", func(t *testing.T) {
		a := newTestApp(t, files)
		_, _, err := execute(a, "inspect", "src", "--check")
		assert.Error(t, err)
	})

	t.Run("Should print an empty report without files", func(t *testing.T) {
		a := newTestApp(t, nil)
		stdout, _, err := execute(a, "inspect")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"classes": []`)
	})
}

func TestSwc(t *testing.T) {
	sample, err := os.ReadFile(filepath.Join("..", "..", "internal", "swcjson", "testdata", "sample.json"))
	require.NoError(t, err)

	t.Run("Should transform a program read from stdin", func(t *testing.T) {
		a := newTestApp(t, nil)
		a.stdin = bytes.NewReader(sample)
		stdout, _, err := execute(a, "swc")
		require.NoError(t, err)
		prog, err := swcjson.Decode([]byte(stdout))
		require.NoError(t, err)
		assert.Contains(t, stdout, `"___CTOR_ARGS___"`)
		assert.Contains(t, stdout, `"SampleApi"`)
		assert.NotNil(t, prog)
	})

	t.Run("Should read a file argument", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"program.json": string(sample)})
		_, _, err := execute(a, "swc", "program.json", "--output", "out.json")
		require.NoError(t, err)
		assert.Contains(t, testutil.ReadFile(t, a.fs, workPath("out.json")), `"___CTOR_NAME___"`)
	})

	t.Run("Should read stdin for -", func(t *testing.T) {
		a := newTestApp(t, nil)
		a.stdin = bytes.NewReader(sample)
		a.stdinIsTerminal = func() bool { return true }
		stdout, _, err := execute(a, "swc", "-")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"___CTOR_NAME___"`)
	})

	t.Run("Should refuse an interactive stdin", func(t *testing.T) {
		a := newTestApp(t, nil)
		a.stdinIsTerminal = func() bool { return true }
		_, _, err := execute(a, "swc")
		assert.ErrorIs(t, err, errNoInput)
	})

	t.Run("Should reject a node that is not a program", func(t *testing.T) {
		a := newTestApp(t, nil)
		a.stdin = strings.NewReader(`{"type": "Identifier", "value": "x"}`)
		_, _, err := execute(a, "swc")
		assert.ErrorIs(t, err, swcjson.ErrNotProgram)
	})
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(newTestApp(t, nil), "version")
	require.NoError(t, err)
	assert.Equal(t, "ctormeta "+version+"\n", stdout)
}

func TestWatch(t *testing.T) {
	t.Run("Should require an output directory", func(t *testing.T) {
		_, _, err := execute(newTestApp(t, nil), "watch", "src")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--out-dir")
	})

	t.Run("Should apply change batches to the output directory", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"src/a.ts": "class A {}\n"})
		cmd := newRootCmd(a)
		var stderr bytes.Buffer
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&stderr)
		s, err := a.newSession(cmd, false)
		require.NoError(t, err)
		ws := &watchSession{session: s, cmd: cmd, outDir: workPath("build")}
		ctx := context.Background()

		require.NoError(t, ws.initial(ctx, []string{workPath("src")}))
		out := workPath("build", "src", "a.ts")
		assert.Contains(t, testutil.ReadFile(t, a.fs, out), `return "A";`)

		require.NoError(t, afero.WriteFile(a.fs, workPath("src", "b.ts"), []byte("class B {}\n"), 0o644))
		ws.apply(ctx, []watcher.Event{
			{Path: workPath("src", "b.ts"), Op: "create"},
			{Path: workPath("src", "gone.ts"), Op: "write"},
			{Path: workPath("src", "notes.md"), Op: "write"},
		})
		assert.Contains(t, testutil.ReadFile(t, a.fs, workPath("build", "src", "b.ts")), `return "B";`)
		assert.Contains(t, stderr.String(), "detected 3 change(s)")

		ws.apply(ctx, []watcher.Event{{Path: workPath("src", "a.ts"), Op: "remove"}})
		assert.False(t, testutil.Exists(t, a.fs, out))
	})
}
