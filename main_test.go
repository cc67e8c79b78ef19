package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/code2img/internal/fonts"
	"go.abhg.dev/code2img/internal/iotest"
)

var _imagePathRe = regexp.MustCompile(`code_[0-9a-f]{12}\.png$`)

func goMonoFonts(*log.Logger) *fonts.Set {
	return fonts.GoMono()
}

// runMain runs code2img with the given request on stdin
// and returns its exit code and stdout.
func runMain(t *testing.T, stdin string, args ...string) (int, string) {
	t.Helper()

	var stdout bytes.Buffer
	exitCode := (&mainCmd{
		Stdin:     strings.NewReader(stdin),
		Stdout:    &stdout,
		Stderr:    iotest.Writer(t),
		loadFonts: goMonoFonts,
	}).Run(args)
	return exitCode, stdout.String()
}

// render runs code2img and returns the printed image path.
func render(t *testing.T, outDir, stdin string) string {
	t.Helper()

	exitCode, stdout := runMain(t, stdin, "-out", outDir, "-debug")
	require.Zero(t, exitCode, "expected success")
	require.True(t, strings.HasSuffix(stdout, "\n"), "path must end with a newline: %q", stdout)

	path := strings.TrimSuffix(stdout, "\n")
	assert.NotContains(t, path, "\n", "only one line must be printed")
	return path
}

func TestMainCmd_help(t *testing.T) {
	t.Parallel()

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"-h"})
	assert.Zero(t, exitCode, "-h should have zero status code")
}

func TestMainCmd_version(t *testing.T) {
	t.Parallel()

	var buff bytes.Buffer
	exitCode := (&mainCmd{
		Stdout: &buff,
		Stderr: iotest.Writer(t),
	}).Run([]string{"-version"})
	assert.Zero(t, exitCode, "-version should have zero status code")

	assert.Contains(t, buff.String(), "code2img")
	assert.Contains(t, buff.String(), _version)
}

func TestMainCmd_unknownFlag(t *testing.T) {
	t.Parallel()

	exitCode := (&mainCmd{
		Stdout: iotest.Writer(t),
		Stderr: iotest.Writer(t),
	}).Run([]string{"--this-flag-does-not-exist"})
	assert.NotZero(t, exitCode, "unknown flag should have non-zero status code")
}

func TestMainCmd_render(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	path := render(t, outDir, `{"code": "print('hi')", "lang": "python"}`)

	assert.Equal(t, filepath.Join(outDir, "code_ab6c232cf908.png"), path)
	assert.Regexp(t, _imagePathRe, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestMainCmd_sameRequest(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	const req = `{"code": "def f(x):\n\treturn x * 2\n", "lang": "python"}`

	first := render(t, outDir, req)
	firstData, err := os.ReadFile(first)
	require.NoError(t, err)

	second := render(t, outDir, req)
	secondData, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, bytes.Equal(firstData, secondData), "images must be byte-identical")
}

func TestMainCmd_trailingWhiteSpace(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	clean := render(t, outDir, `{"code": "print('hi')", "lang": "python"}`)
	padded := render(t, outDir, `{"code": "print('hi')   \n\n", "lang": "python"}`)
	assert.Equal(t, clean, padded)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMainCmd_languages(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	python := render(t, outDir, `{"code": "print('hi')", "lang": "python"}`)
	unknown := render(t, outDir, `{"code": "print('hi')", "lang": "nonexistent-lang-xyz"}`)
	guessed := render(t, outDir, `{"code": "print('hi')"}`)

	assert.Equal(t, filepath.Join(outDir, "code_62091e38987a.png"), unknown)
	assert.Equal(t, filepath.Join(outDir, "code_678d7579e594.png"), guessed)
	assert.NotEqual(t, python, unknown)
	assert.NotEqual(t, python, guessed)

	for _, path := range []string{unknown, guessed} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), "%v", path)
	}
}

func TestMainCmd_emptyRequest(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	path := render(t, outDir, `{}`)
	assert.Equal(t, filepath.Join(outDir, "code_853ae90f0351.png"), path)

	_, err := png.DecodeConfig(mustOpen(t, path))
	assert.NoError(t, err)
}

func TestMainCmd_malformedRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give string
	}{
		{desc: "not JSON", give: "print('hi')"},
		{desc: "empty", give: ""},
		{desc: "array", give: `["print('hi')", "python"]`},
		{desc: "wrong type", give: `{"code": ["x"]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			outDir := filepath.Join(t.TempDir(), "out")

			var stdout, stderr bytes.Buffer
			exitCode := (&mainCmd{
				Stdin:     strings.NewReader(tt.give),
				Stdout:    &stdout,
				Stderr:    &stderr,
				loadFonts: goMonoFonts,
			}).Run([]string{"-out", outDir})
			assert.NotZero(t, exitCode)
			assert.Empty(t, stdout.String(), "no path on failure")
			assert.Contains(t, stderr.String(), "malformed request")

			_, err := os.Stat(outDir)
			assert.ErrorIs(t, err, os.ErrNotExist, "nothing written on failure")
		})
	}
}

func TestMainCmd_unwritableOutput(t *testing.T) {
	t.Parallel()

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var stdout, stderr bytes.Buffer
	exitCode := (&mainCmd{
		Stdin:     strings.NewReader(`{"code": "x", "lang": "go"}`),
		Stdout:    &stdout,
		Stderr:    &stderr,
		loadFonts: goMonoFonts,
	}).Run([]string{"-out", filepath.Join(blocker, "images")})
	assert.NotZero(t, exitCode)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "store")
	assert.NotContains(t, stderr.String(), "Error trace", "trace only with -debug")
}

func TestMainCmd_debugFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logFile := filepath.Join(dir, "debug.log")

	exitCode, _ := runMain(t, `{"code": "x := 1", "lang": "go"}`,
		"-out", dir, "-debug="+logFile)
	require.Zero(t, exitCode)

	exitCode, _ = runMain(t, `{"code": 1}`, "-out", dir, "-debug="+logFile)
	require.NotZero(t, exitCode)

	body, err := os.ReadFile(logFile)
	require.NoError(t, err)
	got := string(body)
	assert.Contains(t, got, "Selected lexer")
	assert.Contains(t, got, "Wrote image")
	assert.Contains(t, got, "Error trace")
}

// Not parallel: modifies the environment.
func TestMainCmd_outputDirFromEnv(t *testing.T) {
	outDir := t.TempDir()
	t.Setenv("CODE2IMG_OUT", outDir)

	exitCode, stdout := runMain(t, `{"code": "print('hi')", "lang": "python"}`)
	require.Zero(t, exitCode)
	assert.Equal(t, filepath.Join(outDir, "code_ab6c232cf908.png")+"\n", stdout)
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, f.Close())
	})
	return f
}
