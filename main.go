// code2img renders a code snippet read from stdin
// to a syntax-highlighted PNG image and prints its path.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"braces.dev/errtrace"
	"github.com/charmbracelet/log"
	"go.abhg.dev/code2img/internal/artifact"
	"go.abhg.dev/code2img/internal/errdefer"
	"go.abhg.dev/code2img/internal/fonts"
	"go.abhg.dev/code2img/internal/highlight"
)

const _logPrefix = "code2img"

func main() {
	cmd := mainCmd{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(cmd.Run(os.Args[1:]))
}

// mainCmd is the actual entry point to the program.
type mainCmd struct {
	Stdin  io.Reader // == os.Stdin
	Stdout io.Writer // == os.Stdout
	Stderr io.Writer // == os.Stderr

	// Loads fonts for rendering.
	// Tests replace this to avoid depending on installed fonts.
	loadFonts func(*log.Logger) *fonts.Set

	log *log.Logger
}

func (cmd *mainCmd) Run(args []string) (exitCode int) {
	cmd.log = log.NewWithOptions(cmd.Stderr, log.Options{
		Prefix: _logPrefix,
	})

	opts, err := (&cliParser{
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}).Parse(args)
	if err != nil {
		// '$cmd -h' should exit with zero.
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// No need to print anything.
		// Parse prints messages.
		return 1
	}

	if err := cmd.run(opts); err != nil {
		cmd.log.Error(err)
		return 1
	}
	return 0
}

func (cmd *mainCmd) run(opts *params) (err error) {
	debugw, err := opts.Debug.Create(cmd.Stderr)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("open debug log: %w", err))
	}
	defer errdefer.Close(&err, debugw)

	debugLog := log.NewWithOptions(debugw, log.Options{
		Level:           log.DebugLevel,
		Prefix:          _logPrefix,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
	defer func() {
		if err != nil {
			debugLog.Debugf("Error trace:\n%s", errtrace.FormatString(err))
		}
	}()

	req, err := decodeRequest(cmd.Stdin)
	if err != nil {
		return errtrace.Wrap(err)
	}

	store, err := artifact.NewStore(opts.OutputDir)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("output directory: %w", err))
	}

	loadFonts := cmd.loadFonts
	if loadFonts == nil {
		loadFonts = func(l *log.Logger) *fonts.Set {
			return (&fonts.Loader{Log: l}).Load()
		}
	}
	fontSet := loadFonts(debugLog)
	debugLog.Debug("Using font", "family", fontSet.Name)

	renderer := Renderer{
		Log:       debugLog,
		Formatter: newFormatter(fontSet),
		Style:     highlight.Theme,
		Store:     store,
	}

	path, err := renderer.Render(req.Code, req.Lang)
	if err != nil {
		return errtrace.Wrap(err)
	}

	_, err = fmt.Fprintln(cmd.Stdout, path)
	return errtrace.Wrap(err)
}
