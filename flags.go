package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"go.abhg.dev/code2img/internal/flagvalue"
)

var (
	errHelp             = flag.ErrHelp
	errInvalidArguments = errors.New("invalid arguments")
)

// _envPrefix prefixes environment variables that set flags.
// For example, CODE2IMG_OUT sets -out.
const _envPrefix = "CODE2IMG"

// _defaultOutputDir is where images go if -out is not set.
var _defaultOutputDir = filepath.Join(os.TempDir(), "openclaw-qq-codeimg")

// params holds all arguments for code2img.
type params struct {
	version bool
	help    Help
	config  string

	OutputDir string
	Debug     flagvalue.FileSwitch
}

// cliParser parses the command line arguments for code2img.
type cliParser struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (cmd *cliParser) newFlagSet() (*params, *flag.FlagSet) {
	flag := flag.NewFlagSet("code2img", flag.ContinueOnError)
	// Parse reports errors itself.
	flag.SetOutput(io.Discard)
	flag.Usage = func() {}

	var p params

	// Filesystem:
	flag.StringVar(&p.OutputDir, "out", _defaultOutputDir, "")
	flag.StringVar(&p.config, "config", "", "")

	// Program-level:
	flag.Var(&p.Debug, "debug", "")
	flag.BoolVar(&p.version, "version", false, "")
	flag.Var(&p.help, "help", "")
	flag.Var(&p.help, "h", "")

	return &p, flag
}

func (cmd *cliParser) Parse(args []string) (*params, error) {
	p, flag := cmd.newFlagSet()
	if err := ff.Parse(flag, args,
		ff.WithEnvVarPrefix(_envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintln(cmd.Stderr, err)
		UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}
	args = flag.Args()

	if p.version {
		fmt.Fprintln(cmd.Stdout, "code2img", _version)
		return nil, errHelp
	}

	if p.help == DefaultHelp && len(args) > 0 {
		// The user might have done "-h config"
		// instead of "-h=config".
		// If the argument is a known help topic,
		// take it.
		if _, ok := _helpTopics[Help(args[0])]; ok {
			p.help = Help(args[0])
		}
	}

	switch p.help {
	case NoHelp:
		// proceed as usual
	default:
		if err := p.help.Write(cmd.Stderr); err != nil {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errHelp
	}

	if len(args) > 0 {
		fmt.Fprintf(cmd.Stderr, "Unexpected arguments: %v\n", strings.Join(args, " "))
		fmt.Fprintln(cmd.Stderr, "The request is read from standard input.")
		UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}

	if p.OutputDir == "" {
		fmt.Fprintln(cmd.Stderr, "Output directory must not be empty.")
		UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}

	return p, nil
}
