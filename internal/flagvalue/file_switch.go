// Package flagvalue implements flag.Value types shared by the CLI.
package flagvalue

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"braces.dev/errtrace"
)

// FileSwitch is a flag that accepts both "-x" and "-x=value",
// If a value is specified, it names a log file to append to.
// Otherwise, it uses a provided fallback writer.
type FileSwitch string

var _ flag.Getter = (*FileSwitch)(nil)

// Get returns the path stored in the switch
// or '-' if no value was specified.
func (fs *FileSwitch) Get() any { return string(*fs) }

// String returns the path stored in the switch
// or '-' if no value was specified.
func (fs *FileSwitch) String() string {
	return string(*fs)
}

// IsBoolFlag marks this as a flag
// that doesn't require a value.
func (*FileSwitch) IsBoolFlag() bool {
	return true
}

// Set receives the value for this flag.
//
// Environment variables and config files set boolean flags
// with "true" and "false", so both are accepted.
func (fs *FileSwitch) Set(v string) error {
	switch v {
	case "true":
		v = "-"
	case "false":
		v = ""
	}
	*fs = FileSwitch(v)
	return nil
}

// Bool reports whether this flag was set with any value.
func (fs *FileSwitch) Bool() bool {
	return len(*fs) > 0
}

// Create opens the destination for this flag.
// The caller must close the returned writer.
//
// This has three possible behaviors:
//
//   - the flag wasn't passed in: returns a writer that discards
//   - the flag was passed without a value: returns the provided fallback
//   - the flag was passed with a value: opens the file for appending,
//     creating it and its parent directories if needed
//
// Closing the returned writer never closes the fallback.
func (fs *FileSwitch) Create(fallback io.Writer) (io.WriteCloser, error) {
	switch *fs {
	case "":
		return nopCloser{io.Discard}, nil
	case "-":
		return nopCloser{fallback}, nil
	}

	path := string(*fs)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errtrace.Wrap(err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
