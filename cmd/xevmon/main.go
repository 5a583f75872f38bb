// Opens a window and shows the events produced for it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

type options struct {
	config  string
	display string
	record  string
	tui     bool
	tuiSet  bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "xevmon: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, out io.Writer) (*options, error) {
	fs := flag.NewFlagSet("xevmon", flag.ContinueOnError)
	fs.SetOutput(out)
	opts := &options{}
	fs.StringVar(&opts.config, "config", "", "config file (toml, yaml or json)")
	fs.StringVar(&opts.display, "display", "", "x display, defaults to $DISPLAY")
	fs.StringVar(&opts.record, "record", "", "record events into a sqlite trace file")
	fs.BoolVar(&opts.tui, "tui", false, "show events in a terminal ui")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "tui" {
			opts.tuiSet = true
		}
	})
	if fs.NArg() > 0 {
		err := errors.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(out, err)
		return nil, err
	}
	return opts, nil
}
