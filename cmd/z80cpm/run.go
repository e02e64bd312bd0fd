package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/intuitionamiga/z80/cpm"
	"github.com/intuitionamiga/z80/script"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	chip       chipValue
	failPhrase string
	maxCycles  uint64
	intPeriod  uint64
	intVector  uint8
	breaks     addrList
	script     string
	trace      bool
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Var(&o.chip, "chip", "CPU variant: nmos or cmos")
	f.StringVar(&o.failPhrase, "fail-phrase", cpm.DefaultFailPhrase, "Stop with an error when the console prints this (empty disables)")
	f.Uint64Var(&o.maxCycles, "max-cycles", 0, "Stop after this many T-states (0 = no limit)")
	f.Uint64Var(&o.intPeriod, "int-period", 0, "Raise /INT every N T-states (0 = never)")
	f.Uint8Var(&o.intVector, "int-vector", 0xFF, "Byte placed on the bus when /INT is acknowledged")
	f.Var(&o.breaks, "break", "Stop at this address (repeatable, hex accepted)")
	f.StringVar(&o.script, "script", "", "Lua file that handles IN and OUT")
	f.BoolVar(&o.trace, "trace", false, "Log every instruction (needs --verbose)")
}

func (o *runOptions) config() cpm.Config {
	cfg := cpm.DefaultConfig()
	cfg.Chip = o.chip.chip()
	cfg.FailPhrase = o.failPhrase
	cfg.MaxCycles = o.maxCycles
	cfg.InterruptPeriod = o.intPeriod
	cfg.InterruptVector = o.intVector
	cfg.Breakpoints = o.breaks
	cfg.Trace = o.trace
	return cfg
}

func newRunCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [flags] image.com...",
		Short: "Run one or more CP/M images, each on its own machine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := &lockedWriter{w: cmd.OutOrStdout()}
			var in io.Reader
			if len(args) == 1 {
				// only a lone machine gets the keyboard
				in = cmd.InOrStdin()
			}

			g, ctx := errgroup.WithContext(ctx)
			for _, path := range args {
				g.Go(func() error {
					_, err := runImage(ctx, path, &opts, log, out, in)
					return err
				})
			}
			return g.Wait()
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// runImage loads path into a fresh machine and runs it to completion.
func runImage(ctx context.Context, path string, opts *runOptions, log *slog.Logger, out io.Writer, in io.Reader) (cpm.Stats, error) {
	log = log.With(slog.String("image", filepath.Base(path)))

	console := cpm.NewConsole(out)
	if f, ok := in.(*os.File); ok && cpm.IsTerminal(f) {
		term := cpm.NewTerminal(console, f)
		if err := term.Start(); err != nil {
			return cpm.Stats{}, err
		}
		defer term.Stop()
	} else if in != nil {
		console.FeedFrom(in)
		defer console.CloseInput()
	} else {
		console.CloseInput()
	}

	cfg := opts.config()
	cfg.Console = console
	cfg.Logger = log

	var sc *script.Script
	if opts.script != "" {
		var err error
		sc, err = script.Load(opts.script)
		if err != nil {
			return cpm.Stats{}, err
		}
		defer sc.Close()
		cfg.Ports = sc
	}

	m := cpm.New(cfg)
	if sc != nil {
		sc.Attach(m)
	}
	if err := m.LoadFile(path); err != nil {
		return cpm.Stats{}, err
	}

	stats, err := m.Run(ctx)
	if err == nil && sc != nil {
		err = sc.Err()
	}
	log.Info("finished",
		slog.Uint64("cycles", stats.Cycles),
		slog.Uint64("instructions", stats.Instructions),
		slog.Duration("elapsed", stats.Elapsed),
		slog.Bool("ok", err == nil))
	if err != nil {
		return stats, errors.Wrapf(err, "%s at pc=0x%04X", filepath.Base(path), m.CPU().PC)
	}
	return stats, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
