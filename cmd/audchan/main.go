// SPDX-License-Identifier: EPL-2.0

// Command audchan runs the audio engine with an interactive console and a
// unix control socket. Type "help" at the prompt for the command list.
//
// SIGUSR1 suspends playback and every background worker; SIGUSR2 resumes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audchan"
	"github.com/ik5/audchan/internal/control"
)

var errQuit = errors.New("quit")

func main() {
	var (
		socket   = flag.String("socket", filepath.Join(os.TempDir(), "audchan.sock"), "control socket path, empty to disable")
		sink     = flag.String("sink", "", "output sink: oto, beep or null (overrides AUDCHAN_SINK)")
		level    = flag.String("log-level", "info", "log level")
		headless = flag.Bool("headless", false, "no interactive console")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*level); err == nil {
		log = log.Level(lvl)
	}

	if err := run(*socket, *sink, *headless, log); err != nil {
		log.Error().Err(err).Msg("audchan")
		os.Exit(1)
	}
}

func run(socket, sink string, headless bool, log zerolog.Logger) error {
	cfg, err := audchan.LoadConfig(os.LookupEnv)
	if err != nil {
		return err
	}
	if sink != "" {
		cfg.Output.Sink = sink
	}

	sys, err := audchan.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := sys.Close(); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := control.NewDispatcher(control.NewExecutor(sys.Engine, sys.Mixer, log), sys.SyncPoint())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return d.Run(ctx) })
	g.Go(func() error { return suspendOnSignal(ctx, sys, log) })

	if socket != "" {
		srv := control.NewServer(socket, d, log)
		g.Go(func() error { return srv.ListenAndServe(ctx) })
	}
	if !headless {
		g.Go(func() error { return console(ctx, d) })
	}

	err = g.Wait()
	if errors.Is(err, errQuit) {
		err = nil
	}

	return err
}

// console reads commands until EOF, "quit" or ctx is done.
func console(ctx context.Context, d *control.Dispatcher) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "audchan> ",
		HistoryFile:     filepath.Join(os.TempDir(), "audchan.history"),
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}

	go func() {
		<-ctx.Done()
		rl.Close()
	}()
	defer rl.Close()

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return errQuit
			}
			continue
		case errors.Is(err, io.EOF):
			return errQuit
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("console: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return errQuit
		}

		rep, err := d.Do(ctx, line)
		if err != nil {
			return nil
		}
		fmt.Fprintln(rl.Stdout(), rep)
	}
}

func completer() *readline.PrefixCompleter {
	fixed := func(name string) readline.PrefixCompleterInterface {
		return readline.PcItem(name,
			readline.PcItem("play"),
			readline.PcItem("crossfade"),
			readline.PcItem("stop"),
			readline.PcItem("fade"),
			readline.PcItem("pos"),
			readline.PcItem("state"),
		)
	}
	pooled := func(name string) readline.PrefixCompleterInterface {
		return readline.PcItem(name,
			readline.PcItem("play"),
			readline.PcItem("crossfade"),
			readline.PcItem("stop"),
			readline.PcItem("stopall"),
			readline.PcItem("fade"),
			readline.PcItem("pos"),
			readline.PcItem("state"),
			readline.PcItem("volume"),
			readline.PcItem("pitch"),
			readline.PcItem("global-volume"),
			readline.PcItem("global-pitch"),
			readline.PcItem("size"),
			readline.PcItem("filter"),
			readline.PcItem("effect"),
		)
	}
	kinds := func(name string) readline.PrefixCompleterInterface {
		return readline.PcItem(name,
			readline.PcItem("bgm"),
			readline.PcItem("bgs"),
			readline.PcItem("me"),
			readline.PcItem("se"),
		)
	}

	return readline.NewPrefixCompleter(
		fixed("bgm"), fixed("bgs"), fixed("me"), fixed("se"),
		pooled("lch"), pooled("ch"),
		readline.PcItem("volume", readline.PcItem("bgm"), readline.PcItem("sfx")),
		kinds("filter"), kinds("effect"),
		readline.PcItem("lowpass"),
		readline.PcItem("echo"),
		readline.PcItem("reset"),
		readline.PcItem("watch"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
