package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/muesli/termenv"
	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/storage"
	"github.com/zeu5/rl-gyms/util"
)

// signalContext returns a context cancelled on interrupt or once done is called
func signalContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

func openStore(ctx context.Context) (storage.Store, error) {
	s, err := storage.NewStore(flags.Store, flags.StorePath())
	if err != nil {
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		return nil, fmt.Errorf("opening %s store: %w", flags.Store, err)
	}
	return s, nil
}

// progressWriter returns where the gym writes its progress lines. On a
// terminal the line is refreshed in place, stop flushes the last one.
func progressWriter(ctx context.Context) (io.Writer, func()) {
	if !util.IsTerminal() {
		return os.Stdout, func() {}
	}
	printer := util.NewTerminalPrinter(printFrequency)
	out := printer.NewOutput()
	printer.Start(ctx)
	return out, printer.Stop
}

// waitIfPaused waits for enter when --pause is set. A failed read is
// reported to out and does not stop the command.
func waitIfPaused(in io.Reader, out io.Writer) {
	if !flags.Pause {
		return
	}
	if err := util.WaitForEnter(in, out, "Training finished, press enter to continue\n"); err != nil {
		fmt.Fprintf(out, "Not paused: %s\n", err)
	}
}

// printSummary writes the win ratio of every experiment, in green when the
// agent wins more than it loses
func printSummary(w io.Writer, results map[string]*core.ExperimentResult) {
	out := termenv.NewOutput(w)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Win Ratio is (AVG+5)/10")
	for _, name := range names {
		result := results[name]
		if result.IsError() {
			fmt.Fprintf(w, "%s: %s\n", name, out.String("error: "+result.Error.Error()).Foreground(out.Color("1")))
			continue
		}
		color := out.Color("2")
		if result.WinRate() < 0.5 {
			color = out.Color("3")
		}
		line := fmt.Sprintf("Last window avg reward: %.3f, Win ratio: %.3f", result.AverageReward(), result.WinRate())
		fmt.Fprintf(w, "%s: %s\n", out.String(name).Bold(), out.String(line).Foreground(color))
	}
}
