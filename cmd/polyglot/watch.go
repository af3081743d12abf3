package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"polyglot/internal/config"
	"polyglot/internal/model"
	"polyglot/internal/service"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Translate stdin lines as they settle",
		Long: `Read stdin line by line. Each line replaces the current input, as if typed
into the text box; a translation is sent once no new line has arrived for the
debounce delay. Every settled result is printed. At end of input the pending
line is translated immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(cfg *config.Config) {
				if delay > 0 {
					cfg.Debounce = delay
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			session := a.Sessions.Create()
			defer a.Sessions.Close(session.ID())
			return runWatch(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "Debounce delay; overrides POLYGLOT_DEBOUNCE_MS")
	return cmd
}

// statePrinter writes each settled generation at most once, in order.
type statePrinter struct {
	mu      sync.Mutex
	out     io.Writer
	printed uint64
}

func (p *statePrinter) print(state model.LifecycleState) {
	if state.Status != model.StatusSucceeded && state.Status != model.StatusFailed {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if state.Generation <= p.printed {
		return
	}
	p.printed = state.Generation

	fmt.Fprintf(p.out, "> %s\n", state.Text)
	if state.Status == model.StatusFailed {
		fmt.Fprintf(p.out, "Error: %s (%s)\n\n", state.Error.Message, state.Error.Kind)
		return
	}
	writeResult(p.out, state.Result)
	fmt.Fprintln(p.out)
}

func runWatch(ctx context.Context, session *service.Session, in io.Reader, out io.Writer) error {
	printer := &statePrinter{out: out}

	updates, unsubscribe := session.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for state := range updates {
			printer.print(state)
		}
	}()
	defer func() {
		unsubscribe()
		<-done
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		session.OnInputChanged(scanner.Text())
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	session.Flush()
	state, err := session.Settled(ctx)
	if err != nil && !errors.Is(err, service.ErrClosed) {
		return err
	}
	printer.print(state)
	return nil
}
