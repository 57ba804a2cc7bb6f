package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/rsaviz/internal/config"
	"github.com/udisondev/rsaviz/internal/mapping"
	"github.com/udisondev/rsaviz/internal/rsakey"
	"github.com/udisondev/rsaviz/internal/stepper"
	"github.com/udisondev/rsaviz/internal/visualizer"
)

var errPlaybackRejected = errors.New("playback stopped on a rejected step")

func runMap(ctx context.Context, cfg config.Config, args []string, out io.Writer, onKey func(rsakey.KeyMaterial)) error {
	vc := cfg.Visualizer

	fs := flag.NewFlagSet("map", flag.ContinueOnError)
	fs.SetOutput(out)
	p := fs.Int64("p", vc.P, "first prime")
	q := fs.Int64("q", vc.Q, "second prime")
	e := fs.Int64("e", vc.E, "public exponent")
	from := fs.Int64("from", vc.MessageStart, "first plaintext")
	to := fs.Int64("to", vc.MessageEnd, "last plaintext")
	speed := fs.Int("speed", vc.Speed, "playback speed 1..100")
	layout := fs.String("layout", vc.Layout, "linear or elliptical")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := mapping.ParseMode(*layout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan stepper.Event, 16)
	observe := func(ev stepper.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	params := visualizer.Params{P: *p, Q: *q, E: *e, MessageStart: *from, MessageEnd: *to}
	v, err := visualizer.New(params,
		visualizer.WithMaxRange(vc.MaxRange),
		visualizer.WithTickUnit(vc.TickUnit),
		visualizer.WithObserver(observe),
		visualizer.WithKeyHook(onKey),
	)
	if err != nil {
		return fmt.Errorf("building visualizer: %w", err)
	}
	defer v.Close()

	snap := v.Snapshot()
	k := snap.Key
	fmt.Fprintf(out, "p=%d q=%d n=%d φ=%d e=%d d=%d range=[%d,%d]\n",
		k.P, k.Q, k.N, k.Phi, k.E, k.D, params.MessageStart, params.MessageEnd)

	if len(snap.Entries) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return renderPlayback(gctx, v, events, out)
	})

	g.Go(func() error {
		<-gctx.Done()
		// stop the ticker before Close so the observer never blocks
		v.Pause()
		return nil
	})

	if err := v.Play(*speed); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("starting playback: %w", err)
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	canvas := mapping.Canvas{Width: vc.Width, Height: vc.Height}
	renderProjection(out, v.Project(mode, canvas))
	return nil
}

// renderPlayback prints every revealed entry until playback completes,
// then cancels the group.
func renderPlayback(ctx context.Context, v *visualizer.Visualizer, events <-chan stepper.Event, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev.Kind {
			case stepper.EventAdvanced:
				snap := v.Snapshot()
				if ev.Generation != snap.State.Generation {
					continue
				}
				renderEntry(out, snap.Entries[ev.Cursor-1])
			case stepper.EventCompleted:
				slog.Debug("playback completed", "cursor", ev.Cursor)
				return context.Canceled
			case stepper.EventRejected:
				return fmt.Errorf("%w: %w", errPlaybackRejected, ev.Err)
			}
		}
	}
}

func renderEntry(out io.Writer, e mapping.Entry) {
	mark := ""
	if e.SelfMapping {
		mark = "  (self)"
	}
	fmt.Fprintf(out, "%6d -> %-6d%s\n", e.Plaintext, e.Ciphertext, mark)
}

func renderProjection(out io.Writer, pr mapping.Projection) {
	fmt.Fprintf(out, "\n%s layout %.0fx%.0f, %d nodes\n", pr.Mode, pr.Canvas.Width, pr.Canvas.Height, len(pr.Nodes))
	self := 0
	for _, s := range pr.Segments {
		if s.SelfMapping {
			self++
		}
		note := ""
		if s.OutOfRange {
			note = " out of range"
		}
		fmt.Fprintf(out, "  %d->%d %s w=%.0f (%.1f,%.1f)->(%.1f,%.1f)%s\n",
			s.Plaintext, s.Ciphertext, s.Color, s.Width, s.From.X, s.From.Y, s.To.X, s.To.Y, note)
	}
	fmt.Fprintf(out, "%d of %d values map to themselves\n", self, len(pr.Segments))
}
