package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/udisondev/rsaviz/internal/rsakey"
	"github.com/udisondev/rsaviz/internal/stepper"
	"github.com/udisondev/rsaviz/internal/wizard"
)

// Commands understood by the wizard prompt. Anything else is page input.
const (
	cmdBack  = ":back"
	cmdReset = ":reset"
	cmdQuit  = ":quit"
)

func runWizard(ctx context.Context, in io.Reader, out io.Writer, onKey func(rsakey.KeyMaterial)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := wizard.New(wizard.WithKeyHook(onKey))
	defer w.Close()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	renderPage(out, w.View())
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-scanErr:
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
			default:
			}
			return nil
		}

		switch strings.TrimSpace(line) {
		case cmdQuit:
			return nil
		case cmdBack:
			if !w.Previous() {
				fmt.Fprintln(out, "already on the first page")
			}
		case cmdReset:
			w.Reset()
		default:
			v := w.View()
			// an empty line keeps the restored value
			if v.Input && line != "" {
				w.SetInput(line)
			}
			if !v.CanNext {
				fmt.Fprintln(out, "done; :back, :reset or :quit")
				continue
			}
			if err := w.Next(); err != nil {
				if errors.Is(err, stepper.ErrAtEnd) {
					continue
				}
				fmt.Fprintln(out, wizard.InvalidInputMessage)
				continue
			}
		}
		renderPage(out, w.View())
	}
}

func renderPage(out io.Writer, v wizard.View) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", v.Index+1, v.Total, v.Title)
	fmt.Fprintln(out, v.Description)
	for _, l := range v.Lines {
		fmt.Fprintf(out, "  %s\n", l)
	}
	switch {
	case v.Input && v.Value != "":
		fmt.Fprintf(out, "%s [%s]> ", v.Placeholder, v.Value)
	case v.Input:
		fmt.Fprintf(out, "%s> ", v.Placeholder)
	case v.CanNext:
		fmt.Fprint(out, "press enter to continue> ")
	}
}
