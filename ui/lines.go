package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// ServeLines runs s over a line stream: input lines are read from r
// and every frame is written to w as one line. It returns when r is
// exhausted, ctx is done or w fails. Malformed lines are logged and
// skipped.
func ServeLines(ctx context.Context, s *Session, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := make(chan Input)
	readErr := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			readErr <- err
			close(inputs)
		}()
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			in, perr := ParseInput(line)
			if perr != nil {
				s.log.Warn("bad input", zap.String("line", line), zap.Error(perr))
				continue
			}
			select {
			case inputs <- in:
			case <-ctx.Done():
				return
			}
		}
		err = sc.Err()
	}()

	err := Run(ctx, s, inputs, func(html string) error {
		_, err := fmt.Fprintln(w, html)
		return err
	})
	if err != nil {
		return err
	}
	if err := <-readErr; err != nil {
		return fmt.Errorf("ui: read input: %w", err)
	}
	return nil
}
