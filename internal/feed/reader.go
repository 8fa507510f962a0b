package feed

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
)

const maxLineSize = 1024 * 1024

// ReaderSource reads newline-delimited JSON messages, one per line. Blank
// lines are skipped.
type ReaderSource struct {
	R      io.Reader
	Logger *slog.Logger
}

func (s *ReaderSource) Messages(ctx context.Context) (<-chan []byte, error) {
	out := make(chan []byte)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(s.R)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			data := make([]byte, len(line))
			copy(data, line)
			select {
			case out <- data:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && s.Logger != nil {
			s.Logger.Error("read feed input", "error", err)
		}
	}()
	return out, nil
}
