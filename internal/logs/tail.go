package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const pollInterval = 250 * time.Millisecond

// TailOptions controls a single Tail call.
type TailOptions struct {
	// Offset is the byte position to resume from. A negative value reads the
	// last Limit lines instead.
	Offset int64
	Limit  int
	// Wait bounds how long Tail polls for new lines when none are available.
	// Zero returns immediately.
	Wait time.Duration
}

// Chunk holds the lines read by Tail and the offset to resume from.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Tail reads lines from path. A missing file yields an empty chunk.
func Tail(ctx context.Context, path string, opts TailOptions) (Chunk, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{Offset: opts.Offset}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return Chunk{Offset: opts.Offset}, fmt.Errorf("log path %q is a directory", path)
	}

	var chunk Chunk
	if opts.Offset < 0 {
		chunk, err = lastLines(path, opts.Limit)
	} else {
		offset := opts.Offset
		if offset > info.Size() {
			offset = info.Size()
		}
		chunk, err = readFrom(path, offset)
	}
	if err != nil || len(chunk.Lines) > 0 || opts.Wait <= 0 {
		return chunk, err
	}
	return poll(ctx, path, chunk.Offset, opts.Wait)
}

func lastLines(path string, limit int) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return Chunk{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Chunk{}, fmt.Errorf("seek log file: %w", err)
		}
		return Chunk{Offset: end}, nil
	}

	ring := make([]string, 0, limit)
	start := 0
	scanner := newScanner(file)
	for scanner.Scan() {
		if len(ring) < limit {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[start] = scanner.Text()
		start = (start + 1) % limit
	}
	if err := scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("read log file: %w", err)
	}
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}

	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[start:]...)
	lines = append(lines, ring[:start]...)
	return Chunk{Lines: lines, Offset: end}, nil
}

func readFrom(path string, offset int64) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{Offset: offset}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{Offset: offset}, fmt.Errorf("seek log file: %w", err)
	}
	var lines []string
	scanner := newScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Chunk{Offset: offset}, fmt.Errorf("read log file: %w", err)
	}
	next, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return Chunk{Offset: offset}, fmt.Errorf("determine log offset: %w", err)
	}
	return Chunk{Lines: lines, Offset: next}, nil
}

func poll(ctx context.Context, path string, offset int64, wait time.Duration) (Chunk, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Chunk{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}
		chunk, err := readFrom(path, offset)
		if err != nil {
			return chunk, err
		}
		if len(chunk.Lines) > 0 || !time.Now().Before(deadline) {
			return chunk, nil
		}
		offset = chunk.Offset
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
