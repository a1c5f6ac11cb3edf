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

const followPollInterval = 250 * time.Millisecond

// TailFile returns the last limit lines of the file at path along with the
// byte offset at the end of the file. A missing file yields no lines and a
// zero offset.
func TailFile(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	if limit <= 0 {
		return nil, info.Size(), nil
	}

	scanner := newLineScanner(file)
	ring := make([]string, limit)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow polls the file for lines appended after offset, invoking fn for each
// new line until ctx is cancelled. It tolerates the file not existing yet.
func Follow(ctx context.Context, path string, offset int64, fn func(line string)) error {
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		lines, newOffset, err := readFrom(path, offset)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fn(line)
		}
		offset = newOffset

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	// Truncated or rotated file: start over from the beginning.
	if offset > info.Size() {
		offset = 0
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	scanner := newLineScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, offset, fmt.Errorf("read log file: %w", err)
	}

	newOffset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, offset, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, newOffset, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
