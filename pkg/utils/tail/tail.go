// Package tail reads the last lines of a log without loading it whole.
package tail

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// MaxLineSize bounds a single returned line. Longer lines, such as progress
// bars redrawn with \r, are truncated instead of failing the read.
const MaxLineSize = 1024 * 1024

// Lines returns at most n trailing lines of r, oldest first
func Lines(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, n)
	count := 0

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, goerr.Wrap(err, "failed to read lines")
		}
		if err == nil || line != "" {
			ring[count%n] = line
			count++
		}
		if err != nil {
			break
		}
	}

	if count < n {
		return ring[:count], nil
	}

	start := count % n
	out := make([]string, 0, n)
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}

// readLine returns the next line without its line ending, keeping at most
// MaxLineSize bytes and discarding the rest of the line.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		frag, err := br.ReadSlice('\n')
		if room := MaxLineSize - len(buf); room > 0 {
			buf = append(buf, frag[:min(len(frag), room)]...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		line := string(buf)
		if strings.HasSuffix(line, "\n") {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		}
		return line, err
	}
}

// File returns at most n trailing lines of the file at path, oldest first.
// The returned error wraps os.ErrNotExist when the file is missing.
func File(path string, n int) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 path comes from configuration
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open file", goerr.V("path", path))
	}
	defer f.Close()

	lines, err := Lines(f, n)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}
	return lines, nil
}
