package migration

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineBytes bounds a single decoded line.
const maxLineBytes = 64 << 20

// CalculateChecksum computes the checksum Flyway records for SQL migrations:
// a CRC-32 (IEEE) over the UTF-8 bytes of every line, with line terminators
// removed and nothing inserted between lines. The CRC is returned as a
// signed 32-bit value.
//
// A leading UTF-8, UTF-16BE or UTF-16LE byte order mark is stripped. A UTF-16
// mark also switches decoding to UTF-16 so the checksum is taken over the
// UTF-8 form of the text.
func CalculateChecksum(r io.Reader) (int32, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(scanLines)

	crc := crc32.NewIEEE()
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r\n")
		_, _ = crc.Write(line)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read content for checksum: %w", err)
	}

	return int32(crc.Sum32()), nil
}

// CalculateFileChecksum opens path on fs and checksums its content.
func CalculateFileChecksum(fs afero.Fs, path string) (int32, error) {
	f, err := fs.Open(fromSlash(path))
	if err != nil {
		return 0, sourceReadError(path, err)
	}
	defer f.Close()

	checksum, err := CalculateChecksum(f)
	if err != nil {
		return 0, sourceReadError(path, err)
	}
	return checksum, nil
}

// scanLines splits on "\n", "\r\n" and a lone "\r", dropping the terminator.
// A terminator at the very end of the input does not yield an extra empty line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
