// Package pdf performs structural validation of uploaded PDF buffers before
// any bytes are sent to external services.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidFormat marks a buffer that failed a structural check. The wrapped
// message names the exact check that failed and is shown to the user verbatim.
var ErrInvalidFormat = errors.New("invalid PDF")

const (
	minSize       = 200
	eofWindowSize = 1024
)

var versionToken = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// Validate checks that buf is plausibly a complete, well-formed PDF document.
// It returns nil on success, or ErrInvalidFormat wrapped with a specific
// human-readable reason.
func Validate(buf []byte) error {
	if len(buf) < minSize {
		return fmt.Errorf("%w: file is too small to be a valid PDF (%d bytes)", ErrInvalidFormat, len(buf))
	}
	if !bytes.HasPrefix(buf, []byte("%PDF")) {
		return fmt.Errorf("%w: missing %%PDF header", ErrInvalidFormat)
	}

	match := versionToken.FindSubmatch(buf)
	if match == nil {
		return fmt.Errorf("%w: missing PDF version marker", ErrInvalidFormat)
	}
	major, _ := strconv.Atoi(string(match[1]))
	minor, _ := strconv.Atoi(string(match[2]))
	version := float64(major) + float64(minor)/10
	if version < 1.0 || version > 2.0 {
		return fmt.Errorf("%w: unsupported PDF version %d.%d", ErrInvalidFormat, major, minor)
	}

	tail := buf
	if len(tail) > eofWindowSize {
		tail = tail[len(tail)-eofWindowSize:]
	}
	if !bytes.Contains(tail, []byte("%%EOF")) {
		return fmt.Errorf("%w: missing %%%%EOF marker near end of file", ErrInvalidFormat)
	}

	if !bytes.Contains(buf, []byte("xref")) {
		return fmt.Errorf("%w: missing xref table", ErrInvalidFormat)
	}
	if !bytes.Contains(buf, []byte("trailer")) {
		return fmt.Errorf("%w: missing trailer section", ErrInvalidFormat)
	}
	return nil
}
