//go:build !linux

package logger

import (
	"io"
	"os"
)

// IsTerminal reports whether w is an *os.File backed by a character device.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}
