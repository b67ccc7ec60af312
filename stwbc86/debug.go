package stwbc86

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Logger receives host-side trace output. *log.Logger satisfies it.
//
// Some messages will be multiple lines.
type Logger interface {
	Printf(format string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// Discard is a Logger that drops everything.
var Discard Logger = discardLogger{}

func (cfg Config) logger() Logger {
	if cfg.Debug == nil {
		return Discard
	}
	return cfg.Debug
}

// dumpLimit caps the bytes shown per traced payload. Register accesses fit;
// firmware chunks are cut short.
const dumpLimit = 32

// hexDump lazily formats a bus payload in `hexdump -C` layout, so nothing is
// formatted unless the trace is printed.
type hexDump []byte

func (h hexDump) String() string {
	b := []byte(h)
	if len(b) > dumpLimit {
		b = b[:dumpLimit]
	}
	var buf strings.Builder
	buf.WriteByte('\n')
	buf.WriteString(hex.Dump(b))
	if n := len(h) - len(b); n > 0 {
		fmt.Fprintf(&buf, "          ... %d more bytes\n", n)
	}
	return buf.String()
}
