package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/northvolt/go-stwbc86/hal/mcp2221"
	"github.com/northvolt/go-stwbc86/internal/sim"
	"github.com/northvolt/go-stwbc86/platform"
	"github.com/northvolt/go-stwbc86/stwbc86"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	busSim     = "sim"
	busMCP2221 = "mcp2221"
)

func newSTWBC86(c *rootConfig) (*stwbc86.Dev, io.Closer, error) {
	p, closer, err := newPlatform(c)
	if err != nil {
		return nil, nil, err
	}
	cfg := stwbc86.DefaultConfig()
	cfg.LogInfo = c.logInfo
	cfg.Debug = newLogger(c.verbose)
	return stwbc86.New(p, cfg), closer, nil
}

func newPlatform(c *rootConfig) (*platform.Platform, io.Closer, error) {
	addr, err := getI2CAddress(c.addr)
	if err != nil {
		return nil, nil, err
	}

	bus, err := openBus(c)
	if err != nil {
		return nil, nil, err
	}
	closers := closerList{bus}

	console, err := openConsole(c.console, c.baud)
	if err != nil {
		_ = closers.Close()
		return nil, nil, err
	}
	closers = append(closers, console)

	cfg := platform.ConfigSTWBC86_I2CDefault(bus)
	cfg.I2C.Address = addr
	cfg.Console = console
	cfg.Debug = newLogger(c.verbose)
	if c.pool {
		cfg.Allocator = platform.NewPoolAllocator(platform.DefaultPoolBlocks, platform.DefaultPoolBlockSize)
	}

	p, err := platform.New(cfg)
	if err != nil {
		_ = closers.Close()
		return nil, nil, err
	}
	return p, closers, nil
}

func openBus(c *rootConfig) (i2c.BusCloser, error) {
	switch c.bus {
	case busSim:
		return sim.New(), nil
	case busMCP2221:
		bus, err := mcp2221.Open(c.devIndex)
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		bus, err := i2creg.Open(c.bus)
		if err != nil {
			return nil, fmt.Errorf("stwbc86: failed to connect to bus: %w", err)
		}
		return bus, nil
	}
}

// openConsole returns the writer for driver log output.
func openConsole(path string, baud int) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stderr}, nil
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("stwbc86: failed to open console: %w", err)
	}
	return port, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// closerList closes its members in reverse order.
type closerList []io.Closer

func (l closerList) Close() error {
	var errs []error
	for i := len(l) - 1; i >= 0; i-- {
		if err := l[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func getI2CAddress(addrStr string) (uint16, error) {
	if addrStr == "" {
		return stwbc86.I2CAddress, nil
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(addrStr, "0x"), 16, 7)
	if err != nil {
		return 0, fmt.Errorf("stwbc86: invalid i2c address %q", addrStr)
	}
	return uint16(addr), nil
}

// regDump formats a register block read from reg, one row of regsPerRow
// registers per line, each row led by the address of its first register.
func regDump(data []byte, reg uint16, prefix string) string {
	const regsPerRow = 8

	var rows []string
	for off := 0; off < len(data); off += regsPerRow {
		end := off + regsPerRow
		if end > len(data) {
			end = len(data)
		}
		cells := make([]string, 0, regsPerRow)
		for _, b := range data[off:end] {
			cells = append(cells, fmt.Sprintf("%02X", b))
		}
		rows = append(rows, fmt.Sprintf("%s%04X  %s", prefix, int(reg)+off, strings.Join(cells, " ")))
	}
	return strings.Join(rows, "\n")
}

// envName is the environment variable ff reads a flag from.
func envName(name string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// withEnvHelp appends the general help and the environment variables the
// command's flags can be set from.
func withEnvHelp(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}
	cmd.LongHelp += stwbc86LongHelp

	var names []string
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		names = append(names, "  "+envName(f.Name))
	})
	if len(names) > 0 {
		cmd.LongHelp += "\n\nENVIRONMENT\n" + strings.Join(names, "\n")
	}
	return cmd
}

// newLogger returns the trace logger for -v. Timestamps carry microseconds
// so bus transactions can be held against the transfer deadline.
func newLogger(verbose bool) stwbc86.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "trace ", log.Ltime|log.Lmicroseconds)
}
