package main

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type rootConfig struct {
	verbose  bool
	bus      string
	addr     string
	devIndex int
	console  string
	baud     int
	pool     bool
	logInfo  bool
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.bus, "bus", "", "i2c bus name or number, mcp2221 or sim")
	fs.StringVar(&c.addr, "addr", "", "i2c address in hex")
	fs.IntVar(&c.devIndex, "dev-index", 0, "device index when enumerating usb bridges")
	fs.StringVar(&c.console, "console", "", "serial device for driver log output, stderr when empty")
	fs.IntVar(&c.baud, "baud", 115200, "console baud rate")
	fs.BoolVar(&c.pool, "pool", false, "serve driver buffers from a fixed pool instead of the heap")
	fs.BoolVar(&c.logInfo, "log-info", true, "emit driver info messages on the console")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

// envPrefix lets every flag be set from STWBC86_<FLAG> as well.
const envPrefix = "STWBC86"

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("stwbc86", flag.ExitOnError)
	cfg.registerFlags(fs)

	return withEnvHelp(&ffcli.Command{
		Name:       "stwbc86",
		ShortUsage: "stwbc86 [flags] <subcommand>",
		ShortHelp:  "Utilities to inspect and update your STWBC86 device.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:       cfg.Exec,
	}), &cfg
}

var stwbc86LongHelp = `

GENERAL
Select the bus with -bus. A number or name opens a Linux I²C adapter through
periph.io, "mcp2221" opens an MCP2221A USB bridge (see -dev-index) and "sim"
runs against a simulated chip.

Every flag can also be set through the environment, for example
STWBC86_BUS=1 or STWBC86_CONSOLE=/dev/ttyUSB0.`
