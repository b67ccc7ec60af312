package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/template"

	"github.com/northvolt/go-stwbc86/stwbc86"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type infoConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	json       bool
}

func (c *infoConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "info\n")
	}

	d, closer, err := newSTWBC86(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	info, err := d.ChipInfo(ctx)
	if err != nil {
		return err
	}
	di, err := newDeviceInfo(info)
	if err != nil {
		return err
	}

	if c.json {
		return writeJSON(c.out, di)
	} else {
		return writeText(c.out, di)
	}
}

type deviceInfo struct {
	Name string `json:"name"`
	stwbc86.ChipInfo
	Registers []byte `json:"-"`
}

func newDeviceInfo(info stwbc86.ChipInfo) (*deviceInfo, error) {
	raw, err := info.MarshalBinary()
	if err != nil {
		return nil, err
	}
	name := "unknown"
	if dt, err := stwbc86.DeviceTypeFromChipID(info.ChipID); err == nil {
		name = dt.String()
	}
	return &deviceInfo{Name: name, ChipInfo: info, Registers: raw}, nil
}

const deviceInfoTemplate = `
Device Part:
    {{ .Name }} (id {{ id .ChipID }}, rev {{ .ChipRev }}, customer {{ .CustID }})

Firmware:
    Patch {{ id .PatchID }}
    Cfg   {{ id .CfgID }}

Chip Info Registers:
{{ regs .Registers }}

Done
`

func writeText(w io.Writer, di *deviceInfo) error {
	funcs := template.FuncMap{
		"regs": func(b []byte) string {
			return regDump(b, stwbc86.RegChipInfo, "    ")
		},
		"id": func(v uint16) string {
			return fmt.Sprintf("%04X", v)
		},
	}
	t, err := template.New("info").Funcs(funcs).Parse(deviceInfoTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, di)
}

func writeJSON(w io.Writer, di *deviceInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(di)
}

func newInfoCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := infoConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("stwbc86 info", flag.ExitOnError)
	fs.BoolVar(&cfg.json, "json", false, "output as json")
	rootConfig.registerFlags(fs)

	return withEnvHelp(&ffcli.Command{
		Name:       "info",
		ShortUsage: "info",
		ShortHelp:  "Reads chip and firmware identification.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:       cfg.Exec,
	})
}
