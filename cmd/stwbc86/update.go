package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/northvolt/go-stwbc86/stwbc86"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type updateConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	image      string
	target     string
	force      bool
	timeout    time.Duration
}

func (c *updateConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "update")
	}
	if c.image == "" {
		return errors.New("stwbc86: missing -image")
	}
	target, err := stwbc86.ParseTarget(c.target)
	if err != nil {
		return err
	}
	img, err := stwbc86.ReadImageFile(c.image)
	if err != nil {
		return err
	}

	d, closer, err := newSTWBC86(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	before, err := d.ChipInfo(ctx)
	if err != nil {
		return err
	}
	if err := d.FWUpdate(ctx, target, img, c.force); err != nil {
		return err
	}
	after, err := d.ChipInfo(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "patch %04X -> %04X\n", before.PatchID, after.PatchID)
	fmt.Fprintf(c.out, "cfg   %04X -> %04X\n", before.CfgID, after.CfgID)
	return nil
}

func newUpdateCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := updateConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("stwbc86 update", flag.ExitOnError)
	fs.StringVar(&cfg.image, "image", "", "firmware image file")
	fs.StringVar(&cfg.target, "target", stwbc86.TargetPatchCfg.String(), "sections to write: patch, cfg or patch-cfg")
	fs.BoolVar(&cfg.force, "force", false, "write even if the chip already runs the image")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "maximum time for the update eg 30s")
	rootConfig.registerFlags(fs)

	return withEnvHelp(&ffcli.Command{
		Name:       "update",
		ShortUsage: "update -image FILE [-target patch-cfg] [-force]",
		ShortHelp:  "Writes patch and configuration firmware to the device.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:       cfg.Exec,
	})
}
