// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// fragmentd is a minimal example of embedding the fragment core in a
// host process, the way cmd/evm-node sits beside the teacher's library
// packages (spec §6: "the core is a library embedded in a host
// process, no environment variables, no CLI of its own"). It loads a
// fragment.Config from flags/config file, wires a fragment.Processor,
// and drives it from newline-delimited JSON commands on stdin.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/luxfi/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/luxfi/fragment"
	applog "github.com/luxfi/fragment/log"
	"github.com/luxfi/fragment/stats"
)

const clientIdentifier = "fragmentd"

var app = &cli.App{
	Name:  clientIdentifier,
	Usage: "example host process embedding the fragment processing core",
}

func init() {
	app.Before = setupLogging
	app.Action = run
	app.Flags = []cli.Flag{
		&cli.IntFlag{Name: "pool-max-entries", Value: 4096, Usage: "per-pool capacity"},
		&cli.IntFlag{Name: "logs-max-entries", Value: 16384, Usage: "logs index capacity"},
		&cli.IntFlag{Name: "n-pools", Value: 4, Usage: "number of independent pool shards"},
		&cli.StringFlag{Name: "persistent-log-dir", Value: "", Usage: "directory for the hourly-rotated persistent log; empty disables persistence"},
		&cli.StringFlag{Name: "log-file", Value: "", Usage: "optional size-rotated log file; empty logs to the terminal only"},
		&cli.IntFlag{Name: "verbosity", Value: 3, Usage: "glog-style log verbosity ceiling (0=crit .. 5=trace)"},
		&cli.StringFlag{Name: "vmodule", Value: "", Usage: "glog-style per-callsite verbosity overrides, e.g. pool=5,process=4"},
		&cli.StringFlag{Name: "config", Value: "", Usage: "optional config file (yaml/json/toml) overriding the flags above"},
	}
}

// setupLogging builds a handler the same way cmd/evm-node does (a
// terminal handler, color auto-detected, or instead a size-rotated file
// handler when -log-file is set), wraps it in a GlogHandler configured
// from -verbosity/-vmodule, and passes it to applog.NewLogger before
// SetDefault. applog.NewLogger ignores the handler it is given and
// returns the luxfi/log root logger, so the handler built here does not
// change what the installed default logger writes.
func setupLogging(c *cli.Context) error {
	handler := applog.NewTerminalHandler(os.Stderr, false)
	if path := c.String("log-file"); path != "" {
		fileHandler, err := applog.FileHandler(path, applog.TerminalFormat(false))
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		handler = fileHandler
	}

	glogHandler := applog.NewGlogHandler(handler)
	glogHandler.Verbosity(applog.FromLegacyLevel(c.Int("verbosity")))
	if vmodule := c.String("vmodule"); vmodule != "" {
		if err := glogHandler.Vmodule(vmodule); err != nil {
			return fmt.Errorf("parsing vmodule: %w", err)
		}
	}
	applog.SetDefault(applog.NewLogger(glogHandler))
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig binds pflag-equivalent cli flags through viper so a config
// file can override them, following the same flag/file layering
// pattern as the teacher's cmd/evm-node flag wiring, generalized with
// viper+pflag per spec §H.
func loadConfig(c *cli.Context) (fragment.Config, error) {
	v := viper.New()
	fs := pflag.NewFlagSet(clientIdentifier, pflag.ContinueOnError)
	fs.Int("pool-max-entries", c.Int("pool-max-entries"), "")
	fs.Int("logs-max-entries", c.Int("logs-max-entries"), "")
	fs.Int("n-pools", c.Int("n-pools"), "")
	fs.String("persistent-log-dir", c.String("persistent-log-dir"), "")
	if err := v.BindPFlags(fs); err != nil {
		return fragment.Config{}, err
	}

	if path := c.String("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fragment.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return fragment.Config{
		PoolMaxEntries:   v.GetInt("pool-max-entries"),
		LogsMaxEntries:   v.GetInt("logs-max-entries"),
		NPools:           v.GetInt("n-pools"),
		PersistentLogDir: v.GetString("persistent-log-dir"),
		Log:              log.Root(),
	}, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	collector := stats.NewCollector(nil, cfg.NPools)
	pools, err := fragment.NewPools(cfg, collector)
	if err != nil {
		return fmt.Errorf("building pools: %w", err)
	}
	proc := fragment.NewProcessor(pools, cfg)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- proc.Run(ctx) }()
	defer proc.Shutdown()

	go logPropagated(ctx, pools, cfg.Log)

	if err := serveStdin(ctx, proc); err != nil {
		return err
	}

	proc.Shutdown()
	return <-runErrCh
}

// logPropagated drains the propagation sink, the way a real host would
// hand these off to its network stack; here it just logs them, since
// network I/O is explicitly out of the core's scope (spec §1).
func logPropagated(ctx context.Context, pools *fragment.Pools, logger log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pools.Sink():
			if !ok {
				return
			}
			logger.Debug("propagating fragment", "id", msg.ID, "origin", msg.Origin, "bytes", len(msg.Bytes))
		}
	}
}

// stdinCommand is the wire shape of one newline-delimited JSON command
// read from stdin. Exactly one of the fields is set.
type stdinCommand struct {
	Submit *struct {
		Origin    string   `json:"origin"`
		Fragments []string `json:"fragments"` // hex-encoded
		FailFast  bool     `json:"fail_fast"`
	} `json:"submit,omitempty"`
	GetLogs *struct{} `json:"get_logs,omitempty"`
}

func serveStdin(ctx context.Context, proc *fragment.Processor) error {
	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		var cmd stdinCommand
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, &cmd); err != nil {
			enc.Encode(map[string]string{"error": err.Error()})
			continue
		}

		switch {
		case cmd.Submit != nil:
			fragments := make([]*fragment.Fragment, 0, len(cmd.Submit.Fragments))
			var decodeErr error
			for _, hexBytes := range cmd.Submit.Fragments {
				b, err := hex.DecodeString(hexBytes)
				if err != nil {
					decodeErr = err
					break
				}
				fragments = append(fragments, &fragment.Fragment{ID: fragment.ComputeID(b), Bytes: b})
			}
			if decodeErr != nil {
				enc.Encode(map[string]string{"error": decodeErr.Error()})
				continue
			}
			origin := fragment.OriginRest
			if cmd.Submit.Origin == "network" {
				origin = fragment.OriginNetwork
			}
			summary, err := proc.Submit(ctx, origin, fragments, cmd.Submit.FailFast)
			if err != nil {
				enc.Encode(map[string]string{"error": err.Error()})
				continue
			}
			enc.Encode(summary)
		case cmd.GetLogs != nil:
			entries, err := proc.GetLogs(ctx)
			if err != nil {
				enc.Encode(map[string]string{"error": err.Error()})
				continue
			}
			enc.Encode(entries)
		}
	}
	return scanner.Err()
}
