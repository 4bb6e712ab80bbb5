// Copyright 2018 The aquachain Authors
// This file is part of aquachain.
//
// aquachain is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// aquachain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with aquachain. If not, see <http://www.gnu.org/licenses/>.

// aquahash is the command-line tool for the aquahash proof-of-work engine.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/common/log"
	"gitlab.com/aquachain/aquahash/consensus/aquahash"
	"gitlab.com/aquachain/aquahash/consensus/aquahash/ethashdag"
)

const (
	clientIdentifier = "aquahash"
	clientVersion    = "1.0.0"
)

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit string

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Base directory for relative cache and dataset directories",
		Value: ethashdag.DefaultDatasetDirByOS(),
	}
	testModeFlag = cli.BoolFlag{
		Name:  "test",
		Usage: "Use the tiny test cache and dataset sizes",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: crit, error, warn, info, debug, trace",
		Value: "info",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Serve Prometheus metrics on this address (disabled when empty)",
	}
	fullFlag = cli.BoolFlag{
		Name:  "full",
		Usage: "Hash with the full dataset instead of the verification cache",
	}
	threadsFlag = cli.IntFlag{
		Name:  "threads",
		Usage: "Number of search threads (0 = all cores)",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "the aquahash proof-of-work tool"
	app.Version = clientVersion
	if gitCommit != "" {
		app.Version += "-" + gitCommit
	}
	app.Copyright = "Copyright 2018-2025 The Aquachain Authors"
	app.HideVersion = true // we have a command to print the version
	app.Flags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		testModeFlag,
		verbosityFlag,
		metricsAddrFlag,
	}
	app.Commands = []cli.Command{
		// See misccmd.go:
		makecacheCommand,
		makedagCommand,
		dumpConfigCommand,
		versionCommand,
		// See hashcmd.go:
		hashCommand,
		verifyCommand,
		searchCommand,
		seedhashCommand,
	}
	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Before = beforeFunc
	return app
}

func beforeFunc(ctx *cli.Context) error {
	lvl, err := log.ParseLevel(ctx.GlobalString(verbosityFlag.Name))
	if err != nil {
		return err
	}
	log.SetRootHandler(log.TerminalHandler(lvl))

	if addr := ctx.GlobalString(metricsAddrFlag.Name); addr != "" {
		if err := ethashdag.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			return err
		}
		go func() {
			log.Info("Starting metrics server", "addr", addr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", "err", err)
			}
		}()
	}
	return nil
}

// engineConfig builds the engine configuration from the global flags, the
// optional config file taking precedence over the defaults.
func engineConfig(ctx *cli.Context) *aquahash.Config {
	cfg := ethashdag.DefaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if !common.FileExist(file) {
			fatalf("Config file %s does not exist", file)
		}
		loaded, err := ethashdag.LoadConfig(file)
		if err != nil {
			fatalf("Invalid config: %v", err)
		}
		cfg = loaded
	}
	datadir := ctx.GlobalString(dataDirFlag.Name)
	cfg.CacheDir = common.AbsolutePath(datadir, cfg.CacheDir)
	cfg.DatasetDir = common.AbsolutePath(datadir, cfg.DatasetDir)
	if ctx.GlobalBool(testModeFlag.Name) {
		cfg.PowMode = aquahash.ModeTest
	}
	return cfg
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
