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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"

	"github.com/urfave/cli"
	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/consensus/aquahash/ethashdag"
)

var (
	makecacheCommand = cli.Command{
		Action:    makecache,
		Name:      "makecache",
		Usage:     "Generate aquahash verification cache",
		ArgsUsage: "<blockNum> <outputDir>",
		Category:  "MISCELLANEOUS COMMANDS",
		Description: `
The makecache command generates an aquahash cache in <outputDir>.

Nodes generate caches on demand; this is for seeding a shared directory.
`,
	}
	makedagCommand = cli.Command{
		Action:    makedag,
		Name:      "makedag",
		Usage:     "Generate aquahash mining DAG",
		ArgsUsage: "<blockNum> <outputDir>",
		Category:  "MISCELLANEOUS COMMANDS",
		Description: `
The makedag command generates an aquahash DAG in <outputDir>.

Generation can be interrupted with Ctrl-C, nothing is written in that case.
`,
	}
	dumpConfigCommand = cli.Command{
		Action:    dumpConfig,
		Name:      "dumpconfig",
		Usage:     "Show configuration values",
		ArgsUsage: "",
		Category:  "MISCELLANEOUS COMMANDS",
		Description: `
The dumpconfig command shows the effective configuration in the format read
by --config.
`,
	}
	versionCommand = cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
		Category:  "MISCELLANEOUS COMMANDS",
		Description: `
The output of this command is supposed to be machine-readable.
`,
	}
)

func parseBlock(s string) uint64 {
	block, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		fatalf("Invalid block number: %v", err)
	}
	return block
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	return engineConfig(ctx).Dump(os.Stdout)
}

// makecache generates an aquahash verification cache into the provided folder.
func makecache(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		fatalf(`Usage: aquahash makecache <block number> <outputdir>`)
	}
	c := ethashdag.MakeCache(parseBlock(args[0]), args[1])
	fmt.Printf("epoch %d cache seed %s\n", c.Epoch(), c.Seed().Hex())
	return nil
}

// makedag generates an aquahash mining DAG into the provided folder.
func makedag(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		fatalf(`Usage: aquahash makedag <block number> <outputdir>`)
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d, err := ethashdag.MakeDataset(sigctx, parseBlock(args[0]), args[1])
	if err != nil {
		fatalf("Dataset generation failed: %v", err)
	}
	fmt.Printf("epoch %d dataset %d bytes\n", d.Epoch(), d.Light().DatasetSize())
	return nil
}

func version(ctx *cli.Context) error {
	fmt.Println(common.MakeName(clientIdentifier, clientVersion))
	if gitCommit != "" {
		fmt.Println("Git Commit:", gitCommit)
	}
	fmt.Println("Architecture:", runtime.GOARCH)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}
