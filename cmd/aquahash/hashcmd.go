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
	"math/big"
	"os"
	"os/signal"
	"strconv"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/consensus/aquahash"
	"gitlab.com/aquachain/aquahash/consensus/aquahash/ethashdag"
)

var (
	hashCommand = cli.Command{
		Action:    hash,
		Name:      "hash",
		Usage:     "Compute the mix and result digests of a header hash and nonce",
		ArgsUsage: "<blockNum> <headerHash> <nonce>",
		Flags:     []cli.Flag{fullFlag},
		Category:  "POW COMMANDS",
	}
	verifyCommand = cli.Command{
		Action:    verify,
		Name:      "verify",
		Usage:     "Verify a proof-of-work solution against a difficulty",
		ArgsUsage: "<blockNum> <headerHash> <nonce> <mixDigest> <difficulty>",
		Category:  "POW COMMANDS",
	}
	searchCommand = cli.Command{
		Action:    search,
		Name:      "search",
		Usage:     "Search for a nonce meeting a difficulty",
		ArgsUsage: "<blockNum> <headerHash> <difficulty>",
		Flags:     []cli.Flag{threadsFlag},
		Category:  "POW COMMANDS",
	}
	seedhashCommand = cli.Command{
		Action:    seedhash,
		Name:      "seedhash",
		Usage:     "Print the epoch, seed and sizes of a block",
		ArgsUsage: "<blockNum>",
		Category:  "POW COMMANDS",
	}
)

func newEngine(ctx *cli.Context) *aquahash.Aquahash {
	engine, err := aquahash.New(engineConfig(ctx))
	if err != nil {
		fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func parseHash(s string) common.Hash {
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		fatalf("Invalid hash %q", s)
	}
	return common.BytesToHash(b)
}

func parseNonce(s string) uint64 {
	nonce, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		fatalf("Invalid nonce: %v", err)
	}
	return nonce
}

func parseDifficulty(s string) *big.Int {
	difficulty, ok := new(big.Int).SetString(s, 0)
	if !ok || difficulty.Sign() <= 0 {
		fatalf("Invalid difficulty %q", s)
	}
	return difficulty
}

func hash(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 3 {
		fatalf(`Usage: aquahash hash <block number> <header hash> <nonce>`)
	}
	engine := newEngine(ctx)
	defer engine.Close()

	block, header, nonce := parseBlock(args[0]), parseHash(args[1]), parseNonce(args[2])
	var mix, result common.Hash
	if ctx.Bool(fullFlag.Name) {
		var err error
		if mix, result, err = engine.ComputeFull(block, header, nonce); err != nil {
			fatalf("Full hash failed: %v", err)
		}
	} else {
		mix, result = engine.ComputeLight(block, header, nonce)
	}
	fmt.Println("mix:   ", mix.Hex())
	fmt.Println("result:", result.Hex())
	return nil
}

func verify(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 5 {
		fatalf(`Usage: aquahash verify <block number> <header hash> <nonce> <mix digest> <difficulty>`)
	}
	engine := newEngine(ctx)
	defer engine.Close()

	block, header, nonce := parseBlock(args[0]), parseHash(args[1]), parseNonce(args[2])
	if err := engine.VerifyPoW(block, header, nonce, parseHash(args[3]), parseDifficulty(args[4])); err != nil {
		fatalf("Verification failed: %v", err)
	}
	fmt.Println(color.GreenString("valid"))
	return nil
}

func search(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 3 {
		fatalf(`Usage: aquahash search <block number> <header hash> <difficulty>`)
	}
	engine := newEngine(ctx)
	defer engine.Close()
	engine.SetThreads(ctx.Int(threadsFlag.Name))

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := engine.Search(sigctx, parseBlock(args[0]), parseHash(args[1]), parseDifficulty(args[2]))
	if err != nil {
		fatalf("Search failed: %v", err)
	}
	fmt.Println("nonce: ", res.Nonce)
	fmt.Println("mix:   ", res.MixDigest.Hex())
	fmt.Println("result:", res.Digest.Hex())
	fmt.Printf("rate:   %.0f H/s\n", engine.Hashrate())
	return nil
}

func seedhash(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		fatalf(`Usage: aquahash seedhash <block number>`)
	}
	block := parseBlock(args[0])
	epoch := ethashdag.EpochOf(block)
	fmt.Println("epoch:  ", epoch)
	fmt.Println("seed:   ", common.BytesToHash(aquahash.SeedHash(block)).Hex())
	fmt.Println("cache:  ", ethashdag.CacheSize(epoch))
	fmt.Println("dataset:", ethashdag.DatasetSize(epoch))
	return nil
}
