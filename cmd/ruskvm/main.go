// ruskvm is a command-line front end to the VM: deploy a contract, run a
// query or transaction against it, print the network root, or persist/
// restore network state to the configured store.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/urfave/cli.v1"

	"github.com/dusk-network/rusk-vm/common"
	"github.com/dusk-network/rusk-vm/config"
	"github.com/dusk-network/rusk-vm/gas"
	"github.com/dusk-network/rusk-vm/log"
	"github.com/dusk-network/rusk-vm/network"
	"github.com/dusk-network/rusk-vm/store"
	"github.com/dusk-network/rusk-vm/wasm"
)

// Version is the application revision identifier, set with the linker as
// in: go build -ldflags "-X main.Version="`git describe --tags`
var Version = "unknown"

var (
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "sets the verbosity level (0=error .. 4=trace)",
	}
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML schedule file (defaults to the built-in schedule)",
	}
	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "directory for the content-addressed store (defaults to an ephemeral in-memory store)",
	}
	CodeFlag = cli.StringFlag{
		Name:  "code",
		Usage: "path to the contract's WASM bytecode",
	}
	StateFlag = cli.StringFlag{
		Name:  "state",
		Usage: "path to the initial/argument state bytes",
	}
	ArgFlag = cli.StringFlag{
		Name:  "arg",
		Usage: "path to the call argument bytes",
	}
	IDFlag = cli.StringFlag{
		Name:  "id",
		Usage: "hex-encoded contract id",
	}
	EntryFlag = cli.StringFlag{
		Name:  "entry",
		Usage: "exported entry-point function name",
	}
	GasLimitFlag = cli.Uint64Flag{
		Name:  "gas",
		Usage: "gas limit for this call",
		Value: 10_000_000,
	}
	BlockHeightFlag = cli.Uint64Flag{
		Name:  "height",
		Usage: "block height presented to the contract",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = Version
	app.Usage = "deterministic WASM contract VM"
	app.Flags = []cli.Flag{VerbosityFlag, ConfigFlag, DataDirFlag}
	app.Before = func(ctx *cli.Context) error {
		log.SetVerbosity(ctx.GlobalInt(VerbosityFlag.Name))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "deploy",
			Usage:  "deploy a contract, printing its id",
			Flags:  []cli.Flag{CodeFlag, StateFlag},
			Action: runDeploy,
		},
		{
			Name:   "query",
			Usage:  "run a read-only call against a deployed contract",
			Flags:  []cli.Flag{IDFlag, EntryFlag, ArgFlag, GasLimitFlag, BlockHeightFlag},
			Action: runQuery,
		},
		{
			Name:   "transact",
			Usage:  "run a state-mutating call against a deployed contract",
			Flags:  []cli.Flag{IDFlag, EntryFlag, ArgFlag, GasLimitFlag, BlockHeightFlag},
			Action: runTransact,
		},
		{
			Name:   "root",
			Usage:  "print the current network state root",
			Action: runRoot,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// openState builds the State a single CLI invocation operates on. Every
// subcommand is a fresh process, so persistence across invocations goes
// through -datadir plus State.Persist/Restore rather than a long-lived
// daemon; ruskvm is a scripting front end, not a node.
func openState(ctx *cli.Context) (*network.State, error) {
	sched, err := config.LoadFile(ctx.GlobalString(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	var backend store.Backend
	if dir := ctx.GlobalString(DataDirFlag.Name); dir != "" {
		backend, err = store.NewFileBackend(dir)
	} else {
		backend = store.NewMemoryBackend()
	}
	if err != nil {
		return nil, err
	}
	st := store.New(backend)

	cache, err := wasm.NewCache(256)
	if err != nil {
		return nil, err
	}

	s := network.New(st, cache, sched)
	if dir := ctx.GlobalString(DataDirFlag.Name); dir != "" {
		if err := s.Restore(); err != nil {
			log.Warnf("no existing network state at %s, starting empty: %v", dir, err)
		}
	}
	return s, nil
}

func readFileOrEmpty(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return ioutil.ReadFile(path)
}

func runDeploy(ctx *cli.Context) error {
	s, err := openState(ctx)
	if err != nil {
		return err
	}
	bytecode, err := readFileOrEmpty(ctx.String(CodeFlag.Name))
	if err != nil {
		return err
	}
	initialState, err := readFileOrEmpty(ctx.String(StateFlag.Name))
	if err != nil {
		return err
	}
	id, err := s.Deploy(bytecode, initialState)
	if err != nil {
		return err
	}
	if dir := ctx.GlobalString(DataDirFlag.Name); dir != "" {
		if err := s.Persist(); err != nil {
			return err
		}
	}
	fmt.Println(id.Hex())
	return nil
}

func runQuery(ctx *cli.Context) error {
	s, err := openState(ctx)
	if err != nil {
		return err
	}
	id, err := common.IDFromHex(ctx.String(IDFlag.Name))
	if err != nil {
		return err
	}
	arg, err := readFileOrEmpty(ctx.String(ArgFlag.Name))
	if err != nil {
		return err
	}
	meter := gas.WithLimit(ctx.Uint64(GasLimitFlag.Name))
	ret, err := s.Query(id, ctx.Uint64(BlockHeightFlag.Name), ctx.String(EntryFlag.Name), arg, meter)
	if err != nil {
		return err
	}
	os.Stdout.Write(ret)
	return nil
}

func runTransact(ctx *cli.Context) error {
	s, err := openState(ctx)
	if err != nil {
		return err
	}
	id, err := common.IDFromHex(ctx.String(IDFlag.Name))
	if err != nil {
		return err
	}
	arg, err := readFileOrEmpty(ctx.String(ArgFlag.Name))
	if err != nil {
		return err
	}
	meter := gas.WithLimit(ctx.Uint64(GasLimitFlag.Name))
	ret, events, err := s.Transact(id, ctx.Uint64(BlockHeightFlag.Name), ctx.String(EntryFlag.Name), arg, meter)
	if err != nil {
		return err
	}
	if dir := ctx.GlobalString(DataDirFlag.Name); dir != "" {
		if err := s.Persist(); err != nil {
			return err
		}
	}
	for _, e := range events {
		log.Infof("event %s.%s: %x", e.Source.Hex(), e.Name, e.Data)
	}
	os.Stdout.Write(ret)
	return nil
}

func runRoot(ctx *cli.Context) error {
	s, err := openState(ctx)
	if err != nil {
		return err
	}
	root, err := s.Root()
	if err != nil {
		return err
	}
	fmt.Println(root.Hex())
	return nil
}
