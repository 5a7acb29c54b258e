// fbxtool is a CLI utility for inspecting FBX scenes and converting them
// to glTF.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/fbxscene/internal/config"
	"github.com/Faultbox/fbxscene/internal/logger"
	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/loader"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "tree":
		err = cmdTree(cfg, args)
	case "dump":
		err = cmdDump(cfg, args)
	case "conns", "connections":
		err = cmdConns(cfg, args)
	case "anim", "animations":
		err = cmdAnim(cfg, args)
	case "convert":
		err = cmdConvert(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, errUsage) {
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fbxtool - FBX scene utility

Usage:
  fbxtool [flags] <command> [options]

Commands:
  info <file.fbx>                 Show document and scene summary
  tree <file.fbx>                 Print the attributed node tree
  dump <file.fbx> [id]            Dump an object (or the whole tree)
  conns <file.fbx> [id]           List connections (optionally of one object)
  anim <file.fbx>                 List animation clips
  convert <file.fbx> [output]     Convert to .gltf or .glb

Flags:
  --config <path>       Config file (.yaml or .toml)
  --debug               Enable debug logging
  --encoding <charset>  Code page of legacy object names
  --resource-dir <dir>  Base directory for texture files
  --binary              Export .glb instead of .gltf

Examples:
  fbxtool info character.fbx
  fbxtool tree -depth 2 character.fbx
  fbxtool conns character.fbx 1234567
  fbxtool convert https://example.com/models/robot.fbx robot.glb`)
}

// newLoader builds a loader from the tool configuration.
func newLoader(cfg *config.Config) (*loader.Loader, error) {
	names, err := encoding.NewNameDecoder(cfg.Loader.NameEncoding)
	if err != nil {
		return nil, err
	}
	return loader.New(loader.Options{
		Names:         names,
		ResourceDir:   cfg.Loader.ResourceDir,
		FetchTimeout:  cfg.Loader.FetchTimeout,
		MaxFetchBytes: int64(cfg.Loader.MaxFetchMB) << 20,
	}), nil
}
