// Command promptvfs exercises the virtual file system from the shell:
// it boots the configured runtime (storage backend, drivers, mount table,
// startup ingests) and runs exactly one operation against the router.
//
// Usage:
//
//	promptvfs [flags] read    <path>
//	promptvfs [flags] write   <path> <value>
//	promptvfs [flags] list    <prefix> [glob]
//	promptvfs [flags] delete  <path>
//	promptvfs [flags] ingest  <path>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/ShipFail/promptware-sub001/pkg/config"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "promptvfs.yaml", "Path to configuration file")
	dumpConfig := flag.Bool("dump-config", false, "Print the effective configuration as YAML and exit")
	skipBoot := flag.Bool("skip-boot-ingest", false, "Skip the configured startup ingests")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "promptvfs: %v\n", err)
		os.Exit(1)
	}

	if *dumpConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "promptvfs: marshal config: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	logger, closeLog, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "promptvfs: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Cancellable context so a slow remote fetch dies with ^C.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := config.Build(cfg, logger, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "promptvfs: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	if !*skipBoot {
		if err := rt.RunBootIngest(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "promptvfs: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(ctx, rt, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "promptvfs: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, rt *config.Runtime, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no operation given (read|write|list|delete|ingest)")
	}

	op, args := args[0], args[1:]
	switch op {
	case "read":
		if len(args) != 1 {
			return fmt.Errorf("usage: read <path>")
		}
		value, err := rt.VFS.Read(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil

	case "write":
		if len(args) != 2 {
			return fmt.Errorf("usage: write <path> <value>")
		}
		return rt.VFS.Write(ctx, args[0], args[1])

	case "list":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: list <prefix> [glob]")
		}
		paths, err := rt.VFS.List(ctx, args[0])
		if err != nil {
			return err
		}
		if len(args) == 2 {
			pattern, err := glob.Compile(args[1], '/')
			if err != nil {
				return fmt.Errorf("invalid glob %q: %w", args[1], err)
			}
			filtered := paths[:0]
			for _, p := range paths {
				if pattern.Match(p) {
					filtered = append(filtered, p)
				}
			}
			paths = filtered
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil

	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <path>")
		}
		return rt.VFS.Delete(ctx, args[0])

	case "ingest":
		if len(args) != 1 {
			return fmt.Errorf("usage: ingest <path>")
		}
		return rt.VFS.Ingest(ctx, args[0])

	default:
		return fmt.Errorf("unknown operation %q (read|write|list|delete|ingest)", op)
	}
}
