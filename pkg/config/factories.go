package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ShipFail/promptware-sub001/pkg/driver/code"
	memdriver "github.com/ShipFail/promptware-sub001/pkg/driver/memory"
	"github.com/ShipFail/promptware-sub001/pkg/driver/proc"
	"github.com/ShipFail/promptware-sub001/pkg/driver/sys"
	"github.com/ShipFail/promptware-sub001/pkg/store"
	badgerstore "github.com/ShipFail/promptware-sub001/pkg/store/badger"
	memstore "github.com/ShipFail/promptware-sub001/pkg/store/memory"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// CreateStore creates the backing store selected by configuration.
//
// This factory uses the Type field to pick the implementation, then decodes
// the matching type-specific section into that implementation's option
// struct.
func CreateStore(cfg *StorageConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Type {
	case "memory":
		return memstore.NewMemoryStore(), nil
	case "badger":
		return createBadgerStore(cfg.Badger, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

// createBadgerStore decodes badger options and opens the database.
func createBadgerStore(options map[string]any, logger *slog.Logger) (store.Store, error) {
	type BadgerStoreConfig struct {
		Path       string `mapstructure:"path"`
		InMemory   bool   `mapstructure:"in_memory"`
		SyncWrites bool   `mapstructure:"sync_writes"`
	}

	var storeCfg BadgerStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store config: %w", err)
	}
	if storeCfg.Path == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger store: path is required")
	}

	return badgerstore.NewBadgerStore(badgerstore.Options{
		Path:       storeCfg.Path,
		InMemory:   storeCfg.InMemory,
		SyncWrites: storeCfg.SyncWrites,
		Logger:     logger,
	})
}

// Runtime is the fully wired system: router, drivers, stores, loader. It
// owns their lifecycles; Close releases everything Build opened.
type Runtime struct {
	Config *Config
	Origin vfs.Origin
	VFS    *vfs.VFS
	Loader *code.ContextLoader

	store   store.Store
	fetcher *code.Fetcher
	logger  *slog.Logger
}

// Build materializes a Runtime from validated configuration.
//
// Wiring, in dependency order: origin, backing store, generator registry,
// the four drivers, the router. The memory driver is mounted twice — once
// generic at "memory/" and once pinned to the vault namespace at "vault/" —
// over the same store, so both addressing forms reach the same entries. The
// code driver takes the empty prefix and catches everything else.
func Build(cfg *Config, logger *slog.Logger, version string) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	origin, err := vfs.NormalizeOrigin(cfg.Origin, cfg.Code.RootLocation)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	backing, err := CreateStore(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	table, err := code.NewMountTable(cfg.Code.RootLocation, cfg.Code.Mounts)
	if err != nil {
		backing.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	fetcher := code.NewFetcher(code.FetchOptions{
		Timeout:       cfg.Code.Fetch.Timeout,
		CacheTTL:      cfg.Code.Fetch.CacheTTL,
		RatePerSecond: cfg.Code.Fetch.RatePerSecond,
		Logger:        logger,
	})
	loader := code.NewContextLoader(logger)

	registry := proc.NewRegistry()

	rt := &Runtime{
		Config:  cfg,
		Origin:  origin,
		Loader:  loader,
		store:   backing,
		fetcher: fetcher,
		logger:  logger,
	}

	memoryDriver, err := memdriver.New(memdriver.Options{
		Store:      backing,
		Origin:     origin,
		Marker:     cfg.Vault.Marker,
		Generators: registry,
		Logger:     logger,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	vaultDriver, err := memdriver.New(memdriver.Options{
		Store:     backing,
		Origin:    origin,
		Marker:    cfg.Vault.Marker,
		Namespace: memdriver.NamespaceVault,
		Logger:    logger,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	sysDriver, err := sys.New(backing, origin, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	procDriver, err := proc.New(backing, origin, registry, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	codeDriver, err := code.New(table, fetcher, loader, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	router, err := vfs.New(logger, []vfs.Entry{
		{Prefix: "memory/", Driver: memoryDriver},
		{Prefix: "vault/", Driver: vaultDriver},
		{Prefix: "sys/", Driver: sysDriver},
		{Prefix: "proc/", Driver: procDriver},
		{Prefix: "", Driver: codeDriver},
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}
	rt.VFS = router

	if err := registerStandardGenerators(registry, rt, table, version); err != nil {
		rt.Close()
		return nil, fmt.Errorf("build: %w", err)
	}

	return rt, nil
}

// registerStandardGenerators wires the introspection attributes every
// process exposes. Composite views take the router itself as their
// read-capable handle.
func registerStandardGenerators(registry *proc.Registry, rt *Runtime, table *code.MountTable, version string) error {
	generators := map[string]proc.Generator{
		"cmdline": proc.Cmdline(),
		"uptime":  proc.Uptime(time.Now()),
		"boot_id": proc.BootID(),
		"origin":  proc.Static(string(rt.Origin)),
		"version": proc.Static(version),
		"mounts":  proc.Report(table.Render),
		"ingests": proc.Report(rt.Loader.Report),

		// Composite view: aggregates other proc reads back through the
		// router. Legal as long as no generator transitively reads itself.
		"status": proc.Summary(
			[]string{"proc/version", "proc/origin", "proc/uptime"},
			rt.VFS.Read,
		),
	}
	for path, g := range generators {
		if err := registry.Register(path, g); err != nil {
			return err
		}
	}
	return nil
}

// RunBootIngest performs the configured startup ingests in order. The first
// failure aborts boot: a partially loaded execution context is worse than a
// refused start.
func (r *Runtime) RunBootIngest(ctx context.Context) error {
	for _, path := range r.Config.Boot.Ingest {
		r.logger.Info("boot ingest", "path", path)
		if err := r.VFS.Ingest(ctx, path); err != nil {
			return fmt.Errorf("boot ingest %s: %w", path, err)
		}
	}
	return nil
}

// Close releases everything Build opened. Safe on a partially built
// Runtime.
func (r *Runtime) Close() error {
	if r.fetcher != nil {
		r.fetcher.Close()
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
