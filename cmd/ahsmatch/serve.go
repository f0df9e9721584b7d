package main

import (
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rencanakan/ahsmatch/internal/api"
	"github.com/rencanakan/ahsmatch/internal/catalog"
)

func runServe(c *cli.Context) error {
	rt, err := buildApp(c, true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if rt.cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(rt.catalogPaths, rt.watchDebounce(), rt.logger,
			func(paths []string) {
				rt.logger.Debug("catalog files changed", "paths", paths)
				rt.reloadCatalog()
			})
		if err != nil {
			return err
		}
		watcher.Start()
		defer func() {
			if err := watcher.Stop(); err != nil {
				rt.logger.Error("watcher shutdown failed", "error", err)
			}
		}()
		rt.logger.Info("watching catalog files", "files", len(rt.catalogPaths))
	}

	server := api.NewServer(rt.cfg.Server.Address, rt.matcher, rt.repo, rt.analyzer, rt.logger)
	return server.Run(ctx)
}
