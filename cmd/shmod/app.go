// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"shmod-cli/internal/config"
	"shmod-cli/internal/host"
	"shmod-cli/internal/resolve"

	"github.com/charmbracelet/log"
)

// App wires the interpreter host and the module resolver. It is the
// composition root for the CLI layer: command handlers build one App per
// invocation and drive everything through it.
type App struct {
	Host     *host.Host
	Resolver *resolve.Resolver
	Config   *config.Config
}

// newApp assembles a Host and Resolver from the loaded configuration.
// The host runs imported units; the resolver feeds the host's import
// directives. That mutual dependency is resolved here, at the edge.
func newApp() (*App, error) {
	cfg := loadConfigOrDefault()

	cacheDir, err := resolve.CacheDir(cfg.ModulesPath.String())
	if err != nil {
		return nil, fmt.Errorf("locating module cache: %w", err)
	}

	h, err := host.New(host.Options{Logger: log.Default()})
	if err != nil {
		return nil, err
	}

	var fetchOpts []resolve.FetcherOption
	if cfg.Registry.URLTemplate != "" {
		fetchOpts = append(fetchOpts, resolve.WithURLTemplate(cfg.Registry.URLTemplate.String()))
	}

	res, err := resolve.New(resolve.Options{
		CacheDir: cacheDir,
		Runner:   h,
		Fetcher:  resolve.NewFetcher(fetchOpts...),
		Logger:   log.Default(),
	})
	if err != nil {
		return nil, err
	}
	h.SetImporter(res)

	return &App{Host: h, Resolver: res, Config: cfg}, nil
}

// loadConfigOrDefault loads configuration, falling back to defaults with
// a warning. Handlers stay operational on a broken config file; the
// warning was already printed once during initRootConfig.
func loadConfigOrDefault() *config.Config {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// cacheDirFromConfig resolves the module cache root for commands that
// inspect the cache without building a full App.
func cacheDirFromConfig() (string, error) {
	cfg := loadConfigOrDefault()
	dir, err := resolve.CacheDir(cfg.ModulesPath.String())
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
	}
	return dir, err
}
