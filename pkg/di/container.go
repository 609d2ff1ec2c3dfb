// Package di provides the dependency injection container wiring a
// clydefs backend (pkg/config's Backend selection) to the debug API
// server (pkg/api).
package di

import (
	"fmt"
	"path/filepath"

	"github.com/clydefs/clydefs/pkg/api" //nolint:depguard
	"github.com/clydefs/clydefs/pkg/config"
	"github.com/clydefs/clydefs/pkg/paylog"
	"github.com/clydefs/clydefs/pkg/treeiface"
)

// TreeFactory builds the tree-interface implementation a Container
// exposes, letting tests substitute a smaller in-memory pool without
// touching Container's public surface.
type TreeFactory interface {
	Build(cfg *config.Config) (treeiface.Interface, error)
}

// defaultTreeFactory builds the backend pkg/config.Config.Backend
// selects. It builds BackendMemory and BackendPaylog; any other
// backend, BackendPebble included, is an error here and has to be
// supplied via SetTree (no pebble-backed treeiface.Interface exists
// in this module).
type defaultTreeFactory struct{}

func (defaultTreeFactory) Build(cfg *config.Config) (treeiface.Interface, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return treeiface.NewMemoryTree(), nil
	case config.BackendPaylog:
		store, err := paylog.Open(filepath.Join(cfg.DataDir, "payloads.log"), config.PayloadCapacity, config.PayloadPoolSlots)
		if err != nil {
			return nil, fmt.Errorf("open payload log: %w", err)
		}
		return treeiface.NewMemoryTreeWithCapacity(store), nil
	default:
		return nil, fmt.Errorf("backend %q requires an externally constructed tree; pass it via SetTree", cfg.Backend)
	}
}

// Container holds the dependencies wired together for a running
// clydefs debug server: the tree-interface implementation and the
// configuration it was built from.
type Container struct {
	treeFactory TreeFactory
	tree        treeiface.Interface
	config      *config.Config
}

// NewContainer creates a dependency injection container for cfg,
// eagerly building the tree-interface implementation cfg.Backend
// selects.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{treeFactory: defaultTreeFactory{}, config: cfg}
	tree, err := c.treeFactory.Build(cfg)
	if err != nil {
		return nil, err
	}
	c.tree = tree
	return c, nil
}

// Tree returns the wired tree-interface implementation.
func (c *Container) Tree() treeiface.Interface {
	return c.tree
}

// SetTree overrides the wired tree-interface implementation, for
// backends defaultTreeFactory can't build on its own (e.g. pebble)
// or for tests that want a deterministic in-memory pool size.
func (c *Container) SetTree(tree treeiface.Interface) {
	c.tree = tree
}

// SetTreeFactory overrides the factory used to build the tree
// interface, for tests.
func (c *Container) SetTreeFactory(f TreeFactory) {
	c.treeFactory = f
}

// ServerConfig projects the container's config into the shape
// pkg/api.StartServer expects.
func (c *Container) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Port:   c.config.Port,
		Bind:   c.config.Bind,
		APIKey: c.config.Security.APIKey,
	}
}

// StartServer starts the debug API server against the container's
// wired tree. It blocks until the listener fails.
func (c *Container) StartServer() error {
	return api.StartServer(c.tree, c.ServerConfig())
}
