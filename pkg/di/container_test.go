package di

import (
	"testing"

	"github.com/clydefs/clydefs/pkg/config"
)

func TestNewContainerBuildsMemoryBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if c.Tree() == nil {
		t.Fatal("expected a wired tree interface")
	}

	tid, err := c.Tree().TreeCreate(config.K)
	if err != nil {
		t.Fatalf("TreeCreate: %v", err)
	}
	if tid == 0 {
		t.Fatal("expected a non-zero tid")
	}
}

func TestNewContainerBuildsPaylogBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendPaylog
	cfg.DataDir = t.TempDir()

	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	tid, err := c.Tree().TreeCreate(config.K)
	if err != nil {
		t.Fatalf("TreeCreate: %v", err)
	}
	nid, err := c.Tree().NodeInsert(tid)
	if err != nil {
		t.Fatalf("NodeInsert: %v", err)
	}
	if err := c.Tree().NodeWrite(tid, nid, 0, 5, []byte("hello")); err != nil {
		t.Fatalf("NodeWrite: %v", err)
	}
}

func TestNewContainerRejectsUnbuildableBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendPebble
	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected an error for a backend the default factory can't build")
	}
}

func TestContainerServerConfigProjectsFields(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Port = 9999
	cfg.Bind = "0.0.0.0"
	cfg.Security.APIKey = "secret"

	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	sc := c.ServerConfig()
	if sc.Port != 9999 || sc.Bind != "0.0.0.0" || sc.APIKey != "secret" {
		t.Fatalf("unexpected ServerConfig: %+v", sc)
	}
}
