// Package store is the authoritative, persisted source of truth for the four
// entity collections. Each collection lives in its own JSON array file under
// the data directory, is loaded fully into memory at startup, and is rewritten
// whole (temp file + rename) after every mutation. A single lock guards every
// read-modify-write-persist cycle, so a second caller never observes memory
// and disk out of step.
package store

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aurawell/aurawell-api/internal/model"
)

const (
	usersFile    = "users.json"
	productsFile = "products.json"
	cartsFile    = "carts.json"
	ordersFile   = "orders.json"
)

//go:embed seed/users.json seed/products.json
var seedFS embed.FS

type Store struct {
	mu  sync.RWMutex
	dir string
	log *slog.Logger

	users    []model.User
	products []model.Product
	carts    []model.Cart
	orders   []model.Order
}

// Open creates the data directory if needed, seeds any missing collection
// file, and loads all four collections into memory.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{dir: dir, log: log}

	if err := s.seedIfMissing(usersFile); err != nil {
		return nil, err
	}
	if err := s.seedIfMissing(productsFile); err != nil {
		return nil, err
	}
	if err := s.seedIfMissing(cartsFile); err != nil {
		return nil, err
	}
	if err := s.seedIfMissing(ordersFile); err != nil {
		return nil, err
	}

	if err := s.loadFile(usersFile, &s.users); err != nil {
		return nil, err
	}
	if err := s.loadFile(productsFile, &s.products); err != nil {
		return nil, err
	}
	if err := s.loadFile(cartsFile, &s.carts); err != nil {
		return nil, err
	}
	if err := s.loadFile(ordersFile, &s.orders); err != nil {
		return nil, err
	}

	log.Info("store opened",
		"dir", dir,
		"users", len(s.users),
		"products", len(s.products),
		"carts", len(s.carts),
		"orders", len(s.orders),
	)
	return s, nil
}

// seedIfMissing writes the bundled default for name, or an empty array when
// no default is bundled. Existing files are left untouched.
func (s *Store) seedIfMissing(name string) error {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	data, err := seedFS.ReadFile("seed/" + name)
	if err != nil {
		data = []byte("[]")
	} else {
		s.log.Info("seeding collection from bundled defaults", "file", name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	return nil
}

func (s *Store) loadFile(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// persist rewrites one collection file atomically. Callers hold the write
// lock and must only commit the staged collection to memory after persist
// returns nil.
func (s *Store) persist(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
