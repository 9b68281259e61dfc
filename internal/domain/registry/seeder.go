package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/shared/utils"
)

// Definition file patterns recognized by the seeder.
var definitionPatterns = []string{"*.embed.json", "*.embed.yaml", "*.embed.yml"}

// Seeder loads provider definitions from a directory tree.
type Seeder struct {
	manager *Manager
	dir     string
	log     *logging.Logger
}

// NewSeeder creates a seeder loading from dir into manager.
func NewSeeder(manager *Manager, dir string, log *logging.Logger) *Seeder {
	if log == nil {
		log = logging.NewNop()
	}
	return &Seeder{
		manager: manager,
		dir:     dir,
		log:     log,
	}
}

// Seed walks the definitions directory and registers every definition
// file found. A file that fails to parse is logged and skipped; one
// broken definition never blocks the rest.
func (s *Seeder) Seed() error {
	defs, err := s.collect()
	if err != nil {
		return err
	}

	var loaded, failed int
	for _, def := range defs {
		if err := s.manager.Register(def); err != nil {
			s.log.Warn("definition rejected",
				zap.String("name", def.Name),
				zap.Error(err))
			failed++
			continue
		}
		loaded++
	}

	s.log.Info("definitions seeded",
		zap.String("dir", s.dir),
		zap.Int("loaded", loaded),
		zap.Int("failed", failed))
	return nil
}

// Reseed rebuilds the full definition set from disk and swaps it in
// atomically, so deleted files drop their definitions too.
func (s *Seeder) Reseed() error {
	defs, err := s.collect()
	if err != nil {
		return err
	}
	valid := defs[:0]
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			s.log.Warn("definition rejected on reload",
				zap.String("name", def.Name),
				zap.Error(err))
			continue
		}
		valid = append(valid, def)
	}
	if err := s.manager.ReplaceAll(valid); err != nil {
		return err
	}
	s.log.Info("definitions reloaded",
		zap.String("dir", s.dir),
		zap.Int("count", len(valid)))
	return nil
}

// collect walks the directory and parses every definition file.
func (s *Seeder) collect() ([]*Definition, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.log.Warn("definitions directory not found", zap.String("dir", s.dir))
		return nil, nil
	}

	var (
		mu   sync.Mutex
		defs []*Definition
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !matchesDefinitionFile(filepath.Base(p)) {
			return nil
		}

		def, perr := s.loadFile(p)
		if perr != nil {
			s.log.Warn("definition file skipped",
				zap.String("path", p),
				zap.Error(perr))
			return nil
		}

		mu.Lock()
		defs = append(defs, def)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk definitions dir: %w", err)
	}
	return defs, nil
}

// loadFile parses one definition file by extension.
func (s *Seeder) loadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > utils.MaxDefinitionSize {
		return nil, fmt.Errorf("definition file exceeds %d bytes", utils.MaxDefinitionSize)
	}

	var def Definition
	if strings.HasSuffix(path, ".json") {
		if err := sonic.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	// Files may omit the name; fall back to the file stem.
	if def.Name == "" {
		base := filepath.Base(path)
		def.Name = strings.SplitN(base, ".", 2)[0]
	}
	return &def, nil
}

func matchesDefinitionFile(name string) bool {
	for _, pattern := range definitionPatterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
