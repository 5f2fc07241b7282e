package patterns

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/logger"
)

var log = logger.New("patterns")

// Registry holds the ordered indicator catalog: the shared base set plus
// per-component-type extension sets. Builtin patterns are immutable after
// init; the user overlay can be hot-reloaded. Patterns are compiled at
// insert, never during matching, and appended in catalog order; the
// registry never removes or reorders entries within a load.
type Registry struct {
	mu sync.RWMutex

	// Immutable after init (unless DisableBuiltin)
	builtin map[Set][]Compiled

	// Can be hot-reloaded
	user map[Set][]Compiled

	// Builtin followed by user, rebuilt on reload
	merged map[Set][]Compiled

	loader *Loader
	config RegistryConfig

	onReloadCallbacks []ReloadCallback
}

// RegistryConfig holds registry configuration.
type RegistryConfig struct {
	UserPatternsDir string
	DisableBuiltin  bool
}

// ReloadCallback is called after the user overlay is reloaded.
type ReloadCallback func()

// NewRegistry creates a registry, loading builtin catalogs and the user
// overlay. A builtin load failure is fatal; user overlay problems are
// warned about and skipped.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	r := &Registry{
		builtin: make(map[Set][]Compiled),
		user:    make(map[Set][]Compiled),
		merged:  make(map[Set][]Compiled),
		loader:  NewLoader(cfg.UserPatternsDir),
		config:  cfg,
	}

	if !cfg.DisableBuiltin {
		catalogs, err := r.loader.LoadBuiltin()
		if err != nil {
			return nil, err
		}

		ids := make(map[string]string)
		for _, fc := range catalogs {
			if err := r.insertCatalog(r.builtin, fc, ids); err != nil {
				return nil, err
			}
		}
		log.Info("Loaded %d builtin patterns across %d sets", countPatterns(r.builtin), len(r.builtin))
	} else {
		log.Warn("Builtin patterns disabled")
	}

	if err := r.ReloadUser(); err != nil {
		log.Warn("Failed to load user patterns: %v", err)
	}

	return r, nil
}

// NewTestRegistry creates a registry from in-memory definitions,
// bypassing catalog files. Convenience for tests.
func NewTestRegistry(defs map[Set][]Definition) (*Registry, error) {
	r := &Registry{
		builtin: make(map[Set][]Compiled),
		user:    make(map[Set][]Compiled),
		merged:  make(map[Set][]Compiled),
		loader:  NewLoader(""),
		config:  RegistryConfig{DisableBuiltin: true},
	}

	ids := make(map[string]string)
	for _, set := range ValidSets {
		if len(defs[set]) == 0 {
			continue
		}
		fc := FileCatalog{Path: "test", Set: set, Patterns: defs[set]}
		if err := r.insertCatalog(r.builtin, fc, ids); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.rebuildMergedLocked()
	r.mu.Unlock()

	return r, nil
}

// ReloadUser reloads the user overlay and rebuilds the merged catalog.
// A user file whose patterns fail to compile or collide with existing
// ids is skipped whole, so one bad file cannot shadow the rest.
func (r *Registry) ReloadUser() error {
	catalogs, err := r.loader.LoadUser()
	if err != nil {
		return err
	}

	user := make(map[Set][]Compiled)

	ids := make(map[string]string)
	r.mu.RLock()
	for set, list := range r.builtin {
		for _, c := range list {
			ids[c.ID] = string(set)
		}
	}
	r.mu.RUnlock()

	for _, fc := range catalogs {
		if err := r.insertCatalog(user, fc, ids); err != nil {
			log.Warn("Skipping pattern file %s: %v", fc.Path, err)
			continue
		}
	}

	r.mu.Lock()
	r.user = user
	r.rebuildMergedLocked()
	total := countPatterns(r.merged)
	r.mu.Unlock()

	if n := countPatterns(user); n > 0 {
		log.Info("Loaded %d user patterns, total %d active patterns", n, total)
	}

	r.notifyReload()
	return nil
}

// insertCatalog compiles and appends one file's patterns into dst.
// All-or-nothing per file: any compile or id collision rejects the file.
func (r *Registry) insertCatalog(dst map[Set][]Compiled, fc FileCatalog, ids map[string]string) error {
	compiled := make([]Compiled, 0, len(fc.Patterns))
	for _, def := range fc.Patterns {
		if prev, taken := ids[def.ID]; taken {
			return fmt.Errorf("pattern id %q already defined in set %s", def.ID, prev)
		}
		c, err := compileDefinition(def)
		if err != nil {
			return err
		}
		compiled = append(compiled, c)
	}

	for _, c := range compiled {
		ids[c.ID] = string(fc.Set)
	}
	dst[fc.Set] = append(dst[fc.Set], compiled...)
	return nil
}

// compileDefinition validates and compiles a single definition.
func compileDefinition(def Definition) (Compiled, error) {
	if err := CheckExpression(def.Pattern); err != nil {
		return Compiled{}, fmt.Errorf("pattern %q: %w", def.ID, err)
	}

	re, err := regexp.Compile(def.Pattern)
	if err != nil {
		return Compiled{}, fmt.Errorf("pattern %q: invalid regexp: %w", def.ID, err)
	}

	return Compiled{Definition: def, Regexp: re}, nil
}

// rebuildMergedLocked recomputes builtin+user per set. Caller holds mu.
func (r *Registry) rebuildMergedLocked() {
	merged := make(map[Set][]Compiled)
	for _, set := range ValidSets {
		b, u := r.builtin[set], r.user[set]
		if len(b) == 0 && len(u) == 0 {
			continue
		}
		list := make([]Compiled, 0, len(b)+len(u))
		list = append(list, b...)
		list = append(list, u...)
		merged[set] = list
	}
	r.merged = merged
}

// Resolve returns the active pattern list for a scanner kind: the base
// set followed by the kind's extension set, in registration order. The
// returned slice is owned by the caller; the shared Compiled entries
// are read-only.
func (r *Registry) Resolve(set Set) []Compiled {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := r.merged[SetBase]
	if set == SetBase {
		return append([]Compiled(nil), base...)
	}

	ext := r.merged[set]
	list := make([]Compiled, 0, len(base)+len(ext))
	list = append(list, base...)
	list = append(list, ext...)
	return list
}

// Extension returns only the extension patterns for a set.
func (r *Registry) Extension(set Set) []Compiled {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Compiled(nil), r.merged[set]...)
}

// Count returns the total number of active patterns across all sets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return countPatterns(r.merged)
}

// Loader returns the catalog loader.
func (r *Registry) Loader() *Loader {
	return r.loader
}

// OnReload registers a callback invoked after each user overlay reload.
func (r *Registry) OnReload(cb ReloadCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReloadCallbacks = append(r.onReloadCallbacks, cb)
}

func (r *Registry) notifyReload() {
	r.mu.RLock()
	callbacks := append([]ReloadCallback(nil), r.onReloadCallbacks...)
	r.mu.RUnlock()

	for _, cb := range callbacks {
		cb()
	}
}

func countPatterns(m map[Set][]Compiled) int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}
