package scan

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// Selector hands out scanners with the right pattern set for a
// component. Scanners are stateless, so the selector caches one per
// set and reuses it across calls; the cache is dropped whenever the
// registry reloads.
type Selector struct {
	registry *patterns.Registry
	opts     []ScannerOption

	mu    sync.Mutex
	cache map[patterns.Set]*Scanner
}

// NewSelector creates a selector over a pattern registry. The options
// are applied to every scanner it builds.
func NewSelector(reg *patterns.Registry, opts ...ScannerOption) *Selector {
	s := &Selector{
		registry: reg,
		opts:     opts,
		cache:    make(map[patterns.Set]*Scanner),
	}
	reg.OnReload(s.invalidate)
	return s
}

// Select resolves a component type and file path to a scanner whose
// pattern set fits the component. An explicit known type wins; an
// unknown type falls back to path inference, then to the base set.
func (s *Selector) Select(componentType types.ComponentType, filePath string) *Scanner {
	return s.ForSet(KindFor(componentType, filePath))
}

// ForSet returns the cached scanner for a pattern set, building it on
// first use.
func (s *Selector) ForSet(set patterns.Set) *Scanner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.cache[set]; ok {
		return sc
	}
	sc := NewScanner(s.registry.Resolve(set), s.opts...)
	s.cache[set] = sc
	return sc
}

func (s *Selector) invalidate() {
	s.mu.Lock()
	s.cache = make(map[patterns.Set]*Scanner)
	s.mu.Unlock()
	log.Debug("Scanner cache invalidated after pattern reload")
}

// KindFor maps a component type, or failing that a file path, to a
// pattern set. Path inference checks in fixed priority order: "mcp"
// anywhere, then a hooks/ segment, then a skills/ segment, then a
// .json suffix or "config" substring. Anything else gets the base set.
func KindFor(componentType types.ComponentType, filePath string) patterns.Set {
	switch componentType {
	case types.ComponentMCPServer:
		return patterns.SetMCP
	case types.ComponentHook:
		return patterns.SetHook
	case types.ComponentSkill:
		return patterns.SetSkill
	case types.ComponentConfig:
		return patterns.SetConfig
	}

	p := strings.ToLower(filepath.ToSlash(filePath))
	switch {
	case strings.Contains(p, "mcp"):
		return patterns.SetMCP
	case strings.Contains(p, "hooks/"):
		return patterns.SetHook
	case strings.Contains(p, "skills/"):
		return patterns.SetSkill
	case strings.HasSuffix(p, ".json") || strings.Contains(p, "config"):
		return patterns.SetConfig
	}
	return patterns.SetBase
}
