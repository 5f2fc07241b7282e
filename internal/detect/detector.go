package detect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// ComponentInfo is one unit of installed tool surface: a config file,
// a hook or skill directory entry, an MCP server definition file, an
// executable on PATH.
type ComponentInfo struct {
	Name string              `json:"name"`
	Path string              `json:"path"`
	Type types.ComponentType `json:"type,omitempty"`
}

// DetectionResult is one detector invocation's outcome. Found is
// always derived from the component count.
type DetectionResult struct {
	Ecosystem  string                   `json:"ecosystem"`
	Found      bool                     `json:"found"`
	Components map[string]ComponentInfo `json:"components"`
	ScanPaths  []string                 `json:"scan_paths,omitempty"`
}

// DetectorFailure records one detector that produced no result.
type DetectorFailure struct {
	DetectorName string            `json:"detector_name"`
	Error        string            `json:"error"`
	Kind         types.FailureKind `json:"kind"`
}

// Detector is the capability contract for one ecosystem. Detect must
// respect ctx cancellation; a detector that ignores its deadline keeps
// running after the orchestrator has given up on it.
type Detector interface {
	Name() string
	Paths() []string
	CheckPATH() []ComponentInfo
	Detect(ctx context.Context) (DetectionResult, error)
}

// probe declares one install-convention location to check, relative to
// the home directory. With children set, the directory's entries each
// become a component keyed "<key>:<entry>"; otherwise the path itself
// becomes the component under key directly.
type probe struct {
	key         string
	typ         types.ComponentType
	rel         string
	children    bool
	childPrefix string
}

// toolSpec declares one ecosystem's install conventions.
type toolSpec struct {
	name     string
	binaries []string
	roots    []string
	probes   []probe
}

// toolDetector is the shared detector implementation: stat the declared
// home-relative locations, enumerate component directories, and check
// PATH for the tool's binaries. Home and lookPath are injectable so
// tests never touch the real home directory.
type toolDetector struct {
	spec     toolSpec
	home     string
	lookPath func(string) (string, error)
}

type detectorOption func(*toolDetector)

func withHome(home string) detectorOption {
	return func(d *toolDetector) { d.home = home }
}

func withLookPath(fn func(string) (string, error)) detectorOption {
	return func(d *toolDetector) { d.lookPath = fn }
}

func newHomeDetector(spec toolSpec, opts ...detectorOption) (Detector, error) {
	d := &toolDetector{spec: spec, lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(d)
	}
	if d.home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		d.home = home
	}
	return d, nil
}

func (d *toolDetector) Name() string {
	return d.spec.name
}

// Paths returns the candidate install roots. Introspection only; the
// scan targets come from detected components.
func (d *toolDetector) Paths() []string {
	paths := make([]string, 0, len(d.spec.roots))
	for _, root := range d.spec.roots {
		paths = append(paths, filepath.Join(d.home, root))
	}
	return paths
}

// CheckPATH reports the declared binaries that resolve on PATH.
func (d *toolDetector) CheckPATH() []ComponentInfo {
	var out []ComponentInfo
	for _, bin := range d.spec.binaries {
		path, err := d.lookPath(bin)
		if err != nil {
			continue
		}
		out = append(out, ComponentInfo{
			Name: bin,
			Path: path,
			Type: types.ComponentExecutable,
		})
	}
	return out
}

// Detect stats every probe location and enumerates component
// directories. Pure filesystem reads; a missing location is simply
// absent from the result, never an error.
func (d *toolDetector) Detect(ctx context.Context) (DetectionResult, error) {
	res := DetectionResult{
		Ecosystem:  d.spec.name,
		Components: make(map[string]ComponentInfo),
	}

	for _, p := range d.spec.probes {
		select {
		case <-ctx.Done():
			return DetectionResult{}, ctx.Err()
		default:
		}

		path := filepath.Join(d.home, p.rel)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if p.children && info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, e := range entries {
				name := e.Name()
				if strings.HasPrefix(name, ".") {
					continue
				}
				if p.childPrefix != "" && !strings.HasPrefix(strings.ToLower(name), p.childPrefix) {
					continue
				}
				res.Components[p.key+":"+name] = ComponentInfo{
					Name: name,
					Path: filepath.Join(path, name),
					Type: p.typ,
				}
			}
			continue
		}

		res.Components[p.key] = ComponentInfo{
			Name: filepath.Base(path),
			Path: path,
			Type: p.typ,
		}
	}

	for _, c := range d.CheckPATH() {
		res.Components["executable:"+c.Name] = c
	}

	for _, root := range d.Paths() {
		if _, err := os.Stat(root); err == nil {
			res.ScanPaths = append(res.ScanPaths, root)
		}
	}

	res.Found = len(res.Components) > 0
	return res, nil
}
