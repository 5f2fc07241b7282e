package detect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/logger"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/scan"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

var log = logger.New("detect")

// DefaultDetectTimeout bounds a single detector invocation.
const DefaultDetectTimeout = 30 * time.Second

// ecosystemAliases maps accepted short names to canonical ecosystem
// ids. Alias resolution happens before validation, so an alias of a
// loaded ecosystem is always accepted.
var ecosystemAliases = map[string]string{
	"claude":       "claude-code",
	"claudecode":   "claude-code",
	"claude-cli":   "claude-code",
	"copilot":      "github-copilot",
	"gh-copilot":   "github-copilot",
	"codeium":      "windsurf",
	"windsurf-ide": "windsurf",
	"cursor-ide":   "cursor",
	"openai-codex": "codex",
	"gemini-cli":   "gemini",
}

// Factory builds one detector. Name is used for load-failure
// reporting when the constructor itself errors.
type Factory struct {
	Name string
	New  func() (Detector, error)
}

// Orchestrator loads the detector registry and runs detection batches.
// Load failures are captured, never raised; the only hard error the
// orchestrator produces is an invalid ecosystem filter.
type Orchestrator struct {
	detectors    map[string]Detector
	order        []string
	loadFailures []DetectorFailure
	timeout      time.Duration
}

// Option configures an Orchestrator.
type Option func(*orchestratorConfig)

type orchestratorConfig struct {
	factories []Factory
	timeout   time.Duration
}

// WithTimeout overrides the per-detector timeout. A non-positive
// duration disables the deadline and leaves the caller's context in
// charge.
func WithTimeout(d time.Duration) Option {
	return func(c *orchestratorConfig) { c.timeout = d }
}

// WithFactories replaces the builtin detector registry.
func WithFactories(factories []Factory) Option {
	return func(c *orchestratorConfig) { c.factories = factories }
}

// NewOrchestrator builds every registered detector. A factory that
// errors, returns nil, has an empty name, or duplicates a name is
// recorded as a load-error failure and skipped; loading never aborts.
func NewOrchestrator(opts ...Option) *Orchestrator {
	cfg := orchestratorConfig{
		factories: builtinFactories(),
		timeout:   DefaultDetectTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	o := &Orchestrator{
		detectors: make(map[string]Detector),
		timeout:   cfg.timeout,
	}

	for _, f := range cfg.factories {
		d, err := f.New()
		switch {
		case err != nil:
			o.recordLoadFailure(f.Name, err)
		case d == nil:
			o.recordLoadFailure(f.Name, errors.New("factory returned a nil detector"))
		case d.Name() == "":
			o.recordLoadFailure(f.Name, errors.New("detector has an empty name"))
		default:
			name := d.Name()
			if _, dup := o.detectors[name]; dup {
				o.recordLoadFailure(name, fmt.Errorf("duplicate detector name %q", name))
				continue
			}
			o.detectors[name] = d
			o.order = append(o.order, name)
		}
	}

	log.Debug("Loaded %d detectors, %d load failures", len(o.detectors), len(o.loadFailures))
	return o
}

func (o *Orchestrator) recordLoadFailure(name string, err error) {
	if name == "" {
		name = "unknown"
	}
	log.Warn("Skipping detector %s: %v", name, err)
	o.loadFailures = append(o.loadFailures, DetectorFailure{
		DetectorName: name,
		Error:        err.Error(),
		Kind:         types.FailureLoad,
	})
}

// EcosystemNames returns the loaded canonical ecosystem ids, sorted.
func (o *Orchestrator) EcosystemNames() []string {
	names := append([]string(nil), o.order...)
	sort.Strings(names)
	return names
}

// knownNames returns canonical ids plus every alias that resolves to a
// loaded detector. Suggestion corpus for the ecosystem filter.
func (o *Orchestrator) knownNames() []string {
	names := append([]string(nil), o.order...)
	for alias, canonical := range ecosystemAliases {
		if _, ok := o.detectors[canonical]; ok {
			names = append(names, alias)
		}
	}
	return names
}

// ResolveEcosystem normalizes an ecosystem filter to a loaded
// canonical id. An unknown name is a hard error carrying edit-distance
// suggestions and the full valid list.
func (o *Orchestrator) ResolveEcosystem(name string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := ecosystemAliases[needle]; ok {
		needle = canonical
	}
	if _, ok := o.detectors[needle]; ok {
		return needle, nil
	}

	valid := strings.Join(o.EcosystemNames(), ", ")
	if suggestions := Suggest(needle, o.knownNames()); len(suggestions) > 0 {
		return "", fmt.Errorf("unknown ecosystem %q, did you mean: %s? Valid ecosystems: %s",
			name, strings.Join(suggestions, ", "), valid)
	}
	return "", fmt.Errorf("unknown ecosystem %q. Valid ecosystems: %s", name, valid)
}

// DetectAll runs detection across the loaded registry. With an
// ecosystem filter only that detector runs; with a component-type
// filter each result's components are narrowed and results emptied by
// the filter are dropped. Detector failures of any kind never abort
// the batch; the returned error is reserved for an invalid ecosystem
// filter.
func (o *Orchestrator) DetectAll(ctx context.Context, ecosystemFilter, componentTypeFilter string) (map[string]DetectionResult, []DetectorFailure, error) {
	failures := append([]DetectorFailure(nil), o.loadFailures...)

	targets := o.order
	if ecosystemFilter != "" {
		name, err := o.ResolveEcosystem(ecosystemFilter)
		if err != nil {
			return nil, nil, err
		}
		targets = []string{name}
	}

	type outcome struct {
		name string
		res  DetectionResult
		err  error
	}

	outcomes := make(chan outcome, len(targets))
	var wg sync.WaitGroup
	for _, name := range targets {
		d := o.detectors[name]
		wg.Add(1)
		go func(name string, d Detector) {
			defer wg.Done()
			res, err := o.runDetector(ctx, d)
			outcomes <- outcome{name: name, res: res, err: err}
		}(name, d)
	}
	wg.Wait()
	close(outcomes)

	results := make(map[string]DetectionResult)
	for oc := range outcomes {
		if oc.err != nil {
			kind := types.FailureError
			if errors.Is(oc.err, context.DeadlineExceeded) {
				kind = types.FailureTimeout
			}
			log.Warn("Detector %s failed (%s): %v", oc.name, kind, oc.err)
			failures = append(failures, DetectorFailure{
				DetectorName: oc.name,
				Error:        oc.err.Error(),
				Kind:         kind,
			})
			scan.GetMetrics().DetectorFailures.Add(1)
			continue
		}
		if !oc.res.Found {
			continue
		}

		res := oc.res
		if componentTypeFilter != "" {
			res.Components = filterComponents(res.Components, componentTypeFilter)
			if len(res.Components) == 0 {
				continue
			}
		}
		results[oc.name] = res
	}

	return results, failures, nil
}

// runDetector races one detector against its deadline. The reply
// channel is buffered so a detector finishing after the deadline has
// its result silently discarded instead of leaking a goroutine on
// send. A panicking detector is converted into a plain error.
func (o *Orchestrator) runDetector(ctx context.Context, d Detector) (DetectionResult, error) {
	dctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	type reply struct {
		res DetectionResult
		err error
	}
	ch := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("detector panicked: %v", r)}
			}
		}()
		res, err := d.Detect(dctx)
		ch <- reply{res: res, err: err}
	}()

	select {
	case rp := <-ch:
		return rp.res, rp.err
	case <-dctx.Done():
		return DetectionResult{}, dctx.Err()
	}
}

// filterComponents narrows a component map to entries matching the
// type filter, on declared type or on the key's "type:" prefix, with
// singular/plural folding.
func filterComponents(components map[string]ComponentInfo, filter string) map[string]ComponentInfo {
	out := make(map[string]ComponentInfo)
	for key, c := range components {
		if componentMatches(key, c, filter) {
			out[key] = c
		}
	}
	return out
}

func componentMatches(key string, c ComponentInfo, filter string) bool {
	f := strings.ToLower(strings.TrimSpace(filter))
	if f == "" {
		return true
	}
	if c.Type.Matches(f) {
		return true
	}
	singular := strings.TrimSuffix(f, "s")
	k := strings.ToLower(key)
	return strings.HasPrefix(k, f+":") || strings.HasPrefix(k, singular+":")
}
