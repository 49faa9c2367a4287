package provider

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time capture of scopes, resource inventories and
// cost series, loadable from YAML. It backs offline evaluation passes and
// tests; a production deployment substitutes a Provider that queries the
// cloud APIs behind the same interface.
type Snapshot struct {
	Scopes    []Scope            `yaml:"scopes"`
	Resources []SnapshotResource `yaml:"resources"`
	Costs     []SnapshotCosts    `yaml:"costs"`
}

// SnapshotResource is a resource record together with its owning scope.
type SnapshotResource struct {
	// Scope matches a scope's name or id.
	Scope    string `yaml:"scope"`
	Resource `yaml:",inline"`
}

// SnapshotCosts is one scope's daily cost series.
type SnapshotCosts struct {
	Scope string      `yaml:"scope"`
	Daily []CostPoint `yaml:"daily"`
}

// SnapshotProvider serves Provider requests from an in-memory snapshot.
type SnapshotProvider struct {
	snapshot *Snapshot
}

// NewSnapshotProvider wraps a snapshot. The snapshot must not be mutated
// afterwards.
func NewSnapshotProvider(snapshot *Snapshot) *SnapshotProvider {
	return &SnapshotProvider{snapshot: snapshot}
}

// LoadSnapshotFile reads a snapshot from a YAML file.
func LoadSnapshotFile(path string) (*SnapshotProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", path, err)
	}
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %q: %w", path, err)
	}
	return NewSnapshotProvider(&snapshot), nil
}

// ListScopes returns the snapshot's scopes of the given kind, in
// declaration order.
func (p *SnapshotProvider) ListScopes(ctx context.Context, kind string) ([]Scope, error) {
	var scopes []Scope
	for _, s := range p.snapshot.Scopes {
		if s.Kind == kind {
			scopes = append(scopes, s)
		}
	}
	return scopes, nil
}

// ListResources returns the scope's resources of the given type, in
// declaration order. The fields projection is accepted but not applied:
// a snapshot already carries only the captured fields.
func (p *SnapshotProvider) ListResources(ctx context.Context, scope Scope, resourceType string, fields []string) ([]Resource, error) {
	var resources []Resource
	for _, r := range p.snapshot.Resources {
		if r.Type == resourceType && (r.Scope == scope.Name || r.Scope == scope.ID) {
			resources = append(resources, r.Resource)
		}
	}
	return resources, nil
}

// CostSeries returns the scope's daily amounts within the window, ordered
// by date. A scope with no cost entry at all is unavailable data, not an
// empty series.
func (p *SnapshotProvider) CostSeries(ctx context.Context, scope Scope, window Window) ([]CostPoint, error) {
	for _, c := range p.snapshot.Costs {
		if c.Scope != scope.Name && c.Scope != scope.ID {
			continue
		}
		var series []CostPoint
		start := window.Start.Format("2006-01-02")
		end := window.End.Format("2006-01-02")
		for _, point := range c.Daily {
			if point.Date >= start && point.Date <= end {
				series = append(series, point)
			}
		}
		sort.SliceStable(series, func(i, j int) bool { return series[i].Date < series[j].Date })
		return series, nil
	}
	return nil, &UnavailableError{Scope: scope.Name, What: "no cost series in snapshot"}
}
