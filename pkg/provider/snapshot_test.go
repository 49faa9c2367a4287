package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixtureSnapshot() *Snapshot {
	return &Snapshot{
		Scopes: []Scope{
			{ID: "ocid1.a", Name: "prod-a", Kind: "compartment"},
			{ID: "ocid1.b", Name: "dev-b", Kind: "compartment"},
			{ID: "ocid1.t", Name: "team-x", Kind: "tenancy"},
		},
		Resources: []SnapshotResource{
			{Scope: "prod-a", Resource: Resource{
				DisplayName: "adb-1", ID: "ocid1.adb.1", Type: "autonomous_database",
			}},
			{Scope: "ocid1.a", Resource: Resource{
				DisplayName: "adb-2", ID: "ocid1.adb.2", Type: "autonomous_database",
			}},
			{Scope: "prod-a", Resource: Resource{
				DisplayName: "vm-1", ID: "ocid1.vm.1", Type: "compute_instance",
			}},
		},
		Costs: []SnapshotCosts{
			{Scope: "prod-a", Daily: []CostPoint{
				{Date: "2026-08-03", AmountUSD: 55},
				{Date: "2026-08-01", AmountUSD: 50},
				{Date: "2026-08-02", AmountUSD: 60},
				{Date: "2026-07-31", AmountUSD: 99},
			}},
		},
	}
}

func TestSnapshotProvider_ListScopes(t *testing.T) {
	p := NewSnapshotProvider(fixtureSnapshot())

	compartments, err := p.ListScopes(context.Background(), "compartment")
	if err != nil {
		t.Fatalf("ListScopes() failed: %v", err)
	}
	if len(compartments) != 2 || compartments[0].Name != "prod-a" || compartments[1].Name != "dev-b" {
		t.Errorf("ListScopes(compartment) = %v, want [prod-a dev-b] in order", compartments)
	}

	none, err := p.ListScopes(context.Background(), "region")
	if err != nil {
		t.Fatalf("ListScopes() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListScopes(region) = %v, want empty", none)
	}
}

func TestSnapshotProvider_ListResources(t *testing.T) {
	p := NewSnapshotProvider(fixtureSnapshot())
	scope := Scope{ID: "ocid1.a", Name: "prod-a", Kind: "compartment"}

	dbs, err := p.ListResources(context.Background(), scope, "autonomous_database", nil)
	if err != nil {
		t.Fatalf("ListResources() failed: %v", err)
	}
	// Resources match on scope name or id; both adb records belong here.
	if len(dbs) != 2 || dbs[0].DisplayName != "adb-1" || dbs[1].DisplayName != "adb-2" {
		t.Errorf("ListResources() = %v, want [adb-1 adb-2]", dbs)
	}

	vms, err := p.ListResources(context.Background(), scope, "compute_instance", nil)
	if err != nil {
		t.Fatalf("ListResources() failed: %v", err)
	}
	if len(vms) != 1 {
		t.Errorf("compute instances = %d, want 1", len(vms))
	}
}

func TestSnapshotProvider_CostSeries(t *testing.T) {
	p := NewSnapshotProvider(fixtureSnapshot())
	scope := Scope{ID: "ocid1.a", Name: "prod-a"}
	window := Window{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	}

	series, err := p.CostSeries(context.Background(), scope, window)
	if err != nil {
		t.Fatalf("CostSeries() failed: %v", err)
	}
	// July 31 falls outside the window; the rest sort by date.
	want := []CostPoint{
		{Date: "2026-08-01", AmountUSD: 50},
		{Date: "2026-08-02", AmountUSD: 60},
		{Date: "2026-08-03", AmountUSD: 55},
	}
	if len(series) != len(want) {
		t.Fatalf("CostSeries() = %v, want %v", series, want)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestSnapshotProvider_CostSeriesUnavailable(t *testing.T) {
	p := NewSnapshotProvider(fixtureSnapshot())
	scope := Scope{ID: "ocid1.b", Name: "dev-b"}
	window := Window{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	}

	_, err := p.CostSeries(context.Background(), scope, window)
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("CostSeries() error = %v, want *UnavailableError", err)
	}
	if unavailable.Scope != "dev-b" {
		t.Errorf("UnavailableError.Scope = %q, want dev-b", unavailable.Scope)
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.yaml")
	content := `
scopes:
  - id: ocid1.p
    name: prod
    kind: compartment
resources:
  - scope: prod
    display_name: adb-main
    id: ocid1.adb.9
    type: autonomous_database
    attributes:
      license_model: BRING_YOUR_OWN_LICENSE
    tags:
      env: prod
costs:
  - scope: prod
    daily:
      - date: "2026-08-01"
        amount_usd: 12.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadSnapshotFile(path)
	if err != nil {
		t.Fatalf("LoadSnapshotFile() failed: %v", err)
	}
	resources, err := p.ListResources(context.Background(), Scope{Name: "prod"}, "autonomous_database", nil)
	if err != nil {
		t.Fatalf("ListResources() failed: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("resources = %d, want 1", len(resources))
	}
	r := resources[0]
	if r.Attributes["license_model"] != "BRING_YOUR_OWN_LICENSE" {
		t.Errorf("license_model = %v, want BRING_YOUR_OWN_LICENSE", r.Attributes["license_model"])
	}
	if r.Tags["env"] != "prod" {
		t.Errorf("tags = %v, want env=prod", r.Tags)
	}
}

func TestLoadSnapshotFile_Errors(t *testing.T) {
	if _, err := LoadSnapshotFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadSnapshotFile(missing) succeeded, want error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("scopes: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshotFile(bad); err == nil {
		t.Error("LoadSnapshotFile(malformed) succeeded, want error")
	}
}
