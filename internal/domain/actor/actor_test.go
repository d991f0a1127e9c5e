package actor_test

import (
	"testing"

	"github.com/Strob0t/AdForge/internal/domain/actor"
)

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := actor.NewRegistry([]actor.Actor{
		{ID: "kyoto", Cluster: actor.ClusterTourism},
		{ID: "kyoto", Cluster: actor.ClusterUrban},
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestNewRegistryRejectsInvalidProfile(t *testing.T) {
	_, err := actor.NewRegistry([]actor.Actor{{ID: "kyoto"}})
	if err == nil {
		t.Fatal("expected error for missing cluster")
	}
}

func TestParseRegistry(t *testing.T) {
	data := []byte(`
actors:
  - id: kyoto
    region: kansai
    cluster: tourism-oriented
    population: 2500000
    preferences: [crafts, tea]
  - id: osaka
    region: kansai
    cluster: urban
    population: 8800000
`)
	r, err := actor.ParseRegistry(data)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 actors, got %d", r.Len())
	}

	a, ok := r.Get("kyoto")
	if !ok {
		t.Fatal("expected kyoto in registry")
	}
	if a.Cluster != actor.ClusterTourism || len(a.Preferences) != 2 {
		t.Fatalf("unexpected profile: %+v", a)
	}

	ids := r.IDs()
	if ids[0] != "kyoto" || ids[1] != "osaka" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
}

func TestEmbeddedPersonas(t *testing.T) {
	r, err := actor.LoadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 47 {
		t.Fatalf("expected 47 personas, got %d", r.Len())
	}
	tokyo, ok := r.Get("Tokyo")
	if !ok {
		t.Fatal("expected Tokyo persona")
	}
	if tokyo.Cluster != actor.ClusterUrban {
		t.Fatalf("expected tokyo in the urban cluster, got %s", tokyo.Cluster)
	}
}
