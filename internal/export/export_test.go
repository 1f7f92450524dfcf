package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"semgraph/internal/corelib"
	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/source"
)

func TestWriteStoresEntitiesAndReferences(t *testing.T) {
	g := graph.New(graph.Hints{}, nil, nil)
	if _, err := corelib.Import(g); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaCircularBaseDependency, source.Span{}, "cycle"))

	path := filepath.Join(t.TempDir(), "graph.db")
	stats, err := Write(context.Background(), path, g, bag)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if stats.Entities != g.Len() || stats.Diagnostics != 1 || stats.References == 0 {
		t.Fatalf("stats = %+v (entities in graph: %d)", stats, g.Len())
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var base string
	err = db.QueryRow(`
		SELECT t.qualified FROM entities e
		JOIN refs r ON r.owner = e.id AND r.role = 'base'
		JOIN entities t ON t.id = r.target
		WHERE e.qualified = 'System.String'`).Scan(&base)
	if err != nil {
		t.Fatalf("query base: %v", err)
	}
	if base != "System.Object" {
		t.Fatalf("String base = %s", base)
	}

	if _, err := Write(context.Background(), path, g, bag); err == nil {
		t.Fatalf("writing into an existing export must fail")
	}
}
