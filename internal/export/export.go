// Package export writes a resolved semantic graph to an SQLite database
// for ad-hoc queries.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"semgraph/internal/diag"
	"semgraph/internal/graph"
)

const schema = `
CREATE TABLE entities (
	id        INTEGER PRIMARY KEY,
	kind      TEXT NOT NULL,
	name      TEXT NOT NULL,
	qualified TEXT NOT NULL,
	parent    INTEGER,
	access    TEXT NOT NULL,
	flags     TEXT NOT NULL,
	assembly  TEXT NOT NULL,
	file      TEXT,
	span_start INTEGER,
	span_end  INTEGER,
	origin    INTEGER
);
CREATE TABLE refs (
	owner  INTEGER NOT NULL,
	role   TEXT NOT NULL,
	ord    INTEGER NOT NULL,
	target INTEGER,
	state  TEXT NOT NULL
);
CREATE TABLE diagnostics (
	code     TEXT NOT NULL,
	severity TEXT NOT NULL,
	message  TEXT NOT NULL,
	file     TEXT,
	span_start INTEGER,
	span_end  INTEGER
);
CREATE INDEX refs_target ON refs(target);
`

// Stats counts what Write stored.
type Stats struct {
	Entities    int
	References  int
	Diagnostics int
}

// Write creates the schema in the database at path and stores every
// entity, the state of every reference and the diagnostics, in one
// transaction. The database must not exist yet or be empty.
func Write(ctx context.Context, path string, g *graph.Graph, bag *diag.Bag) (Stats, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Stats{}, fmt.Errorf("export: open %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("export: %w", err)
	}
	stats, err := write(ctx, tx, g, bag)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("export: commit: %w", err)
	}
	return stats, nil
}

func write(ctx context.Context, tx *sql.Tx, g *graph.Graph, bag *diag.Bag) (Stats, error) {
	var stats Stats
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return stats, fmt.Errorf("export: schema: %w", err)
	}
	entStmt, err := tx.PrepareContext(ctx, `INSERT INTO entities VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return stats, err
	}
	defer entStmt.Close()
	refStmt, err := tx.PrepareContext(ctx, `INSERT INTO refs VALUES (?,?,?,?,?)`)
	if err != nil {
		return stats, err
	}
	defer refStmt.Close()

	file := func(e *graph.Entity) any {
		if e.Flags&graph.FlagBuiltin != 0 {
			return nil
		}
		if f := g.Files.Get(e.Span.File); f != nil {
			return f.Path
		}
		return nil
	}
	ref := func(owner graph.EntityID, role string, ord int, r graph.Reference) error {
		if r == nil {
			return nil
		}
		id, state := r.Peek()
		var target any
		if id.IsValid() {
			target = int64(id)
		}
		if _, err := refStmt.ExecContext(ctx, int64(owner), role, ord, target, state.String()); err != nil {
			return fmt.Errorf("export: reference of %s: %w", g.QualifiedName(owner), err)
		}
		stats.References++
		return nil
	}

	for _, e := range g.Entities() {
		asm, _ := g.Strings.Lookup(e.Assembly)
		_, err := entStmt.ExecContext(ctx,
			int64(e.ID), e.Kind.String(), g.Name(e.ID), g.QualifiedName(e.ID),
			nullID(e.Parent), e.Access.String(), strings.Join(e.Flags.Strings(), ","), asm,
			file(e), int64(e.Span.Start), int64(e.Span.End), nullID(e.Origin))
		if err != nil {
			return stats, fmt.Errorf("export: entity %s: %w", g.QualifiedName(e.ID), err)
		}
		stats.Entities++

		for i, b := range e.Bases {
			if err := ref(e.ID, "base", i, b); err != nil {
				return stats, err
			}
		}
		for i, c := range e.Constraints {
			if err := ref(e.ID, "constraint", i, c); err != nil {
				return stats, err
			}
		}
		if err := ref(e.ID, "type", 0, e.Type); err != nil {
			return stats, err
		}
	}

	if bag != nil {
		for _, d := range bag.Items() {
			var path any
			if f := g.Files.Get(d.Primary.File); f != nil {
				path = f.Path
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO diagnostics VALUES (?,?,?,?,?,?)`,
				d.Code.ID(), d.Severity.Label(), d.Message, path, int64(d.Primary.Start), int64(d.Primary.End))
			if err != nil {
				return stats, fmt.Errorf("export: diagnostic: %w", err)
			}
			stats.Diagnostics++
		}
	}
	return stats, nil
}

func nullID(id graph.EntityID) any {
	if !id.IsValid() {
		return nil
	}
	return int64(id)
}
