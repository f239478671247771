package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"asthma-pipeline/internal/grid"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// WriteSQLite replaces table with the contents of g, one TEXT column per grid column.
func WriteSQLite(ctx context.Context, db *sql.DB, table string, g grid.Grid) error {
	if g.Width() == 0 {
		return fmt.Errorf("cannot store a grid without columns")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf("drop table if exists %s", quoteIdent(table)))
	if err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	header := g.Header()
	columns := make([]string, len(header))
	placeholders := make([]string, len(header))
	for i, name := range header {
		columns[i] = quoteIdent(name) + " text"
		placeholders[i] = "?"
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		"create table %s (%s)",
		quoteIdent(table), strings.Join(columns, ", "),
	))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	insert := fmt.Sprintf(
		"insert into %s values (%s)",
		quoteIdent(table), strings.Join(placeholders, ", "),
	)
	for r, n := 0, g.Len(); r < n; r++ {
		row := g.Row(r)
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		_, err = tx.ExecContext(ctx, insert, args...)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", r, err)
		}
	}

	return tx.Commit()
}
