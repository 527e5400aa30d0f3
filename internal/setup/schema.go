package setup

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/schema"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

const (
	TableCreated = "created"
	TableExists  = "exists"
)

type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TableOutcome reports what EnsureSchema did for one table.
type TableOutcome struct {
	Table  string `json:"table"`
	Status string `json:"status"`
}

type SchemaReport struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Tables  []TableOutcome `json:"tables"`
}

// EnsureSchema creates every missing table in dependency order. A table is
// considered present when a zero-row probe against it succeeds.
func (s *Service) EnsureSchema(ctx context.Context) (*SchemaReport, error) {
	for _, ext := range s.dialect.Extensions {
		if _, err := s.sql.ExecContext(ctx, ext); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enable extension")
		}
	}

	report := &SchemaReport{Tables: make([]TableOutcome, 0, len(s.dialect.Tables))}
	created := 0
	for _, table := range s.dialect.Tables {
		if s.tableExists(ctx, table.Name) {
			report.Tables = append(report.Tables, TableOutcome{Table: table.Name, Status: TableExists})
			continue
		}
		if _, err := s.sql.ExecContext(ctx, table.DDL); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("create table %s", table.Name))
		}
		created++
		report.Tables = append(report.Tables, TableOutcome{Table: table.Name, Status: TableCreated})
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "table", table.Name), "setup.table_created")
		}
	}

	report.Success = true
	report.Message = fmt.Sprintf("Database setup completed: %d created, %d already existed", created, len(s.dialect.Tables)-created)
	return report, nil
}

func (s *Service) tableExists(ctx context.Context, table string) bool {
	rows, err := s.sql.QueryContext(ctx, probeQuery(table))
	if err != nil {
		return false
	}
	_ = rows.Close()
	return true
}

func probeQuery(table string) string {
	return fmt.Sprintf("SELECT 1 FROM %s LIMIT 0", table)
}

// Dialect exposes the statements the service runs.
func (s *Service) Dialect() schema.Dialect {
	return s.dialect
}
