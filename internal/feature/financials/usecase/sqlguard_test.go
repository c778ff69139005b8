package usecase

import (
	"errors"
	"testing"

	"finqa_backend/internal/feature/financials/domain"
)

func TestValidateReadOnlyQuery(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{
			name:    "success: simple select",
			query:   "SELECT * FROM financials",
			wantErr: false,
		},
		{
			name:    "success: select with where and trailing semicolon",
			query:   "SELECT company, revenue FROM financials WHERE fiscal_year = 2023;",
			wantErr: false,
		},
		{
			name:    "success: lowercase select with aggregate",
			query:   "select company, avg(revenue) from financials group by company",
			wantErr: false,
		},
		{
			name:    "success: quoted table reference",
			query:   `SELECT * FROM "financials" WHERE net_income < 0`,
			wantErr: false,
		},
		{
			name:    "success: subquery over the same table",
			query:   "SELECT company FROM (SELECT company, revenue FROM financials) ORDER BY revenue DESC",
			wantErr: false,
		},
		{
			name:    "error: empty query",
			query:   "   ",
			wantErr: true,
		},
		{
			name:    "error: drop table",
			query:   "DROP TABLE financials",
			wantErr: true,
		},
		{
			name:    "error: delete statement",
			query:   "DELETE FROM financials WHERE company = 'Alpha Corp'",
			wantErr: true,
		},
		{
			name:    "error: update statement",
			query:   "UPDATE financials SET revenue = 0",
			wantErr: true,
		},
		{
			name:    "error: multiple statements",
			query:   "SELECT * FROM financials; DROP TABLE financials",
			wantErr: true,
		},
		{
			name:    "error: select hiding a forbidden keyword",
			query:   "SELECT * FROM financials WHERE company = 'x'; DELETE FROM financials",
			wantErr: true,
		},
		{
			name:    "error: does not start with select",
			query:   "WITH t AS (SELECT * FROM financials) SELECT * FROM t",
			wantErr: true,
		},
		{
			name:    "error: pragma",
			query:   "SELECT * FROM financials WHERE 1=1 PRAGMA table_info(financials)",
			wantErr: true,
		},
		{
			name:    "error: foreign table reference",
			query:   "SELECT * FROM users",
			wantErr: true,
		},
		{
			name:    "error: join against a foreign table",
			query:   "SELECT * FROM financials JOIN secrets ON 1=1",
			wantErr: true,
		},
		{
			name:    "error: sqlite schema table",
			query:   "SELECT name FROM sqlite_master",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateReadOnlyQuery(tc.query)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrUnsafeQuery) {
					t.Fatalf("expected ErrUnsafeQuery, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
