package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"promptcrawler/internal/store"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("get job: %w", pgx.ErrNoRows), store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "extracted_prompts_source_id_fkey"}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: "23514"}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "content"}, store.ErrInvalidEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.in)
			assert.ErrorIs(t, got, tc.want)
		})
	}

	assert.NoError(t, mapError(nil))
	other := errors.New("connection refused")
	assert.Equal(t, other, mapError(other))
	serial := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(serial), mapError(serial))
}
