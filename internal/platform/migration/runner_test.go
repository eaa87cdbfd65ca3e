// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/digitalhub/internal/platform/migration"
)

func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://hub:pw@db:5432/hub", "pgx5://hub:pw@db:5432/hub"},
		{"postgresql://hub@db/hub?sslmode=disable", "pgx5://hub@db/hub?sslmode=disable"},
		{"pgx5://hub@db/hub", "pgx5://hub@db/hub"},
		{"host=db user=hub", "host=db user=hub"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
	}
}
