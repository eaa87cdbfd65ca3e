// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/digitalhub/pkg/query"
)

func TestStringSlice(t *testing.T) {
	assert.Nil(t, query.StringSlice(""))
	assert.Nil(t, query.StringSlice("  "))
	assert.Nil(t, query.StringSlice(" , ,"))
	assert.Equal(t, []string{"sport", "culture"}, query.StringSlice(" sport ,, culture"))
}
