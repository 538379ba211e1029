package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	last := Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, last.Items)

	beyond := Paginate(items, 9, 2)
	assert.Equal(t, []int{}, beyond.Items)

	defaults := Paginate(items, 0, 0)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 20, defaults.PageSize)
}

func TestPaginateHugePageDoesNotOverflow(t *testing.T) {
	items := []int{1, 2, 3}

	page := Paginate(items, math.MaxInt/20+1, 20)
	assert.Equal(t, []int{}, page.Items)
	assert.Equal(t, 1, page.TotalPages)

	page = Paginate(items, math.MaxInt, math.MaxInt)
	assert.Equal(t, []int{}, page.Items)
	assert.Equal(t, 1, page.TotalPages)

	first := Paginate(items, 1, math.MaxInt)
	assert.Equal(t, []int{1, 2, 3}, first.Items)
}
