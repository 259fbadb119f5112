package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationClampsPage(t *testing.T) {
	p := NewPagination(5, 10, 23)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	start, end := p.Bounds()
	assert.Equal(t, 20, start)
	assert.Equal(t, 23, end)

	empty := NewPagination(0, 10, 0)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.TotalPages)
	start, end = empty.Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
