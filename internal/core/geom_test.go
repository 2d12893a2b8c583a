package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 4, 2)

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"top-left corner", 2, 3, true},
		{"last cell", 5, 4, true},
		{"right edge is exclusive", 6, 3, false},
		{"bottom edge is exclusive", 2, 5, false},
		{"left of rect", 1, 3, false},
		{"above rect", 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.x, tt.y))
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	assert.Equal(t, 40, r.Right())
	assert.Equal(t, 60, r.Bottom())
}
