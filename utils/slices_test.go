package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		size     int
		expected [][]int
	}{
		{
			name:     "empty slice",
			input:    []int{},
			size:     3,
			expected: nil,
		},
		{
			name:     "smaller than chunk size",
			input:    []int{1, 2},
			size:     3,
			expected: [][]int{{1, 2}},
		},
		{
			name:     "exact multiple",
			input:    []int{1, 2, 3, 4},
			size:     2,
			expected: [][]int{{1, 2}, {3, 4}},
		},
		{
			name:     "remainder in last chunk",
			input:    []int{1, 2, 3, 4, 5},
			size:     2,
			expected: [][]int{{1, 2}, {3, 4}, {5}},
		},
		{
			name:     "non-positive size returns single chunk",
			input:    []int{1, 2, 3},
			size:     0,
			expected: [][]int{{1, 2, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Chunk(tt.input, tt.size))
		})
	}
}

func TestChunkConcatenationEqualsInput(t *testing.T) {
	input := make([]int, 2500)
	for i := range input {
		input[i] = i
	}

	var got []int
	for _, chunk := range Chunk(input, 1000) {
		got = append(got, chunk...)
	}
	assert.Equal(t, input, got)
}
