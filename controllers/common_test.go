package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		page, size         string
		wantPage, wantSize int
	}{
		{"", "", 0, 10},
		{"2", "25", 2, 25},
		{"-1", "0", 0, 10},
		{"abc", "xyz", 0, 10},
		{"0", "100", 0, 100},
		{"0", "101", 0, 10},
	}
	for _, tc := range cases {
		page, size := parsePagination(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, page, "page %q size %q", tc.page, tc.size)
		assert.Equal(t, tc.wantSize, size, "page %q size %q", tc.page, tc.size)
	}
}
