package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "plain text without tags", []string{}},
		{"single", "hello #world", []string{"world"}},
		{"multiple sorted", "#zebra then #alpha", []string{"alpha", "zebra"}},
		{"case folded", "#Go and #go and #GO", []string{"go"}},
		{"digits and underscore", "#go_1_2", []string{"go_1_2"}},
		{"stops at punctuation", "read #golang, then #rust.", []string{"golang", "rust"}},
		{"bare hash ignored", "just a # sign", []string{}},
		{"empty", "", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractHashtags(tc.content))
		})
	}
}

func TestExtractHashtagsIdempotent(t *testing.T) {
	content := "#one #two #one"
	first := ExtractHashtags(content)
	second := ExtractHashtags(content)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"one", "two"}, first)
}
