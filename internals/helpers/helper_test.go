package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Renovasi Posyandu":        "renovasi-posyandu",
		"  Bantu   Korban Banjir ": "bantu-korban-banjir",
		"Beasiswa 2026!!":          "beasiswa-2026",
		"---":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, GenerateSlug(in), "input: %q", in)
	}
}

func TestBuildPaginationFromPage(t *testing.T) {
	p := BuildPaginationFromPage(45, 2, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := BuildPaginationFromPage(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
