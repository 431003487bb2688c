package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPostCategory(t *testing.T) {
	for _, valid := range []string{"general", "tools", "ctf", "news", "jobs", "learning", "writeups"} {
		assert.True(t, ValidPostCategory(valid), valid)
	}
	assert.False(t, ValidPostCategory("memes"))
	assert.False(t, ValidPostCategory(""))
}
