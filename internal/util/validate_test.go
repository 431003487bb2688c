package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("member@iwala99.net"))
	assert.True(t, ValidEmail("a.b+c@example.co.uk"))

	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("missing@tld"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail(strings.Repeat("a", 95)+"@example.com"))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("neo"))
	assert.True(t, ValidUsername("h4ck3r_one"))
	assert.True(t, ValidUsername(strings.Repeat("a", 20)))

	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername(strings.Repeat("a", 21)))
	assert.False(t, ValidUsername("with space"))
	assert.False(t, ValidUsername("dash-ed"))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("hunter2hunter2"))

	assert.False(t, ValidPassword("short1"))
	assert.False(t, ValidPassword("allletters"))
	assert.False(t, ValidPassword("12345678"))
	assert.False(t, ValidPassword(strings.Repeat("a1", 40)))
}
