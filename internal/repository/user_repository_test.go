package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeEscaperNeutralizesWildcards(t *testing.T) {
	assert.Equal(t, "ne!_o", likeEscaper.Replace("ne_o"))
	assert.Equal(t, "h4!%x", likeEscaper.Replace("h4%x"))
	assert.Equal(t, "bang!!", likeEscaper.Replace("bang!"))
	assert.Equal(t, "!%!%!_", likeEscaper.Replace("%%_"))
	assert.Equal(t, "plain", likeEscaper.Replace("plain"))
}
