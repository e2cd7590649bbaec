package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUUID(t *testing.T) {
	assert.True(t, ValidUUID("11111111-1111-1111-1111-111111111111"))
	assert.False(t, ValidUUID(""))
	assert.False(t, ValidUUID("not-a-uuid"))
	assert.False(t, ValidUUID("urn:uuid:11111111-1111-1111-1111-111111111111"))
	assert.False(t, ValidUUID("11111111111111111111111111111111"))
}
