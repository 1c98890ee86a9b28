package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Equal(t, "0", Short(0))
	assert.Equal(t, "9999", Short(9999))
	assert.Equal(t, "10 k", Short(10000))
	assert.Equal(t, "1.23 M", Short(1234567))
	assert.Equal(t, "2.5 B", Short(2500000000))
}

func TestFull(t *testing.T) {
	assert.Equal(t, "1.23 Million", Full(1234567))
	assert.Equal(t, "15.6 Thousand", Full(15600))
}
