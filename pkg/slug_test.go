package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello, World!"))
	assert.Equal(t, "crossfield-v2-launch", Slugify("  CrossField v2   launch "))
	assert.Equal(t, "already-a-slug", Slugify("already-a-slug"))
	assert.Empty(t, Slugify("!!!"))
}
