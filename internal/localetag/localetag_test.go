package localetag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en-US", "en-US"},
		{"en_us", "en-US"},
		{" vi-VN ", "vi-VN"},
		{"", ""},
		{"not a tag!", "not a tag!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestBase(t *testing.T) {
	assert.Equal(t, "pt", Base("pt-BR"))
	assert.Equal(t, "es", Base("es"))
	assert.Equal(t, "", Base(""))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("vi_VN"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("strings"))
}

func TestFromPath(t *testing.T) {
	assert.Equal(t, "vi-VN", FromPath("res/langs/vi-VN.json"))
	assert.Equal(t, "en-US", FromPath("en_US.yaml"))
}
