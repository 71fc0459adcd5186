package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirectTarget(t *testing.T) {
	const fallback = "/admin/dashboard"

	tests := []struct {
		target string
		want   string
	}{
		{"/admin/projects", "/admin/projects"},
		{"/admin/projects?page=2#top", "/admin/projects?page=2#top"},
		{"/a", "/a"},
		{"//evil.example.com", fallback},
		{"//evil.example.com/admin", fallback},
		{"/\\evil.example.com", fallback},
		{"https://evil.example.com", fallback},
		{"javascript:alert(1)", fallback},
		{"admin/projects", fallback},
		{"/", fallback},
		{"", fallback},
		{"/admin\r\nSet-Cookie: x=1", fallback},
		{"/admin\x00", fallback},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeRedirectTarget(tt.target, fallback))
		})
	}
}
