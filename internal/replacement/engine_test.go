package replacement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLogin(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		expect   LoginParts
		expectOK bool
	}{
		{
			name:     "multi-label domain",
			userName: "jdoe@corp.example.com",
			expect:   LoginParts{Alias: "jdoe", Domain: "corp.example", TLD: "com"},
			expectOK: true,
		},
		{
			name:     "single-label domain",
			userName: "jdoe@localhost",
			expect:   LoginParts{Alias: "jdoe", TLD: "localhost"},
			expectOK: true,
		},
		{
			name:     "no at sign",
			userName: "jdoe",
			expectOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, ok := SplitLogin(tt.userName)
			assert.Equal(t, tt.expectOK, ok)
			assert.Equal(t, tt.expect, parts)
		})
	}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		format   string
		expected string
	}{
		{
			name:     "default template keeps login",
			userName: "jdoe@corp.example.com",
			format:   DefaultFormat,
			expected: "jdoe@corp.example.com",
		},
		{
			name:     "suffix on alias",
			userName: "jdoe@corp.example.com",
			format:   "alias.id@domain.tld",
			expected: "jdoe.id@corp.example.com",
		},
		{
			name:     "new domain",
			userName: "jane@x.com",
			format:   "alias@newcorp.ru",
			expected: "jane@newcorp.ru",
		},
		{
			name:     "template without tokens is a literal",
			userName: "jane@x.com",
			format:   "fixed@site.org",
			expected: "fixed@site.org",
		},
		{
			name:     "login without at sign is untouched",
			userName: "service-account",
			format:   "alias.id@domain.tld",
			expected: "service-account",
		},
		{
			name:     "blank template falls back to default",
			userName: "jane@x.com",
			format:   "  ",
			expected: "jane@x.com",
		},
		{
			name:     "inserted alias is not rescanned",
			userName: "tldomain@corp.example.com",
			format:   "alias@domain.tld",
			expected: "tldomain@corp.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Derive(tt.userName, tt.format))
		})
	}
}

func TestEngineFormat(t *testing.T) {
	assert.Equal(t, DefaultFormat, NewEngine("").Format())
	assert.Equal(t, "alias.x@domain.tld", NewEngine(" alias.x@domain.tld ").Format())
}
