// Package replacement derives proposed login names from a template.
// A template is free text in which the literal tokens "alias", "domain" and
// "tld" stand for parts of the user's current email-shaped login.
package replacement

import (
	"strings"
)

// Template tokens substituted by Derive.
const (
	TokenAlias  = "alias"
	TokenDomain = "domain"
	TokenTLD    = "tld"
)

// DefaultFormat reproduces the current login unchanged.
const DefaultFormat = TokenAlias + "@" + TokenDomain + "." + TokenTLD

// LoginParts are the pieces of a login that feed a template.
type LoginParts struct {
	Alias  string
	Domain string
	TLD    string
}

// SplitLogin breaks "local@sub.example.com" into alias "local", domain
// "sub.example" and tld "com". It reports false when the login has no '@'.
func SplitLogin(userName string) (LoginParts, bool) {
	local, host, found := strings.Cut(userName, "@")
	if !found {
		return LoginParts{}, false
	}
	// Anything after a second '@' is dropped, matching a split on '@'.
	host, _, _ = strings.Cut(host, "@")

	parts := LoginParts{Alias: local}
	if i := strings.LastIndex(host, "."); i >= 0 {
		parts.Domain = host[:i]
		parts.TLD = host[i+1:]
	} else {
		parts.TLD = host
	}
	return parts, true
}

// Engine applies one login template to many user names.
type Engine struct {
	format string
}

// NewEngine creates an Engine for format. A blank format falls back to
// DefaultFormat.
func NewEngine(format string) *Engine {
	format = strings.TrimSpace(format)
	if format == "" {
		format = DefaultFormat
	}
	return &Engine{format: format}
}

// Format returns the template in use.
func (e *Engine) Format() string {
	return e.format
}

// Derive returns the proposed login for userName. Logins without '@' are
// returned as is. Tokens are substituted in a single left-to-right pass, so
// text inserted for one token is never rescanned for another.
func (e *Engine) Derive(userName string) string {
	parts, ok := SplitLogin(userName)
	if !ok {
		return userName
	}

	replacer := strings.NewReplacer(
		TokenAlias, parts.Alias,
		TokenDomain, parts.Domain,
		TokenTLD, parts.TLD,
	)
	return replacer.Replace(e.format)
}

// Derive is a convenience wrapper around NewEngine(format).Derive(userName).
func Derive(userName, format string) string {
	return NewEngine(format).Derive(userName)
}
