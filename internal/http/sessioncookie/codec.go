// Package sessioncookie serializes the session id into a Set-Cookie header
// value and reads it back from a request Cookie header.
package sessioncookie

import (
	"strconv"
	"strings"
	"time"
)

// DefaultName is the cookie name used when Options.Name is empty.
const DefaultName = "session"

// Options configures a Codec.
type Options struct {
	Name   string
	MaxAge time.Duration
	Domain string
	// Insecure drops the Secure attribute. Only meant for plain-HTTP development.
	Insecure bool
}

// Codec builds and parses session cookies. It holds no mutable state.
type Codec struct {
	name     string
	maxAge   int
	domain   string
	insecure bool
}

// New returns a Codec for opts.
func New(opts Options) *Codec {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	maxAge := int(opts.MaxAge / time.Second)
	if maxAge < 0 {
		maxAge = 0
	}
	return &Codec{
		name:     name,
		maxAge:   maxAge,
		domain:   opts.Domain,
		insecure: opts.Insecure,
	}
}

// Name returns the cookie name.
func (c *Codec) Name() string { return c.name }

// Encode returns the Set-Cookie value that stores id for the session lifetime.
func (c *Codec) Encode(id string) string {
	return c.build(id, c.maxAge)
}

// Clear returns a Set-Cookie value that removes the session cookie.
func (c *Codec) Clear() string {
	return c.build("", 0)
}

func (c *Codec) build(value string, maxAge int) string {
	var b strings.Builder
	b.WriteString(c.name)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteString("; Path=/")
	if c.domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.domain)
	}
	b.WriteString("; Max-Age=")
	b.WriteString(strconv.Itoa(maxAge))
	b.WriteString("; HttpOnly")
	if !c.insecure {
		b.WriteString("; Secure")
	}
	b.WriteString("; SameSite=Lax")
	return b.String()
}

// Extract returns the session id from a request Cookie header.
func (c *Codec) Extract(header string) (string, bool) {
	return Extract(header, c.name)
}

// Decode returns the session id carried by a Set-Cookie value produced by Encode.
// A cleared cookie decodes to ("", false).
func (c *Codec) Decode(setCookie string) (string, bool) {
	first, _, _ := strings.Cut(setCookie, ";")
	name, value, ok := strings.Cut(first, "=")
	if !ok || strings.TrimSpace(name) != c.name {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// Extract finds the named cookie in a Cookie header of the form
// "a=1; b=2". Whitespace around separators is ignored, pairs without "=" are
// skipped, and the first non-empty match wins.
func Extract(header, name string) (string, bool) {
	if header == "" || name == "" {
		return "", false
	}
	for _, part := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(k) != name {
			continue
		}
		v = strings.Trim(strings.TrimSpace(v), `"`)
		if v != "" {
			return v, true
		}
	}
	return "", false
}
