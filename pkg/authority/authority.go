// Package authority builds the canonical authority string used as the
// registry key in pkg/smbfs: [domain;][user[:password]@]host[:port], with
// user and password percent-encoded.
//
// Grounded on the teacher's connection-string assembly in
// pkg/adapter/smb/config.go, adapted from "build the string the server
// listens on" to "build the string the registry keys a handle by" — same
// shape (credentials folded into a host:port form), opposite direction.
package authority

import (
	"net/url"
	"strings"
)

// Credentials carries the optional domain/user/password triple that can
// override a URI's own authority when building the canonical form.
type Credentials struct {
	Domain   string
	User     string
	Password string
}

func (c Credentials) empty() bool {
	return c.User == ""
}

// Build computes the canonical authority for uri, applying the precedence
// spec §4.3 defines:
//  1. uri already carries "@" (credentials embedded) -> used verbatim.
//  2. options supplies credentials -> build [domain;]user[:password]@
//     and append the URI's bare host[:port].
//  3. defaults supplies credentials -> same construction using defaults.
//  4. otherwise -> the URI's authority verbatim.
func Build(uri *url.URL, options, defaults Credentials) string {
	hostPort := uri.Host

	if uri.User != nil {
		return uri.User.String() + "@" + hostPort
	}

	if !options.empty() {
		return credentialed(options, hostPort)
	}

	if !defaults.empty() {
		return credentialed(defaults, hostPort)
	}

	return hostPort
}

func credentialed(c Credentials, hostPort string) string {
	var b strings.Builder
	if c.Domain != "" {
		b.WriteString(c.Domain)
		b.WriteString(";")
	}
	if c.Password != "" {
		b.WriteString(url.UserPassword(c.User, c.Password).String())
	} else {
		b.WriteString(url.User(c.User).String())
	}
	b.WriteString("@")
	b.WriteString(hostPort)
	return b.String()
}
