package smbfs

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/smbvfs/smbvfs/pkg/authority"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

const defaultSMBPort = 445

// parsedURI is the decomposed form of an smb:// URI (spec §6's grammar:
// smb://[userinfo@]host[:port][/path]).
type parsedURI struct {
	raw       *url.URL
	host      string
	port      int
	path      string // everything after host[:port], leading "/" included
	userCreds authority.Credentials
	hasCreds  bool
}

// parseURI validates scheme and splits host/port/path/embedded credentials.
func parseURI(raw string) (parsedURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return parsedURI{}, fserrors.Wrap(fserrors.InvalidArgument, "parseURI", raw, err)
	}
	if u.Scheme != "smb" {
		return parsedURI{}, fserrors.New(fserrors.InvalidArgument, "parseURI", raw)
	}
	if u.Host == "" {
		return parsedURI{}, fserrors.New(fserrors.InvalidArgument, "parseURI", raw)
	}

	host := u.Hostname()
	port := defaultSMBPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return parsedURI{}, fserrors.Wrap(fserrors.InvalidArgument, "parseURI", raw, err)
		}
		port = n
	}

	p := parsedURI{raw: u, host: host, port: port, path: u.Path}

	if u.User != nil {
		domain, user, password := splitUserInfo(u.User)
		p.userCreds = authority.Credentials{Domain: domain, User: user, Password: password}
		p.hasCreds = true
	}

	return p, nil
}

// splitUserInfo separates the "[domain;]user[:password]" userinfo grammar
// spec §6 defines; net/url already percent-decodes Username()/Password().
func splitUserInfo(u *url.Userinfo) (domain, user, password string) {
	info := u.Username()
	if idx := strings.Index(info, ";"); idx >= 0 {
		domain, info = info[:idx], info[idx+1:]
	}
	user = info
	password, _ = u.Password()
	return
}

// canonicalAuthority computes the registry key for this URI: spec §4.3's
// precedence chain over the URI's own embedded credentials, the options
// map, and the context defaults, composed with authority.Build.
func (p parsedURI) canonicalAuthority(opts Options, defaults ContextDefaults) string {
	optsCreds := authority.Credentials{Domain: opts.Domain, User: opts.Username, Password: opts.Password}
	defaultCreds := authority.Credentials{Domain: defaults.Domain, User: defaults.Username, Password: defaults.Password}
	return authority.Build(p.raw, optsCreds, defaultCreds)
}
