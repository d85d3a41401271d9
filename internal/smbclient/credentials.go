package smbclient

// Credentials carries the NTLM domain/user/password triple used to
// authenticate a session, mirroring the fields spec §4.3's authority
// builder folds into the canonical authority string.
type Credentials struct {
	Domain   string
	User     string
	Password string
}

// Anonymous reports whether no username was supplied, in which case a
// guest/anonymous session is attempted.
func (c Credentials) Anonymous() bool {
	return c.User == ""
}
