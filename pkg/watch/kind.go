// Package watch implements the two pieces of the watch subsystem that do
// not themselves need to talk to a remote server: the bounded, coalescing
// per-registration event buffer (spec §4.9, "WatchKey") and the signaled-key
// delivery queue consumers poll or take from (spec §4.11, "WatchService").
// The background diffing engine that actually produces CREATE/MODIFY/DELETE
// events lives in pkg/watch/poller, kept separate so this package has no
// dependency on the SMB collaborator.
package watch

import "fmt"

// Kind identifies the nature of a synthesized file-system change event.
type Kind int

const (
	// Create indicates a new entry appeared in a watched directory.
	Create Kind = iota
	// Modify indicates a watched file's content or a watched path's
	// attributes changed.
	Modify
	// Delete indicates a watched path, or an entry of a watched directory,
	// no longer exists.
	Delete
	// Overflow indicates a key's event buffer filled and events were
	// dropped; it carries no context path.
	Overflow
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "CREATE"
	case Modify:
		return "MODIFY"
	case Delete:
		return "DELETE"
	case Overflow:
		return "OVERFLOW"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the four kinds spec §4.10's REGISTER
// validates against; an unrecognized kind is rejected with Unsupported.
func (k Kind) Valid() bool {
	switch k {
	case Create, Modify, Delete, Overflow:
		return true
	default:
		return false
	}
}
