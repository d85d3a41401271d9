// Package smbproto holds the small set of SMB wire-level vocabulary the rest
// of the module needs without depending on a protocol implementation:
// FILETIME conversion and the subset of NT_STATUS codes the error mapping
// in internal/smbclient cares about. Everything else about the SMB2
// protocol — framing, signing, encryption, dialect negotiation — lives
// inside the real client library internal/smbclient wraps, never here.
//
// [MS-ERREF] and [MS-FSCC] define the wire values reproduced below.
package smbproto
