package smbclient

import (
	"errors"

	"github.com/hirochachacha/go-smb2"

	"github.com/smbvfs/smbvfs/internal/smbproto"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

// mapError translates whatever go-smb2 surfaced into this module's error
// taxonomy (spec §7's mapping guidance), preserving the underlying error as
// the wrapped cause. Grounded on the teacher's adapter.ProtocolError and
// internal/adapter/smb/types.Status: there the direction is domain-error ->
// wire-status; here it is wire-status -> domain-error, the adapter boundary
// run in reverse.
func mapError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var se *smb2.ResponseError
	if errors.As(err, &se) {
		switch smbproto.Status(se.Code) {
		case smbproto.StatusAccessDenied:
			return fserrors.Wrap(fserrors.AccessDenied, op, path, err)
		case smbproto.StatusNoSuchFile,
			smbproto.StatusObjectNameNotFound,
			smbproto.StatusObjectPathNotFound,
			smbproto.StatusBadNetworkName:
			return fserrors.Wrap(fserrors.NotFound, op, path, err)
		case smbproto.StatusObjectNameCollision:
			return fserrors.Wrap(fserrors.AlreadyExists, op, path, err)
		case smbproto.StatusNotADirectory:
			return fserrors.Wrap(fserrors.NotADirectory, op, path, err)
		case smbproto.StatusNotSupported, smbproto.StatusInvalidDeviceRequest:
			return fserrors.Wrap(fserrors.Unsupported, op, path, err)
		case smbproto.StatusFileClosed, smbproto.StatusInvalidHandle:
			return fserrors.Wrap(fserrors.ClosedChannel, op, path, err)
		default:
			return fserrors.Wrap(fserrors.Io, op, path, err)
		}
	}

	return fserrors.Wrap(fserrors.Io, op, path, err)
}

// fserrorsAlreadyExists is a thin constructor for the AlreadyExists checks
// this file performs locally (before a round-trip that would itself surface
// StatusObjectNameCollision), e.g. CREATE_NEW or a copy without
// REPLACE_EXISTING.
func fserrorsAlreadyExists(op, path string) error {
	return fserrors.New(fserrors.AlreadyExists, op, path)
}
