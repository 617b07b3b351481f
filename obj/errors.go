package obj

import "errors"

var (
	ErrUnknownKind       = errors.New("obj: unknown module kind")
	ErrUnknownAction     = errors.New("obj: unknown action")
	ErrMountIndex        = errors.New("obj: mount index out of range")
	ErrMissingMountOn    = errors.New("obj: child scheme has no mount_on")
	ErrSelfConnection    = errors.New("obj: module cannot connect to itself")
	ErrAlreadyConnected  = errors.New("obj: modules already connected")
	ErrHasParent         = errors.New("obj: module already has an inbound connection")
	ErrUnknownModule     = errors.New("obj: unknown module")
	ErrUnknownShip       = errors.New("obj: unknown ship")
	ErrSchemeLoop        = errors.New("obj: connection loop while serializing")
	ErrScriptUnavailable = errors.New("obj: script unavailable")
)
