package system

import (
	"errors"

	"github.com/nazar-pc/substrate/internal/logfilter"
	"github.com/nazar-pc/substrate/internal/peerset"
)

// ErrSubsystemUnavailable is returned when the network or sync
// subsystem does not answer within the request timeout, or has shut
// down. Requests are never retried internally: a stateful command
// could be applied twice. Callers re-issue if they want to.
var ErrSubsystemUnavailable = errors.New("subsystem unavailable")

// ErrorKind classifies service errors for callers that need to map
// them onto a wire-level error code.
type ErrorKind int

const (
	// KindInternal covers unexpected failures. At runtime these point
	// at a bug; misconfiguration is caught at startup instead.
	KindInternal ErrorKind = iota
	// KindInvalidParams covers malformed peer addresses, peer ids and
	// log directives, detected before any subsystem is contacted.
	KindInvalidParams
	// KindAlreadyReserved: adding a peer that is already reserved.
	KindAlreadyReserved
	// KindNotReserved: removing a peer that is not reserved.
	KindNotReserved
	// KindSubsystemUnavailable: a subsystem round-trip timed out or
	// the subsystem is gone.
	KindSubsystemUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParams:
		return "InvalidParams"
	case KindAlreadyReserved:
		return "AlreadyReserved"
	case KindNotReserved:
		return "NotReserved"
	case KindSubsystemUnavailable:
		return "SubsystemUnavailable"
	default:
		return "Internal"
	}
}

// Classify maps an error returned by the service to its kind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, peerset.ErrInvalidAddress),
		errors.Is(err, peerset.ErrInvalidPeerID),
		errors.Is(err, logfilter.ErrInvalidDirective):
		return KindInvalidParams
	case errors.Is(err, peerset.ErrAlreadyReserved):
		return KindAlreadyReserved
	case errors.Is(err, peerset.ErrNotReserved):
		return KindNotReserved
	case errors.Is(err, ErrSubsystemUnavailable):
		return KindSubsystemUnavailable
	default:
		return KindInternal
	}
}
