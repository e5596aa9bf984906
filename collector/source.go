package collector

import "flowtop/model"

// Source produces one raw accounting snapshot per call. Implementations
// block until the snapshot is complete or an internal deadline expires.
type Source interface {
	Snapshot() (model.RawSnapshot, error)
	// Describe returns the invocation echoed in the header, e.g.
	// "nettop -n -x -L 1".
	Describe() string
}
