package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Capability is a single storage backend operation.
type Capability uint8

// Capabilities is a set of Capability values.
type Capabilities uint8

const (
	// CapRead allows reading file contents.
	CapRead Capability = 1 << iota
	// CapWrite allows writing file contents.
	CapWrite
	// CapListDir allows listing directory entries.
	CapListDir
	// CapExists allows checking path existence.
	CapExists
	// CapMkdir allows creating directories.
	CapMkdir
	// CapRemove allows removing files and directories.
	CapRemove
	// CapStat allows stat calls.
	CapStat
)

// AllCapabilities contains every known capability.
const AllCapabilities = Capabilities(CapRead | CapWrite | CapListDir | CapExists | CapMkdir | CapRemove | CapStat)

// ReadOnlyCapabilities is the set exposed by read-only backends.
const ReadOnlyCapabilities = Capabilities(CapRead | CapListDir | CapExists | CapStat)

var capabilityOrder = []Capability{CapRead, CapWrite, CapListDir, CapExists, CapMkdir, CapRemove, CapStat}

// String returns the lower-case operation name.
func (c Capability) String() string {
	switch c {
	case CapRead:
		return "read"
	case CapWrite:
		return "write"
	case CapListDir:
		return "listdir"
	case CapExists:
		return "exists"
	case CapMkdir:
		return "mkdir"
	case CapRemove:
		return "remove"
	case CapStat:
		return "stat"
	default:
		return "unknown"
	}
}

// NewCapabilities builds a set from individual capabilities.
func NewCapabilities(caps ...Capability) Capabilities {
	var set Capabilities
	for _, c := range caps {
		set |= Capabilities(c)
	}
	return set
}

// Has reports whether every given capability is in the set.
func (s Capabilities) Has(caps ...Capability) bool {
	for _, c := range caps {
		if s&Capabilities(c) == 0 {
			return false
		}
	}
	return true
}

// Without returns the set minus the given capabilities.
func (s Capabilities) Without(caps ...Capability) Capabilities {
	for _, c := range caps {
		s &^= Capabilities(c)
	}
	return s
}

// List returns the capabilities of the set in a stable order.
func (s Capabilities) List() []Capability {
	out := make([]Capability, 0, len(capabilityOrder))
	for _, c := range capabilityOrder {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Names returns the operation names of the set in a stable order.
func (s Capabilities) Names() []string {
	list := s.List()
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.String()
	}
	return names
}

// String returns a comma separated list of operation names.
func (s Capabilities) String() string {
	return strings.Join(s.Names(), ",")
}

// Assert fails with ErrUnsupportedOperation when any required capability is missing.
func (s Capabilities) Assert(required ...Capability) error {
	want := NewCapabilities(required...)
	missing := want &^ s
	if missing == 0 {
		return nil
	}
	err := zerr.Wrap(ErrUnsupportedOperation, "storage backend is missing required capabilities")
	err = zerr.With(err, "required", want.Names())
	err = zerr.With(err, "missing", missing.Names())
	return zerr.With(err, "available", s.Names())
}
