// Package rfblog centralizes logging for the engine behind glog, and maps
// the host binary's --debug <comma-list> flag onto a process-wide facility
// bitmask, checked before any trace call reaches glog, so per-facility tracing ("proto", "encode", "input", "clipboard") can be
// enabled without recompiling.
package rfblog

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/golang/glog"
)

// Facility identifies a subsystem that can be independently enabled via
// --debug. Bits are combined into a single process-wide bitmask.
type Facility uint32

const (
	FacilityProto Facility = 1 << iota
	FacilityEncode
	FacilityInput
	FacilityClipboard
	FacilityTransport
)

var enabled atomic.Uint32

var names = map[string]Facility{
	"proto":     FacilityProto,
	"encode":    FacilityEncode,
	"input":     FacilityInput,
	"clipboard": FacilityClipboard,
	"transport": FacilityTransport,
}

// SetDebugFacilities parses a comma-separated list of facility names (the
// value of the host binary's --debug flag) and enables tracing for each.
// Unknown names are ignored; the empty string enables nothing.
func SetDebugFacilities(list string) {
	var mask Facility
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if f, ok := names[name]; ok {
			mask |= f
		}
	}
	enabled.Store(uint32(mask))
}

// Enabled reports whether tracing for the given facility is active.
func Enabled(f Facility) bool {
	return Facility(enabled.Load())&f != 0
}

// Tracef logs at glog's info severity only when the named facility is
// enabled via --debug; glog's -v verbosity level plays no part.
func Tracef(f Facility, format string, args ...interface{}) {
	if Enabled(f) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

// Infof, Warningf and Errorf forward to glog; kept as thin wrappers so the
// rest of the engine never imports glog directly.
func Infof(format string, args ...interface{})    { glog.Infof(format, args...) }
func Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }
