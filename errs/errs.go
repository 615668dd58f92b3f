// Package errs defines the errno-style status codes returned across the
// translator stack, in the same idiom as the teaching kernel this module
// descends from: a plain signed integer, zero for success, negative for a
// named failure, with no error-interface ceremony layered on top.
package errs

// Err_t is a status code. Zero means success; a negative value names a
// specific failure.
type Err_t int

const (
	// EFAULT means a virtual address fell outside the addressable range.
	EFAULT Err_t = -1
	// ENOMEM means the geometry has too few frames to guarantee progress
	// (fewer than TablesDepth+1). No operation in this module returns it:
	// geom.New rejects such a geometry with an error value, and vm.New
	// panics on one.
	ENOMEM Err_t = -2
)

// String names the status code for diagnostics and log lines.
func (e Err_t) String() string {
	switch e {
	case 0:
		return "ok"
	case EFAULT:
		return "EFAULT"
	case ENOMEM:
		return "ENOMEM"
	default:
		return "unknown error"
	}
}
