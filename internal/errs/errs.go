// Package errs defines the stable error kinds fragprobe's components
// report, matching their propagation policy: every kind below is fatal and
// ends the run with a diagnostic on standard error, except Timeout, which
// the orchestrator turns into exit code 1 rather than a process-fatal
// error.
package errs

import "errors"

// Kind is a sentinel identifying which stage of the tool failed. Wrap one
// of these with fmt.Errorf("%w: ...", Kind, ...) so callers can test with
// errors.Is.
type Kind error

var (
	// UsageError marks a missing or invalid command-line argument.
	UsageError Kind = errors.New("usage error")

	// InterfaceError marks failure to open the capture device, a
	// datalink other than Ethernet II, or failure to resolve the local
	// interface's hardware address.
	InterfaceError Kind = errors.New("interface error")

	// AddressError marks a malformed or wrong-family source or
	// destination address.
	AddressError Kind = errors.New("address error")

	// FilterError marks a BPF compile/install failure or a filter that
	// would exceed the 203-byte budget.
	FilterError Kind = errors.New("filter error")

	// InjectError marks a short or failed link-level write.
	InjectError Kind = errors.New("inject error")

	// ChildCommError marks a malformed handoff from the listener: fewer
	// bytes than expected, or a length outside [1, 1500].
	ChildCommError Kind = errors.New("child communication error")

	// Timeout marks a listener that reported zero length. Not treated
	// as a process-fatal error; the orchestrator maps it to exit 1 with
	// a specific message.
	Timeout Kind = errors.New("timeout")
)

// ExitCode maps an error produced by this package to its process exit
// code: 2 for usage errors, 1 for every other reported failure or a
// timeout, 0 is never returned here (the caller only consults this after
// recognizing a failure).
func ExitCode(err error) int {
	if errors.Is(err, UsageError) {
		return 2
	}
	return 1
}
