// Package config holds the fixed constants and test-variant enumeration
// shared by every other package in fragprobe: the tool has no runtime
// configuration file, only command-line flags, so this is the single place
// that names the things synfrag.c hard-coded as C preprocessor macros.
package config

import "fmt"

// SourcePort is the fixed TCP source port and, doubling as a second role,
// the ICMP/ICMPv6 echo identifier every probe carries. --srcport is parsed
// for CLI compatibility but never consumed — the wire always uses this
// constant.
const SourcePort = 44128

// BufferSize is the size of the single packet buffer each recipe owns for
// the duration of a test: big enough for any Ethernet + IPv4/IPv6 + options
// + L4 combination this tool constructs, with room to spare.
const BufferSize = 1500

// DefaultTimeoutSeconds is --timeout's default value.
const DefaultTimeoutSeconds = 10

// Test is a tagged enumeration over the ten recipe variants: the cartesian
// product of address family (IPv4/IPv6) and shape (plain, fragmented,
// fragmented-with-options) by transport (TCP, ICMP), minus the two
// combinations with no plain-ICMP test.
type Test int

const (
	TestInvalid Test = iota
	TestV4TCP
	TestV4FragTCP
	TestV4FragICMP
	TestV4FragOptionedTCP
	TestV4FragOptionedICMP
	TestV6TCP
	TestV6FragTCP
	TestV6FragICMP6
	TestV6FragOptionedTCP
	TestV6FragOptionedICMP6
)

// testNames lists every valid Test in the stable, user-facing order used by
// --help and CLI parsing. String and ParseTest both scan this table; its
// order need not match the Test iota values above.
var testNames = [...]struct {
	test Test
	name string
}{
	{TestV4TCP, "v4-tcp"},
	{TestV4FragTCP, "v4-frag-tcp"},
	{TestV4FragICMP, "v4-frag-icmp"},
	{TestV4FragOptionedTCP, "v4-frag-optioned-tcp"},
	{TestV4FragOptionedICMP, "v4-frag-optioned-icmp"},
	{TestV6TCP, "v6-tcp"},
	{TestV6FragTCP, "v6-frag-tcp"},
	{TestV6FragICMP6, "v6-frag-icmp6"},
	{TestV6FragOptionedTCP, "v6-frag-optioned-tcp"},
	{TestV6FragOptionedICMP6, "v6-frag-optioned-icmp6"},
}

// String returns the stable textual name for t, or "invalid" for TestInvalid
// and out-of-range values.
func (t Test) String() string {
	for _, e := range testNames {
		if e.test == t {
			return e.name
		}
	}
	return "invalid"
}

// ParseTest resolves a --test flag value to its Test, or an error naming
// every valid variant.
func ParseTest(name string) (Test, error) {
	for _, e := range testNames {
		if e.name == name {
			return e.test, nil
		}
	}
	return TestInvalid, fmt.Errorf("unknown test %q (valid tests: %s)", name, AllTestNames())
}

// AllTestNames returns every valid --test value, space-separated, for usage
// output.
func AllTestNames() string {
	s := ""
	for i, e := range testNames {
		if i > 0 {
			s += " "
		}
		s += e.name
	}
	return s
}

// IsIPv6 reports whether t operates on the IPv6 address family.
func (t Test) IsIPv6() bool {
	switch t {
	case TestV6TCP, TestV6FragTCP, TestV6FragICMP6, TestV6FragOptionedTCP, TestV6FragOptionedICMP6:
		return true
	default:
		return false
	}
}

// IsTCP reports whether t is a TCP-SYN test (as opposed to an ICMP/ICMPv6
// echo test).
func (t Test) IsTCP() bool {
	switch t {
	case TestV4TCP, TestV4FragTCP, TestV4FragOptionedTCP, TestV6TCP, TestV6FragTCP, TestV6FragOptionedTCP:
		return true
	default:
		return false
	}
}

// IsFragmented reports whether t sends two fragments rather than one plain
// packet.
func (t Test) IsFragmented() bool {
	return t != TestV4TCP && t != TestV6TCP
}

// IsOptioned reports whether t's first fragment carries padding (IPv4
// options or an IPv6 Destination Options header) above the bare minimum.
func (t Test) IsOptioned() bool {
	switch t {
	case TestV4FragOptionedTCP, TestV4FragOptionedICMP, TestV6FragOptionedTCP, TestV6FragOptionedICMP6:
		return true
	default:
		return false
	}
}
