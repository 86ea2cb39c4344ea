package capture

import (
	"fmt"

	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/internal/errs"
)

// FilterBudget is the longest BPF expression this tool will install; a
// longer expression aborts with FilterError before ever reaching the
// kernel's filter compiler.
const FilterBudget = 203

// BuildFilter renders the BPF expression that pins a capture to the reply
// direction for test: traffic from remoteIP back to localIP, carrying
// either an ICMP/ICMPv6 echo reply or a TCP segment from dstPort back to
// the tool's fixed source port. dstPort is ignored (pass 0) for ICMP/
// ICMPv6 tests, since port 0 never appears in real traffic and the tcp
// clause is simply inert in that case — this keeps one filter template
// for every test.
func BuildFilter(test config.Test, localIP, remoteIP string, dstPort uint16) (string, error) {
	var l4 string
	if test.IsIPv6() {
		l4 = fmt.Sprintf(
			"(icmp6 and not (icmp6[0] = 135 or icmp6[0] = 136)) or (tcp and src port %d and dst port %d)",
			dstPort, config.SourcePort,
		)
	} else {
		l4 = fmt.Sprintf("icmp or (tcp and src port %d and dst port %d)", dstPort, config.SourcePort)
	}
	expr := fmt.Sprintf("src %s and dst %s and (%s)", remoteIP, localIP, l4)
	if len(expr) > FilterBudget {
		return "", fmt.Errorf("%w: expression is %d bytes (budget %d): %s", errs.FilterError, len(expr), FilterBudget, expr)
	}
	return expr, nil
}
