// Command fragprobe crafts deliberately malformed fragmented Ethernet +
// IPv4/IPv6 + TCP-SYN/ICMP/ICMPv6 frames, injects them on a chosen
// interface, and races a BPF-filtered capture listener against a timeout
// to classify the target's handling of the probe.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/internal/errs"
	"github.com/fragprobe/fragprobe/internal/linklayer"
	"github.com/fragprobe/fragprobe/internal/orchestrator"
	"github.com/fragprobe/fragprobe/internal/pprint"
	"github.com/fragprobe/fragprobe/pkg/common"
)

// fragmentation identifiers only need to avoid accidental collision with a
// concurrent run on the same host, not resist prediction.
func init() {
	rand.Seed(int64(os.Getpid()))
}

// args holds the parsed and validated command-line surface, ready to be
// turned into an orchestrator.Run once the local interface's MAC is
// resolved.
type args struct {
	srcIP    string
	dstIP    string
	dstMAC   string
	iface    string
	testName string
	dstPort  uint16
	srcPort  uint16
	timeout  time.Duration
	verbose  bool
	test     config.Test
}

// parseArgs parses flagArgs (normally os.Args[1:]) against fs and
// validates the result, returning a usage error (wrapping
// errs.UsageError) for anything fs.Parse itself can't catch: missing
// required flags, an unknown --test name, or an out-of-range --dstport.
func parseArgs(fs *pflag.FlagSet, flagArgs []string) (args, error) {
	var a args
	fs.StringVar(&a.srcIP, "srcip", "", "local source IPv4 or IPv6 address (required)")
	fs.StringVar(&a.dstIP, "dstip", "", "target address, same family as --srcip (required)")
	fs.StringVar(&a.dstMAC, "dstmac", "", "next-hop Ethernet MAC, colon-hex (required)")
	fs.StringVar(&a.iface, "interface", "", "outbound device name (required)")
	fs.StringVar(&a.testName, "test", "", fmt.Sprintf("one of: %s (required)", config.AllTestNames()))
	var dstPort, srcPort uint16
	fs.Uint16Var(&dstPort, "dstport", 0, "destination port, required for TCP tests")
	fs.Uint16Var(&srcPort, "srcport", config.SourcePort, "parsed but unused; the wire always uses the fixed source port")
	timeoutSeconds := fs.Int("timeout", config.DefaultTimeoutSeconds, "reply wait, in seconds")
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "narrate every transmitted and captured frame")

	if err := fs.Parse(flagArgs); err != nil {
		return args{}, fmt.Errorf("%w: %v", errs.UsageError, err)
	}

	a.dstPort, a.srcPort = dstPort, srcPort
	a.timeout = time.Duration(*timeoutSeconds) * time.Second

	if a.srcIP == "" || a.dstIP == "" || a.dstMAC == "" || a.iface == "" || a.testName == "" {
		return args{}, fmt.Errorf("%w: --srcip, --dstip, --dstmac, --interface, and --test are all required", errs.UsageError)
	}

	test, err := config.ParseTest(a.testName)
	if err != nil {
		return args{}, fmt.Errorf("%w: %v", errs.UsageError, err)
	}
	a.test = test

	if test.IsTCP() && a.dstPort == 0 {
		return args{}, fmt.Errorf("%w: --dstport is required for test %q", errs.UsageError, a.testName)
	}
	if *timeoutSeconds <= 0 {
		return args{}, fmt.Errorf("%w: --timeout must be a positive number of seconds", errs.UsageError)
	}

	return a, nil
}

// buildRun resolves the remaining addresses and the local interface's
// hardware address, producing a Run ready for orchestrator.Execute.
func buildRun(a args) (orchestrator.Run, error) {
	run := orchestrator.Run{
		Test: a.test, Interface: a.iface,
		DestPort: a.dstPort, Timeout: a.timeout,
	}

	dstMAC, err := common.ParseMAC(a.dstMAC)
	if err != nil {
		return orchestrator.Run{}, fmt.Errorf("%w: --dstmac %q: %v", errs.AddressError, a.dstMAC, err)
	}
	run.DestMAC = dstMAC

	if a.test.IsIPv6() {
		srcV6, err := common.ParseIPv6(a.srcIP)
		if err != nil {
			return orchestrator.Run{}, fmt.Errorf("%w: --srcip %q: %v", errs.AddressError, a.srcIP, err)
		}
		dstV6, err := common.ParseIPv6(a.dstIP)
		if err != nil {
			return orchestrator.Run{}, fmt.Errorf("%w: --dstip %q: %v", errs.AddressError, a.dstIP, err)
		}
		run.SourceIPv6, run.DestIPv6 = srcV6, dstV6
	} else {
		srcV4, err := common.ParseIPv4(a.srcIP)
		if err != nil {
			return orchestrator.Run{}, fmt.Errorf("%w: --srcip %q: %v", errs.AddressError, a.srcIP, err)
		}
		dstV4, err := common.ParseIPv4(a.dstIP)
		if err != nil {
			return orchestrator.Run{}, fmt.Errorf("%w: --dstip %q: %v", errs.AddressError, a.dstIP, err)
		}
		run.SourceIPv4, run.DestIPv4 = srcV4, dstV4
	}

	srcMAC, err := linklayer.ResolveMAC(a.iface)
	if err != nil {
		return orchestrator.Run{}, err
	}
	run.SourceMAC = srcMAC

	return run, nil
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func main() {
	fs := pflag.NewFlagSet("fragprobe", pflag.ContinueOnError)
	a, err := parseArgs(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.PrintDefaults()
		os.Exit(2)
	}

	log := newLogger(a.verbose)
	log.WithFields(logrus.Fields{"test": a.test, "interface": a.iface}).Infof("Starting test %q. Opening interface %q.", a.testName, a.iface)

	run, err := buildRun(a)
	if err != nil {
		log.Error(err)
		os.Exit(errs.ExitCode(err))
	}

	link, err := linklayer.Open(run.Interface, run.Timeout)
	if err != nil {
		log.Error(err)
		os.Exit(errs.ExitCode(err))
	}
	defer link.Close()

	printer := pprint.Printer(pprint.NopPrinter{})
	if a.verbose {
		printer = pprint.LogrusPrinter{Log: log}
	}

	success, err := orchestrator.Execute(run, link, log, printer)
	if err != nil {
		log.Error(err)
		os.Exit(errs.ExitCode(err))
	}

	log.WithField("success", success).Info("test complete")
	if !success {
		os.Exit(1)
	}
}
