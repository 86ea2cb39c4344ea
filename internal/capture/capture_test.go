package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragprobe/fragprobe/internal/config"
)

func TestBuildFilterIPv4(t *testing.T) {
	expr, err := BuildFilter(config.TestV4TCP, "10.0.0.1", "10.0.0.2", 80)
	require.NoError(t, err)
	want := "src 10.0.0.2 and dst 10.0.0.1 and (icmp or (tcp and src port 80 and dst port 44128))"
	assert.Equal(t, want, expr)
}

func TestBuildFilterIPv6MasksNeighborDiscovery(t *testing.T) {
	expr, err := BuildFilter(config.TestV6FragICMP6, "fe80::1", "fe80::2", 0)
	require.NoError(t, err)
	assert.Contains(t, expr, "icmp6[0] = 135")
	assert.Contains(t, expr, "icmp6[0] = 136")
}

func TestBuildFilterFitsBudgetForWorstCaseAddresses(t *testing.T) {
	longAddr := "2001:0db8:0000:0000:0000:0000:0000:0001"
	expr, err := BuildFilter(config.TestV6FragOptionedTCP, longAddr, longAddr, 65535)
	require.NoError(t, err, "BuildFilter unexpectedly exceeded budget")
	assert.LessOrEqual(t, len(expr), FilterBudget)
}

func TestBuildFilterOverflow(t *testing.T) {
	huge := make([]byte, FilterBudget)
	for i := range huge {
		huge[i] = 'a'
	}
	_, err := BuildFilter(config.TestV4TCP, string(huge), string(huge), 80)
	assert.Error(t, err, "expected FilterError for an oversized expression")
}

type fakeSource struct {
	frames [][]byte
	err    error
	calls  int
}

func (f *fakeSource) NextFrame() ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls-1 < len(f.frames) {
		return f.frames[f.calls-1], nil
	}
	return nil, nil
}

func TestListenerCapturesFrame(t *testing.T) {
	src := &fakeSource{frames: [][]byte{nil, {0x01, 0x02}}}
	l := NewListener(src)
	go l.Run(time.Now().Add(time.Second))

	select {
	case <-l.Ready():
	case <-time.After(time.Second):
		t.Fatal("listener never signalled readiness")
	}

	select {
	case res := <-l.Done():
		require.NoError(t, res.Err)
		assert.False(t, res.TimedOut)
		assert.Len(t, res.Frame, 2)
	case <-time.After(time.Second):
		t.Fatal("listener never delivered a result")
	}
}

func TestListenerTimesOut(t *testing.T) {
	src := &fakeSource{}
	l := NewListener(src)
	go l.Run(time.Now().Add(20 * time.Millisecond))

	<-l.Ready()
	select {
	case res := <-l.Done():
		assert.True(t, res.TimedOut)
	case <-time.After(time.Second):
		t.Fatal("listener never delivered a result")
	}
}

func TestListenerPropagatesError(t *testing.T) {
	want := errors.New("read failure")
	src := &fakeSource{err: want}
	l := NewListener(src)
	go l.Run(time.Now().Add(time.Second))

	<-l.Ready()
	res := <-l.Done()
	assert.ErrorIs(t, res.Err, want)
}

type fakeFilterer struct {
	got string
	err error
}

func (f *fakeFilterer) SetBPF(expr string) error {
	f.got = expr
	return f.err
}

func TestArmInstallsFilter(t *testing.T) {
	f := &fakeFilterer{}
	require.NoError(t, Arm(f, "icmp"))
	assert.Equal(t, "icmp", f.got)
}
