package pprint

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragprobe/fragprobe/internal/config"
	"github.com/fragprobe/fragprobe/internal/recipes"
	"github.com/fragprobe/fragprobe/pkg/common"
)

func buildSampleFrame(t *testing.T) []byte {
	t.Helper()
	srcMAC, err := common.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	dstMAC, err := common.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	srcV4, err := common.ParseIPv4("192.0.2.1")
	require.NoError(t, err)
	dstV4, err := common.ParseIPv4("192.0.2.2")
	require.NoError(t, err)

	buf := make([]byte, config.BufferSize)
	var frame []byte
	err = recipes.Dispatch(config.TestV4TCP, buf, recipes.Params{
		SourceMAC: srcMAC, DestMAC: dstMAC, SourceIPv4: srcV4, DestIPv4: dstV4, DestPort: 80,
	}, func(f []byte) error {
		frame = append([]byte{}, f...)
		return nil
	})
	require.NoError(t, err)
	return frame
}

func TestLogrusPrinterNarratesRecognizedFrame(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	p := LogrusPrinter{Log: log}
	p.Frame("tx", buildSampleFrame(t))

	out := buf.String()
	for _, want := range []string{"ethernet", "ipv4", "tcp"} {
		assert.Contains(t, out, want)
	}
}

func TestLogrusPrinterHandlesGarbage(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	p := LogrusPrinter{Log: log}
	p.Frame("rx", []byte{0x01, 0x02, 0x03})
}

func TestNopPrinterDoesNothing(t *testing.T) {
	NopPrinter{}.Frame("anything", []byte{1, 2, 3})
}
