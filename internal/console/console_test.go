package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterWritesPlainTextToNonTerminal(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)

	p.Info("Listening folder: %s", "cloud")
	p.Success("Changes Uploaded Correctly")
	p.Error("Upload error: %v", "boom")
	p.Plain("(%d) %s", 0, "First")

	assert.Equal(t,
		"Listening folder: cloud\nChanges Uploaded Correctly\nUpload error: boom\n(0) First\n",
		buf.String())
}

func TestPrinterKeepsPercentWithoutArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinter(buf).Error("100% broken")
	assert.Equal(t, "100% broken\n", buf.String())
}

func TestPrinterMultiLineHasNoPadding(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinter(buf).Error("a.js:1:4: oops\n\n    foo)\n        ^")
	assert.Equal(t, "a.js:1:4: oops\n\n    foo)\n        ^\n", buf.String())
}

func TestTermWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTermWriter(buf)

	n, err := w.Write([]byte("one\n"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	w.SetRaw(true)
	n, err = w.Write([]byte("two\nthree\n"))
	assert.NoError(t, err)
	assert.Equal(t, 10, n)

	w.SetRaw(false)
	_, _ = w.Write([]byte("four\n"))

	assert.Equal(t, "one\ntwo\r\nthree\r\nfour\n", buf.String())
}

func TestTermWriterFd(t *testing.T) {
	assert.Equal(t, ^uintptr(0), NewTermWriter(&bytes.Buffer{}).Fd())
}

func TestPrinterWithColorFromNonTerminal(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinter(NewTermWriter(buf), WithColorFrom(&bytes.Buffer{})).Success("done")
	assert.Equal(t, "done\n", buf.String())
}
