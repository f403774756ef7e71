package counter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAccumulates(t *testing.T) {
	c := New("sample.ZAnalysis")

	c.Update("all", 0.5)
	c.Update("all", 1.5)
	c.Update("final", 2)

	assert.Equal(t, Entry{Label: "all", Raw: 2, Weighted: 2}, c.Get("all"))
	assert.Equal(t, Entry{Label: "final", Raw: 1, Weighted: 2}, c.Get("final"))
	assert.Equal(t, Entry{Label: "missing"}, c.Get("missing"))
}

func TestEntriesOrder(t *testing.T) {
	c := New("order")
	c.Update("b", 1)
	c.Update("a", 1)
	c.Update("all", 1)
	c.Update("all", 1)
	c.Update("all", 1)
	c.Update("a", 1)

	var labels []string
	for _, e := range c.Entries() {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"all", "a", "b"}, labels)

	c.Update("b", 1)
	labels = labels[:0]
	for _, e := range c.Entries() {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"all", "b", "a"}, labels)
}

func TestReportFormat(t *testing.T) {
	c := New("report")
	c.Update("all", 1.25)
	c.Update("all", 1)
	c.Update("final", 0.5)

	var buf bytes.Buffer
	require.NoError(t, c.Report(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, border, lines[0])
	assert.Equal(t, "|                 all :                    2 :              2.25 |", lines[1])
	assert.Equal(t, "|               final :                    1 :              0.50 |", lines[2])
	assert.Equal(t, border, lines[3])
	assert.Len(t, lines[1], len(border))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestReportWriteError(t *testing.T) {
	c := New("broken")
	c.Update("all", 1)
	assert.ErrorContains(t, c.Report(failingWriter{}), "disk full")
}
