package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
)

func runShiq(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(args)
	var buf bytes.Buffer
	c.SetOut(&buf)
	c.SetErr(&buf)
	err := c.Execute()
	return buf.String(), err
}

func TestDemoAllScenariosMatchSpec(t *testing.T) {
	out, err := runShiq(t, "demo")
	qt.Assert(t, qt.IsNil(err))
	for _, s := range scenarios {
		qt.Assert(t, qt.IsTrue(strings.Contains(out, s.name)))
		qt.Assert(t, qt.IsFalse(strings.Contains(out, fmt.Sprintf("%-24s FAIL", s.name))))
	}
}

func TestDemoSingleScenario(t *testing.T) {
	out, err := runShiq(t, "demo", "nominal-clash")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(strings.Contains(out, "nominal-clash")))
	qt.Assert(t, qt.IsFalse(strings.Contains(out, "cyclic-concept")))
}

func TestDemoUnknownScenario(t *testing.T) {
	_, err := runShiq(t, "demo", "no-such-scenario")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestVersionCmd(t *testing.T) {
	out, err := runShiq(t, "version")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(strings.Contains(out, "shiq version")))
}
