package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPairingsCommand(t *testing.T) {
	out, err := runCmd(t, "pairings", "4")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "6 bouts", lines[6])
}

func TestPairingsCommandRejectsBadSize(t *testing.T) {
	_, err := runCmd(t, "pairings", "four")
	assert.Error(t, err)
}

func TestStatusRequiresCategory(t *testing.T) {
	_, err := runCmd(t, "status")
	assert.ErrorContains(t, err, "category")
}
