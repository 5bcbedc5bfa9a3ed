package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCommandArgs(t *testing.T) {
	cmd, args, err := openCommandArgs("xdg-open", "/tmp/AAPL_SEC_Filings.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xdg-open", cmd)
	assert.Equal(t, []string{"/tmp/AAPL_SEC_Filings.xlsx"}, args)

	cmd, args, err = openCommandArgs(`open -a "Microsoft Excel" {path}`, "/tmp/my deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, "open", cmd)
	assert.Equal(t, []string{"-a", "Microsoft Excel", "/tmp/my deck.pptx"}, args)

	_, _, err = openCommandArgs("   ", "/tmp/x")
	assert.ErrorIs(t, err, errEmptyOpenCommand)

	_, _, err = openCommandArgs(`open "unterminated`, "/tmp/x")
	assert.Error(t, err)
}

func TestJobManagerIgnoresForeignMessages(t *testing.T) {
	jm := newJobManager()
	assert.False(t, jm.Running())
	assert.Nil(t, jm.Handle(jobFinishedMsg{ID: 7}))
}
