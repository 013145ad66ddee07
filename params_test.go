package main

import (
	"testing"

	"github.com/livetesting/live-tests/framework"

	"github.com/stretchr/testify/assert"
)

func TestReadParams(t *testing.T) {
	var p commandParams
	assert.True(t, p.Read([]string{"cmd", "-url", "http://localhost:8000", "-run", "lifecycle", "-debug"}))
	assert.Equal(t, "http://localhost:8000", p.serviceURL)
	assert.Equal(t, "/", p.virtualPath)
	assert.Equal(t, ".", p.physicalPath)
	assert.True(t, p.filters.MustMatch.IsDefined())
	assert.True(t, p.debug)

	assert.False(t, (&commandParams{}).Read([]string{"cmd"}))
	assert.False(t, (&commandParams{}).Read([]string{"cmd", "-url", "http://a", "-serve", ":8000"}))
	assert.True(t, (&commandParams{}).Read([]string{"cmd", "-serve", ":8000"}))
}

func TestRerunCommand(t *testing.T) {
	p := commandParams{serviceURL: "http://localhost:8000", virtualPath: "/", physicalPath: "/srv/my site"}
	failures := []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"lifecycle", "StoppingTwiceFails"}}},
	}

	assert.Equal(t,
		`live-tests -url http://localhost:8000 -physical-path '/srv/my site' -run '^lifecycle$/^StoppingTwiceFails$'`,
		p.rerunCommand("live-tests", failures))
}
