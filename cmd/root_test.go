package cmd

import (
	"bytes"
	"errors"
	"testing"

	"janusops/pkg/secgroup"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected []string
	}{
		"returns empty list for empty string": {"", []string{}},
		"splits on colons":                    {"us-east-1:eu-west-1", []string{"us-east-1", "eu-west-1"}},
		"splits on commas and trims":          {"us-east-1, eu-west-1,", []string{"us-east-1", "eu-west-1"}},
	}

	for name, test := range tests {
		assert.Equal(t, test.expected, splitList(test.input), name)
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer

	printReport(&buf, &secgroup.Report{Results: []*secgroup.Result{
		{Region: "us-east-1", GroupID: "sg-1", Outcome: secgroup.Applied, CIDRs: []string{"1.2.3.4/32"}},
		{Region: "eu-west-1", GroupID: "sg-2", Outcome: secgroup.Failed, Err: errors.New("throttled")},
	}})

	out := buf.String()
	assert.Contains(t, out, "us-east-1")
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "throttled")
}

func TestCommandsRegistered(t *testing.T) {
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, expected := range []string{"security-groups", "nfs", "ssh-config", "ping", "limits", "janus-config"} {
		assert.Contains(t, names, expected)
	}
}
