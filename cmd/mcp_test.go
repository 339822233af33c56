package cmd

import (
	"strings"
	"testing"
)

func TestAgentHelp(t *testing.T) {
	help := agentHelp("/opt/bin/lovvelger")

	for _, want := range []string{
		"/opt/bin/lovvelger search <query>",
		"/opt/bin/lovvelger ref build <base> [chapter-index]",
		"/opt/bin/lovvelger add LOV-2005-06-17-62\n",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
	if strings.Contains(help, "lovvelger daemon") {
		t.Errorf("help should not list the daemon command:\n%s", help)
	}
}
