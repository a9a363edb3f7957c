package taskgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/abi"
)

func TestLoadManifest(t *testing.T) {
	m, err := Load("testdata/app.toml")
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Name)
	require.Len(t, m.Tasks, 4)
	require.Len(t, m.Endpoints, 2)

	cfg, err := m.Config()
	require.NoError(t, err)
	require.Len(t, cfg.Tasks, 4)

	echo := cfg.Tasks[1]
	assert.Equal(t, "echo", echo.Name)
	assert.True(t, echo.StartRecv)
	assert.Equal(t, abi.Slot(0), echo.RecvSlot)
	assert.EqualValues(t, 0, echo.Budget)

	spinner := cfg.Tasks[3]
	require.Len(t, spinner.Caps, 1)
	assert.Equal(t, abi.CapEndpoint, spinner.Caps[0].Kind)
	assert.EqualValues(t, 1, spinner.Caps[0].Object)
	assert.Equal(t, abi.RightSend, spinner.Caps[0].Rights)
}

func TestParseRejectsBadManifests(t *testing.T) {
	cases := []struct {
		name string
		toml string
		want string
	}{
		{
			"missing name",
			`[[tasks]]
			name = "a"
			priority = 1
			budget = 1`,
			"no name",
		},
		{
			"unknown key",
			`name = "x"
			frequency = 100`,
			"unknown manifest key",
		},
		{
			"unknown endpoint ref",
			`name = "x"
			[[tasks]]
			name = "a"
			priority = 1
			budget = 1
			[[tasks.caps]]
			slot = 0
			kind = "endpoint"
			ref = "nope"
			rights = ["send"]`,
			`unknown endpoint "nope"`,
		},
		{
			"unknown right",
			`name = "x"
			[[endpoints]]
			name = "e"
			[[tasks]]
			name = "a"
			priority = 1
			budget = 1
			[[tasks.caps]]
			slot = 0
			kind = "endpoint"
			ref = "e"
			rights = ["grant"]`,
			`unknown right "grant"`,
		},
		{
			"duplicate task",
			`name = "x"
			[[tasks]]
			name = "a"
			priority = 1
			budget = 1
			[[tasks]]
			name = "a"
			priority = 1
			budget = 1`,
			`duplicate task "a"`,
		},
		{
			"passive without recv",
			`name = "x"
			[[tasks]]
			name = "a"
			priority = 1
			budget = 0`,
			"passive",
		},
		{
			"send right on passive endpoint",
			`name = "x"
			[[endpoints]]
			name = "e"
			[[tasks]]
			name = "srv"
			priority = 6
			budget = 0
			recv = "e"
			[[tasks.caps]]
			slot = 0
			kind = "endpoint"
			ref = "e"
			rights = ["recv"]
			[[tasks]]
			name = "cli"
			priority = 2
			budget = 3
			[[tasks.caps]]
			slot = 0
			kind = "endpoint"
			ref = "e"
			rights = ["send"]`,
			"call only",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestGenerate(t *testing.T) {
	m, err := Load("testdata/app.toml")
	require.NoError(t, err)

	src, err := Generate(m, "boot")
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "package boot")
	assert.Contains(t, out, "Code generated")
	// gofmt column-aligns the const block, so match with flexible spacing.
	assert.Regexp(t, `TaskPinger\s+kernel\.ThreadRef\s+= 0`, out)
	assert.Regexp(t, `TaskLogServer\s+kernel\.ThreadRef\s+= 2`, out)
	assert.Regexp(t, `EndpointLogSink\s+uint16\s+= 1`, out)
	assert.Contains(t, out, "StartRecv: true")
	assert.Contains(t, out, "Rights: abi.RightCall")
	assert.Contains(t, out, "func Config() kernel.Config")
	// gofmt output ends with exactly one newline
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestGoName(t *testing.T) {
	assert.Equal(t, "LogServer", goName("log-server"))
	assert.Equal(t, "Pinger", goName("pinger"))
	assert.Equal(t, "Ep0", goName("ep_0"))
}
