package chainspec

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainTypeJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ChainType
		invalid  bool
	}{
		{name: "development", input: `"Development"`, expected: Development},
		{name: "local", input: `"Local"`, expected: Local},
		{name: "live", input: `"Live"`, expected: Live},
		{name: "custom", input: `{"Custom":"staging"}`, expected: Custom("staging")},
		{name: "unknown string", input: `"Mainnet"`, invalid: true},
		{name: "bad object key", input: `{"Network":"staging"}`, invalid: true},
		{name: "not a chain type", input: `42`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ct ChainType
			err := json.Unmarshal([]byte(tt.input), &ct)
			if tt.invalid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, ct)

			// Round-trips back to the same representation.
			out, err := json.Marshal(ct)
			require.NoError(t, err)
			require.JSONEq(t, tt.input, string(out))
		})
	}
}

func TestParse(t *testing.T) {
	raw := []byte(`{
		"name": "Development",
		"id": "dev",
		"chainType": "Development",
		"bootNodes": ["/ip4/127.0.0.1/tcp/30333/p2p/QmSk5HQbn6LhUwDiNMseVUjuRYhEtYj4aUZ6WfWoGURpdV"],
		"properties": {"tokenSymbol": "UNIT", "tokenDecimals": 12}
	}`)

	spec, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "Development", spec.Name)
	require.Equal(t, "dev", spec.ID)
	require.True(t, spec.ChainType.IsDevelopment())
	require.Len(t, spec.BootNodes, 1)
	require.Equal(t, "UNIT", spec.Properties["tokenSymbol"])
}

func TestParseRejectsIncompleteSpec(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing name", raw: `{"id":"dev","chainType":"Development"}`},
		{name: "missing id", raw: `{"name":"Development","chainType":"Development"}`},
		{name: "missing chain type", raw: `{"name":"Development","id":"dev"}`},
		{name: "not json", raw: `not a spec`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.json")
	raw := `{"name":"Local Testnet","id":"local_testnet","chainType":"Local","properties":{}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	spec, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "local_testnet", spec.ID)
	require.Equal(t, Local, spec.ChainType)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
