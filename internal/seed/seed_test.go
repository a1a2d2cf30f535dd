package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFile(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	names := make([]string, 0, len(f.Tenants))
	for _, tenant := range f.Tenants {
		names = append(names, tenant.Name)
	}
	assert.Equal(t, []string{"Individuals", "Gold's Gym Pune", "Infosys Wellness", "IIT Fitness Program"}, names)
	assert.Equal(t, "Individuals", f.Admin.Tenant)
}

func TestParseRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"empty":         "tenants: []",
		"unknown type":  "tenants:\n  - name: A\n    type: Club\n",
		"duplicate":     "tenants:\n  - name: A\n    type: Gym\n  - name: ' A '\n    type: Public\n",
		"blank name":    "tenants:\n  - name: ' '\n    type: Gym\n",
		"missing admin": "tenants:\n  - name: A\n    type: Gym\nadmin:\n  tenant: B\n",
		"malformed":     "tenants: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseTrimsNames(t *testing.T) {
	f, err := Parse([]byte("tenants:\n  - name: '  Campus  '\n    type: University\n"))
	require.NoError(t, err)
	assert.Equal(t, "Campus", f.Tenants[0].Name)
}
