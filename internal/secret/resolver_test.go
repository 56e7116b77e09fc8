package secret

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/scy/cred"
	"github.com/viant/servicenow-mcp/servicenow"
)

func newTestResolver(ring keyring.Keyring, basic *cred.Basic) *Resolver {
	return &Resolver{
		openRing: func(service string) (keyring.Keyring, error) {
			if ring == nil {
				return nil, errors.New("no keyring")
			}
			return ring, nil
		},
		loadSecret: func(ctx context.Context, URL, key string) (*cred.Basic, error) {
			if basic == nil {
				return nil, errors.New("not found")
			}
			return basic, nil
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: KeyUsername, Data: []byte("ring-user")},
		{Key: KeyPassword, Data: []byte("ring-pass")},
	})

	testCases := []struct {
		description string
		source      Source
		ring        keyring.Keyring
		basic       *cred.Basic
		expected    servicenow.Credentials
		expError    bool
	}{
		{
			description: "inline",
			source:      Source{Username: "admin", Password: "pw", Keyring: "snow"},
			expected:    servicenow.Credentials{Username: "admin", Password: "pw"},
		},
		{
			description: "secret resource",
			source:      Source{SecretURL: "~/.secret/snow.json", SecretKey: "blowfish://default"},
			basic:       &cred.Basic{Username: "scy-user", Password: "scy-pass"},
			expected:    servicenow.Credentials{Username: "scy-user", Password: "scy-pass"},
		},
		{
			description: "inline username with keyring password",
			source:      Source{Username: "admin", Keyring: "snow"},
			ring:        ring,
			expected:    servicenow.Credentials{Username: "admin", Password: "ring-pass"},
		},
		{
			description: "keyring only",
			source:      Source{Keyring: "snow"},
			ring:        ring,
			expected:    servicenow.Credentials{Username: "ring-user", Password: "ring-pass"},
		},
		{
			description: "missing secret",
			source:      Source{SecretURL: "~/.secret/none.json"},
			expError:    true,
		},
		{
			description: "keyring unavailable",
			source:      Source{Keyring: "snow"},
			expError:    true,
		},
		{
			description: "no username",
			source:      Source{Password: "pw"},
			expError:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			resolver := newTestResolver(tc.ring, tc.basic)
			actual, err := resolver.Resolve(context.Background(), tc.source)
			if tc.expError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tc.expected, actual)
		})
	}
}

func TestResolver_Store(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	resolver := newTestResolver(ring, nil)

	require.NoError(t, resolver.Store("snow", servicenow.Credentials{Username: "admin", Password: "pw"}))

	actual, err := resolver.Resolve(context.Background(), Source{Keyring: "snow"})
	require.NoError(t, err)
	assert.EqualValues(t, servicenow.Credentials{Username: "admin", Password: "pw"}, actual)
}
