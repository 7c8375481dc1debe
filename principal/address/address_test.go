package address

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("any case", func(t *testing.T) {
		a, err := Parse("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
		require.NoError(t, err)
		b, err := Parse("70997970c51812dc3a010c7d01b50e0d17dc79c8")
		require.NoError(t, err)
		require.Equal(t, a, b)
		require.Equal(t, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", a.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "0x", "0x1234", "0xzz997970c51812dc3a010c7d01b50e0d17dc79c8"} {
			_, err := Parse(s)
			require.Error(t, err, s)
		}
	})

	t.Run("normalize", func(t *testing.T) {
		s, err := Normalize("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266")
		require.NoError(t, err)
		require.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", s)
	})
}

func TestFromPublicKey(t *testing.T) {
	_, err := FromPublicKey([]byte{0x02, 0x01})
	require.Error(t, err)
}

func TestJSON(t *testing.T) {
	a, err := Parse("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	b, err := json.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, `"0x70997970c51812dc3a010c7d01b50e0d17dc79c8"`, string(b))

	var out Address
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, a, out)
	require.True(t, out.Defined())
	require.False(t, Undef.Defined())
}
