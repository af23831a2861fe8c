package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfRegistration(t *testing.T) {
	// All bundled adapters register themselves via init().
	for _, name := range []string{"sqlite", "duckdb", "postgres"} {
		assert.True(t, IsRegistered(name), "%s adapter should be auto-registered", name)
	}
	assert.False(t, IsRegistered("oracle"))
}

func TestList(t *testing.T) {
	names := List()
	assert.Contains(t, names, "sqlite")
	assert.Contains(t, names, "postgres")
	assert.IsNonDecreasing(t, names)
}

func TestNew(t *testing.T) {
	a, err := New(Config{Driver: "sqlite"}, nil)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "sqlite", a.DialectName())
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "nope"}, nil)
	require.Error(t, err)

	var unknown *UnknownDriverError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Driver)
	assert.Contains(t, unknown.Available, "sqlite")
}

func TestNewMissingDriver(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
