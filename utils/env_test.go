package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/apdb")

	url, err := GetDatabaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/apdb", url)

	url, err = GetDatabaseURL("sqlite://apdb.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite://apdb.db", url)
}

func TestGetDatabaseURL_Unset(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := GetDatabaseURL("")
	assert.Error(t, err)
}
