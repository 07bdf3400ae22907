package db

import (
	"testing"

	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(config.DriverSQLite, "file::memory:")
	require.NoError(t, err)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	require.Equal(t, 1, one)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	require.ErrorIs(t, err, config.ErrInvalidDriver)
}
