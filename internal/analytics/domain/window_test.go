package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	cases := []struct {
		in   string
		want Window
	}{
		{"2y", Window{Years: 2}},
		{"18mo", Window{Months: 18}},
		{"90d", Window{Days: 90}},
		{"2w", Window{Days: 14}},
		{"1y6mo", Window{Years: 1, Months: 6}},
		{" 36h ", Window{Span: 36 * time.Hour}},
	}
	for _, tc := range cases {
		got, err := ParseWindow(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseWindowRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "y", "2", "3q", "abc"} {
		_, err := ParseWindow(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrInvalidParameter), in)
	}
}

func TestWindowValidate(t *testing.T) {
	require.NoError(t, Years(2).Validate())
	require.ErrorIs(t, Window{}.Validate(), ErrInvalidParameter)
	require.ErrorIs(t, Window{Span: -time.Hour}.Validate(), ErrInvalidParameter)
	require.ErrorIs(t, Window{Years: 1, Days: -1}.Validate(), ErrInvalidParameter)
}

func TestWindowStartIsCalendarAware(t *testing.T) {
	asOf := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC), Years(2).Start(asOf))
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), Window{Span: 36 * time.Hour}.Start(asOf))
}

func TestWindowString(t *testing.T) {
	assert.Equal(t, "2y", Years(2).String())
	assert.Equal(t, "1y6mo3d", Window{Years: 1, Months: 6, Days: 3}.String())
	assert.Equal(t, "36h0m0s", Window{Span: 36 * time.Hour}.String())
	assert.Equal(t, "0s", Window{}.String())
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, Request{Limit: 0, Window: Years(2)}.Validate())

	err := Request{Limit: -1, Window: Years(2)}.Validate()
	var paramErr *InvalidParameterError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "limit", paramErr.Field)
}
