package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritahmida/boutique/app/models"
)

func TestStatusValid(t *testing.T) {
	for _, s := range models.Statuses {
		assert.True(t, s.Valid(), "status %q should be valid", s)
	}
	assert.False(t, models.Status("delivering").Valid())
	assert.False(t, models.Status("").Valid())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.Status
		ok       bool
	}{
		{models.StatusWaiting, models.StatusProcessing, true},
		{models.StatusWaiting, models.StatusCanceled, true},
		{models.StatusWaiting, models.StatusShipped, false},
		{models.StatusWaiting, models.StatusDelivered, false},
		{models.StatusWaiting, models.StatusWaiting, false},

		{models.StatusProcessing, models.StatusShipped, true},
		{models.StatusProcessing, models.StatusCanceled, true},
		{models.StatusProcessing, models.StatusWaiting, false},
		{models.StatusProcessing, models.StatusDelivered, false},

		{models.StatusShipped, models.StatusDelivered, true},
		{models.StatusShipped, models.StatusCanceled, true},
		{models.StatusShipped, models.StatusWaiting, false},
		{models.StatusShipped, models.StatusProcessing, false},

		{models.StatusDelivered, models.StatusCanceled, true},
		{models.StatusDelivered, models.StatusWaiting, false},
		{models.StatusDelivered, models.StatusShipped, false},

		// canceled → waiting is the only reactivation path
		{models.StatusCanceled, models.StatusWaiting, true},
		{models.StatusCanceled, models.StatusProcessing, false},
		{models.StatusCanceled, models.StatusShipped, false},
		{models.StatusCanceled, models.StatusDelivered, false},
		{models.StatusCanceled, models.StatusCanceled, false},
	}

	for _, tc := range cases {
		got := models.CanTransition(tc.from, tc.to)
		assert.Equal(t, tc.ok, got, "%s → %s", tc.from, tc.to)
	}
}

func TestValidateTransition(t *testing.T) {
	require.NoError(t, models.ValidateTransition(models.StatusWaiting, models.StatusProcessing))

	err := models.ValidateTransition(models.StatusDelivered, models.StatusWaiting)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)
	assert.Contains(t, err.Error(), "delivered")
	assert.Contains(t, err.Error(), "waiting")
}

func TestStatusFromNumber(t *testing.T) {
	cases := map[int]models.Status{
		1: models.StatusWaiting,
		2: models.StatusProcessing, // wire label "delivering"
		3: models.StatusDelivered,
		4: models.StatusCanceled,
	}
	for n, want := range cases {
		got, err := models.StatusFromNumber(n)
		require.NoError(t, err, "number %d", n)
		assert.Equal(t, want, got)
	}

	for _, n := range []int{0, 5, -1, 42} {
		_, err := models.StatusFromNumber(n)
		assert.ErrorIs(t, err, models.ErrInvalidStatusNumber, "number %d", n)
	}
}
