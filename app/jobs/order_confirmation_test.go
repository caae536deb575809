package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritahmida/boutique/app/jobs"
)

func TestHandleReturnsJoinedChannelErrors(t *testing.T) {
	job := jobs.OrderConfirmationJob{
		OrderID:     7,
		FullName:    "Amina Ben Salah",
		PhoneNumber: "21612345",
	}

	// No SMTP credentials configured, so the mail channel must fail and
	// Handle must surface that as a single error for the worker to retry.
	err := job.Handle()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_USERNAME")
}
