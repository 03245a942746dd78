package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestStatusPending.Terminal())
	assert.False(t, RequestStatusApproved.Terminal())
	assert.True(t, RequestStatusExecuted.Terminal())
	assert.True(t, RequestStatusRejected.Terminal())
	assert.True(t, RequestStatusExpired.Terminal())
}

func TestRecoveryRequestExpiredAt(t *testing.T) {
	deadline := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	request := &RecoveryRequest{
		Status:         RequestStatusPending,
		ExpirationTime: deadline,
	}

	assert.False(t, request.ExpiredAt(deadline.Add(-time.Second)))
	// the window closes after the deadline instant, not at it
	assert.False(t, request.ExpiredAt(deadline))
	assert.True(t, request.ExpiredAt(deadline.Add(time.Second)))

	request.Status = RequestStatusApproved
	assert.True(t, request.ExpiredAt(deadline.Add(time.Second)))

	// terminal statuses never expire
	request.Status = RequestStatusExecuted
	assert.False(t, request.ExpiredAt(deadline.Add(time.Hour)))
}

func TestRecoverySettingsRecipients(t *testing.T) {
	settings := &RecoverySettings{}
	assert.NoError(t, settings.SetRecipients([]string{"bob", "carol"}))

	recipients, err := settings.Recipients()
	assert.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, recipients)
}
