package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

func TestDispatcherResultTable(t *testing.T) {
	d := DefaultDispatcher()
	cases := []struct {
		name    string
		action  string
		current models.ResultStatus
		want    models.ResultStatus
		cause   error
	}{
		{name: "approve pending", action: "approve", current: models.ResultStatusPending, want: models.ResultStatusApproved},
		{name: "reject pending", action: "reject", current: models.ResultStatusPending, want: models.ResultStatusRejected},
		{name: "release approved", action: "release", current: models.ResultStatusApproved, want: models.ResultStatusReleased},
		{name: "release pending", action: "release", current: models.ResultStatusPending, cause: ErrInvalidSource},
		{name: "approve released", action: "approve", current: models.ResultStatusReleased, cause: ErrTerminalStatus},
		{name: "release released", action: "release", current: models.ResultStatusReleased, cause: ErrAlreadyInStatus},
		{name: "approve rejected", action: "approve", current: models.ResultStatusRejected, cause: ErrTerminalStatus},
		{name: "reject approved", action: "reject", current: models.ResultStatusApproved, cause: ErrInvalidSource},
		{name: "unknown action", action: "archive", current: models.ResultStatusPending, cause: ErrUnknownAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := d.NextStatus(DomainResult, tc.action, string(tc.current))
			if tc.cause != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.cause), "got %v", err)
				var te *TransitionError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, DomainResult, te.Domain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(tc.want), next)
		})
	}
}

func TestDispatcherPaymentTable(t *testing.T) {
	d := DefaultDispatcher()

	next, err := d.NextStatus(DomainPayment, "GENERATE", "")
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusPending), next)

	next, err = d.NextStatus(DomainPayment, "approve", string(models.PaymentStatusPending))
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusApproved), next)

	next, err = d.NextStatus(DomainPayment, "PAY", string(models.PaymentStatusApproved))
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusPaid), next)

	_, err = d.NextStatus(DomainPayment, "PAY", string(models.PaymentStatusPending))
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = d.NextStatus(DomainPayment, "APPROVE", string(models.PaymentStatusPaid))
	assert.ErrorIs(t, err, ErrTerminalStatus)

	_, err = d.NextStatus(DomainPayment, "GENERATE", string(models.PaymentStatusPending))
	assert.ErrorIs(t, err, ErrCreateOnlyAction)
}

func TestDispatcherRegisterCustomDomain(t *testing.T) {
	d := DefaultDispatcher()
	const thesis Domain = "thesis"
	require.NoError(t, d.Register(thesis,
		Rule{Action: "submit", From: "DRAFT", To: "SUBMITTED"},
		Rule{Action: "defend", From: "SUBMITTED", To: "DEFENDED"},
	))

	next, err := d.NextStatus(thesis, "Submit", "DRAFT")
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", next)
	assert.True(t, d.IsTerminal(thesis, "DEFENDED"))
	assert.False(t, d.IsTerminal(thesis, "SUBMITTED"))
	assert.Equal(t, []string{"defend", "submit"}, d.Actions(thesis))

	err = d.Register(thesis, Rule{Action: "SUBMIT", From: "X", To: "Y"})
	assert.ErrorIs(t, err, ErrDuplicateRule)

	_, err = d.NextStatus("unknown", "submit", "DRAFT")
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestDispatcherTerminalStates(t *testing.T) {
	d := DefaultDispatcher()
	assert.True(t, d.IsTerminal(DomainResult, string(models.ResultStatusReleased)))
	assert.True(t, d.IsTerminal(DomainResult, string(models.ResultStatusRejected)))
	assert.False(t, d.IsTerminal(DomainResult, string(models.ResultStatusPending)))
	assert.True(t, d.IsTerminal(DomainPayment, string(models.PaymentStatusPaid)))
	assert.False(t, d.IsTerminal(DomainPayment, string(models.PaymentStatusPending)))
}
