package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

func newAdmissionFixture(status models.ApplicantStatus) (*AdmissionService, *stubApplicantRepo, *recordingNotifier, *countingInvalidator) {
	repo := &stubApplicantRepo{applicants: map[string]*models.Applicant{
		"app-1": {ID: "app-1", FullName: "Amina Yusuf", Email: "amina@example.com", Status: status},
	}}
	hooks, notifier, dashboard := testHooks()
	svc := NewAdmissionService(repo, hooks, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo, notifier, dashboard
}

func inviteRequest() dto.InviteRequest {
	return dto.InviteRequest{Venue: "Senate Hall", ScheduledAt: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}
}

func TestInviteSendsNotification(t *testing.T) {
	svc, _, notifier, dashboard := newAdmissionFixture(models.ApplicantStatusUnderReview)

	out, err := svc.Invite(context.Background(), "app-1", inviteRequest(), testActor())
	require.NoError(t, err)
	assert.True(t, out.Success)
	require.Len(t, notifier.sent, 1)
	sent := notifier.sent[0]
	assert.Equal(t, models.NotificationAdmissionInvite, sent.kind)
	assert.Equal(t, "Senate Hall", sent.payload["venue"])
	assert.Equal(t, "Monday, 20 May 2024 09:00 UTC", sent.payload["scheduledAt"])
	assert.Zero(t, dashboard.calls)
}

func TestInviteRejectsDecidedApplicants(t *testing.T) {
	svc, _, notifier, _ := newAdmissionFixture(models.ApplicantStatusApproved)

	out, err := svc.Invite(context.Background(), "app-1", inviteRequest(), nil)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, workflow.OutcomeGuardRejected, out.Outcome)
	assert.Empty(t, notifier.sent)
}

func TestInviteValidation(t *testing.T) {
	svc, _, _, _ := newAdmissionFixture(models.ApplicantStatusPending)

	_, err := svc.Invite(context.Background(), "app-1", dto.InviteRequest{ScheduledAt: time.Now()}, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	past := inviteRequest()
	past.ScheduledAt = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	_, err = svc.Invite(context.Background(), "app-1", past, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestInviteUnknownApplicant(t *testing.T) {
	svc, _, _, _ := newAdmissionFixture(models.ApplicantStatusPending)

	out, err := svc.Invite(context.Background(), "missing", inviteRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.OutcomeNotFound, out.Outcome)
}

func TestNotifyStatus(t *testing.T) {
	svc, _, notifier, _ := newAdmissionFixture(models.ApplicantStatusAwaitingPayment)

	out, err := svc.NotifyStatus(context.Background(), "app-1", nil)
	require.NoError(t, err)
	assert.True(t, out.Success)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "AWAITING_PAYMENT", notifier.sent[0].payload["status"])

	missing, err := svc.NotifyStatus(context.Background(), "missing", nil)
	require.NoError(t, err)
	assert.False(t, missing.Success)
	assert.Equal(t, workflow.OutcomeNotFound, missing.Outcome)
}

func TestNotifyStatusDatastoreFailure(t *testing.T) {
	svc, repo, _, _ := newAdmissionFixture(models.ApplicantStatusPending)
	repo.err = errors.New("timeout")

	_, err := svc.NotifyStatus(context.Background(), "app-1", nil)
	assert.ErrorIs(t, err, appErrors.ErrTransitionFailed)
}
