package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/middleware/requestid"
)

type fakeChannel struct {
	name  string
	err   error
	panic bool
	block bool

	mu        sync.Mutex
	delivered []models.Notification
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Deliver(ctx context.Context, n models.Notification) error {
	if f.panic {
		panic("template exploded")
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	f.delivered = append(f.delivered, n)
	f.mu.Unlock()
	return f.err
}

func scrapeMetrics(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNotifySwallowsChannelFailures(t *testing.T) {
	metrics := NewMetricsService()
	healthy := &fakeChannel{name: "audit"}
	failing := &fakeChannel{name: "email", err: errors.New("sendgrid: 503")}
	panicking := &fakeChannel{name: "redis", panic: true}
	svc := NewNotificationService([]NotificationChannel{healthy, failing, panicking}, time.Second, metrics, nil)

	ctx := requestid.WithValue(context.Background(), "req-42")
	svc.Notify(ctx, models.NotificationStudentMigrated, "student-1", map[string]interface{}{"matricNumber": "PG/2024/00001"})

	require.Len(t, healthy.delivered, 1)
	assert.Equal(t, "req-42", healthy.delivered[0].RequestID)
	assert.Equal(t, "student-1", healthy.delivered[0].TargetID)

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, `notification_failures_total{channel="email"} 1`)
	assert.Contains(t, body, `notification_failures_total{channel="redis"} 1`)
	assert.NotContains(t, body, `notification_failures_total{channel="audit"}`)
}

func TestNotifyIgnoresCancelledCaller(t *testing.T) {
	ch := &fakeChannel{name: "audit"}
	svc := NewNotificationService([]NotificationChannel{ch}, time.Second, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Notify(ctx, models.NotificationPaymentStatus, "batch-1", nil)

	assert.Len(t, ch.delivered, 1)
}

func TestNotifyBoundsSlowChannels(t *testing.T) {
	slow := &fakeChannel{name: "email", block: true}
	svc := NewNotificationService([]NotificationChannel{slow}, 20*time.Millisecond, nil, nil)

	start := time.Now()
	svc.Notify(context.Background(), models.NotificationResultStatus, "batch-1", nil)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNilNotificationServiceIsNoop(t *testing.T) {
	var svc *NotificationService
	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), models.NotificationResultStatus, "batch-1", nil)
	})
}

type fakePublisher struct {
	published []models.Notification
}

func (f *fakePublisher) Publish(_ context.Context, n models.Notification) (int64, error) {
	f.published = append(f.published, n)
	return 1, nil
}

func TestRedisChannelPublishes(t *testing.T) {
	pub := &fakePublisher{}
	ch := NewRedisNotificationChannel(pub)

	require.NoError(t, ch.Deliver(context.Background(), models.Notification{Kind: models.NotificationPaymentStatus}))
	assert.Equal(t, "redis", ch.Name())
	assert.Len(t, pub.published, 1)
}

type fakeSender struct {
	sent []EmailMessage
}

func (f *fakeSender) Send(_ context.Context, msg EmailMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestEmailChannelRendersTemplates(t *testing.T) {
	sender := &fakeSender{}
	ch := NewEmailNotificationChannel(sender, "https://portal.example.edu/")

	err := ch.Deliver(context.Background(), models.Notification{
		Kind: models.NotificationStudentMigrated,
		Payload: map[string]interface{}{
			"email":              "amina@example.com",
			"name":               "Amina Yusuf",
			"matricNumber":       "PG/2024/00001",
			"registrationNumber": "REG2024000001",
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "amina@example.com", msg.ToEmail)
	assert.Contains(t, msg.Text, "Dear Amina Yusuf,")
	assert.Contains(t, msg.Text, "PG/2024/00001")
	assert.Contains(t, msg.Text, "https://portal.example.edu for details")
}

func TestEmailChannelSkipsUnaddressedOrUntemplated(t *testing.T) {
	sender := &fakeSender{}
	ch := NewEmailNotificationChannel(sender, "")

	require.NoError(t, ch.Deliver(context.Background(), models.Notification{Kind: models.NotificationApplicantStatus}))
	require.NoError(t, ch.Deliver(context.Background(), models.Notification{
		Kind:    models.NotificationPaymentStatus,
		Payload: map[string]interface{}{"email": "dcl@example.edu"},
	}))
	assert.Empty(t, sender.sent)
}

type fakeAuditWriter struct {
	logs []*models.AuditLog
}

func (f *fakeAuditWriter) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func TestAuditChannelRecordsNotification(t *testing.T) {
	writer := &fakeAuditWriter{}
	ch := NewAuditNotificationChannel(writer)

	err := ch.Deliver(context.Background(), models.Notification{
		Kind:     models.NotificationStudentGraduated,
		TargetID: "student-1",
		Payload:  map[string]interface{}{"actorId": "user-1"},
	})
	require.NoError(t, err)
	require.Len(t, writer.logs, 1)
	entry := writer.logs[0]
	assert.Equal(t, models.AuditActionStudentGraduate, entry.Action)
	assert.Equal(t, "student", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "student-1", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)

	var decoded models.Notification
	require.NoError(t, json.Unmarshal(entry.NewValues, &decoded))
	assert.Equal(t, models.NotificationStudentGraduated, decoded.Kind)
}

func TestSendGridSenderPostsMail(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	previous := sendgridHost
	sendgridHost = server.URL
	defer func() { sendgridHost = previous }()

	sender := NewSendGridSender("sg-key", "Academic Portal", "noreply@example.edu")
	err := sender.Send(context.Background(), EmailMessage{ToEmail: "amina@example.com", Subject: "Welcome", Text: "hello"})
	require.NoError(t, err)

	personalizations, ok := captured["personalizations"].([]interface{})
	require.True(t, ok)
	first := personalizations[0].(map[string]interface{})
	assert.Equal(t, "[Academic Portal] Welcome", first["subject"])
}

func TestSendGridSenderReportsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	previous := sendgridHost
	sendgridHost = server.URL
	defer func() { sendgridHost = previous }()

	err := NewSendGridSender("bad", "Portal", "noreply@example.edu").Send(context.Background(), EmailMessage{ToEmail: "a@example.com"})
	assert.Error(t, err)
}

func TestSendGridSenderSkipsCancelledContext(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	previous := sendgridHost
	sendgridHost = server.URL
	defer func() { sendgridHost = previous }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSendGridSender("sg-key", "Portal", "noreply@example.edu").Send(ctx, EmailMessage{ToEmail: "a@example.com", Subject: "Hi"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits)
}
