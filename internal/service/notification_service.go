package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/middleware/requestid"
)

// NotificationChannel delivers a notification to one destination.
type NotificationChannel interface {
	Name() string
	Deliver(ctx context.Context, n models.Notification) error
}

// NotificationService fans a notification out to every channel. Delivery is
// awaited but never reported to the caller: failures are logged and counted.
type NotificationService struct {
	channels []NotificationChannel
	timeout  time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(channels []NotificationChannel, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &NotificationService{channels: channels, timeout: timeout, metrics: metrics, logger: logger, now: time.Now}
}

// Notify delivers to all channels concurrently, each bounded by the configured
// timeout. It detaches from ctx cancellation because the transition it reports
// has already committed.
func (s *NotificationService) Notify(ctx context.Context, kind models.NotificationKind, targetID string, payload map[string]interface{}) {
	if s == nil || len(s.channels) == 0 {
		return
	}
	n := models.Notification{
		Kind:       kind,
		TargetID:   targetID,
		Payload:    payload,
		RequestID:  requestid.FromContext(ctx),
		OccurredAt: s.now().UTC(),
	}
	base := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for _, ch := range s.channels {
		wg.Add(1)
		go func(ch NotificationChannel) {
			defer wg.Done()
			s.deliver(base, ch, n)
		}(ch)
	}
	wg.Wait()
}

func (s *NotificationService) deliver(ctx context.Context, ch NotificationChannel, n models.Notification) {
	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
		s.metrics.RecordNotification(ch.Name(), time.Since(start), err)
		if err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("kind", string(n.Kind)),
				zap.String("target_id", n.TargetID),
				zap.String("request_id", n.RequestID),
				zap.Error(err),
			)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err = ch.Deliver(cctx, n)
}

type notificationPublisher interface {
	Publish(ctx context.Context, n models.Notification) (int64, error)
}

type redisNotificationChannel struct {
	publisher notificationPublisher
}

// NewRedisNotificationChannel publishes notifications on Redis pub/sub.
func NewRedisNotificationChannel(publisher notificationPublisher) NotificationChannel {
	return &redisNotificationChannel{publisher: publisher}
}

func (c *redisNotificationChannel) Name() string { return "redis" }

func (c *redisNotificationChannel) Deliver(ctx context.Context, n models.Notification) error {
	_, err := c.publisher.Publish(ctx, n)
	return err
}

type emailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type emailNotificationChannel struct {
	sender    emailSender
	portalURL string
}

// NewEmailNotificationChannel emails applicants and students. Kinds without an
// email template, or payloads without an "email" entry, are skipped.
func NewEmailNotificationChannel(sender emailSender, portalURL string) NotificationChannel {
	return &emailNotificationChannel{sender: sender, portalURL: strings.TrimRight(portalURL, "/")}
}

func (c *emailNotificationChannel) Name() string { return "email" }

func (c *emailNotificationChannel) Deliver(ctx context.Context, n models.Notification) error {
	msg, ok := renderEmail(n, c.portalURL)
	if !ok {
		return nil
	}
	return c.sender.Send(ctx, msg)
}

func renderEmail(n models.Notification, portalURL string) (EmailMessage, bool) {
	to := payloadString(n.Payload, "email")
	if to == "" {
		return EmailMessage{}, false
	}
	name := payloadString(n.Payload, "name")
	msg := EmailMessage{ToName: name, ToEmail: to}
	greeting := "Dear applicant,"
	if name != "" {
		greeting = fmt.Sprintf("Dear %s,", name)
	}

	switch n.Kind {
	case models.NotificationAdmissionInvite:
		msg.Subject = "Invitation to the admission exercise"
		msg.Text = fmt.Sprintf("%s\n\nYou are invited to the admission exercise at %s on %s.\n%s",
			greeting, payloadString(n.Payload, "venue"), payloadString(n.Payload, "scheduledAt"), payloadString(n.Payload, "note"))
	case models.NotificationApplicantStatus:
		msg.Subject = "Update on your application"
		msg.Text = fmt.Sprintf("%s\n\nThe status of your application is now %s.", greeting, payloadString(n.Payload, "status"))
	case models.NotificationStudentMigrated:
		msg.Subject = "Welcome to the programme"
		msg.Text = fmt.Sprintf("%s\n\nYour student record has been created.\nMatric number: %s\nRegistration number: %s",
			greeting, payloadString(n.Payload, "matricNumber"), payloadString(n.Payload, "registrationNumber"))
	case models.NotificationStudentGraduated:
		msg.Subject = "Congratulations on your graduation"
		msg.Text = fmt.Sprintf("%s\n\nYour record (%s) has been marked as graduated.", greeting, payloadString(n.Payload, "matricNumber"))
	default:
		return EmailMessage{}, false
	}
	if portalURL != "" {
		msg.Text += "\n\nSign in at " + portalURL + " for details."
	}
	return msg, true
}

type auditLogWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type auditNotificationChannel struct {
	repo auditLogWriter
}

// NewAuditNotificationChannel records every notification in audit_logs.
func NewAuditNotificationChannel(repo auditLogWriter) NotificationChannel {
	return &auditNotificationChannel{repo: repo}
}

func (c *auditNotificationChannel) Name() string { return "audit" }

func (c *auditNotificationChannel) Deliver(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	action, resource := auditTarget(n.Kind)
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		NewValues: body,
	}
	if n.TargetID != "" {
		target := n.TargetID
		entry.ResourceID = &target
	}
	if actor := payloadString(n.Payload, "actorId"); actor != "" {
		entry.UserID = &actor
	}
	return c.repo.CreateAuditLog(ctx, entry)
}

func auditTarget(kind models.NotificationKind) (string, string) {
	switch kind {
	case models.NotificationStudentMigrated:
		return models.AuditActionStudentMigrate, "student"
	case models.NotificationStudentGraduated:
		return models.AuditActionStudentGraduate, "student"
	case models.NotificationResultStatus:
		return models.AuditActionResultTransition, "result_batch"
	case models.NotificationPaymentStatus:
		return models.AuditActionPaymentTransition, "lecturer_payment"
	case models.NotificationAssignmentChanged:
		return models.AuditActionAssignmentChange, "student_programme"
	default:
		return models.AuditActionNotification, "applicant"
	}
}

func payloadString(payload map[string]interface{}, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format("Monday, 02 January 2006 15:04")
	default:
		return fmt.Sprint(t)
	}
}
