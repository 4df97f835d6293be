package notification_service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/models"
	"gorm.io/gorm"
)

type Message struct {
	RecipientID uint64           `json:"recipient_id"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        string           `json:"type"`
	Reference   models.Reference `json:"reference"`
}

// Notifier is a one-way sink. Callers log a failed delivery and carry on.
type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

// Service stores every notification and, when NATS is connected, publishes
// it for the push/email fan-out.
type Service struct {
	DB      *gorm.DB
	Nats    *nats.Conn
	Subject string
	Now     func() time.Time
}

func NewService(db *gorm.DB, conn *nats.Conn, subject string) *Service {
	return &Service{
		DB:      db,
		Nats:    conn,
		Subject: subject,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Notify(ctx context.Context, message Message) error {
	notification := &models.Notification{
		RecipientID:   message.RecipientID,
		Title:         message.Title,
		Message:       message.Message,
		Type:          message.Type,
		ReferenceType: message.Reference.Type,
		ReferenceID:   message.Reference.ID,
		CreatedAt:     s.Now(),
	}

	if err := s.DB.WithContext(ctx).Create(notification).Error; err != nil {
		return err
	}

	if s.Nats == nil {
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return s.Nats.Publish(s.Subject, payload)
}

// Dispatch sends message and only logs a failure.
func Dispatch(ctx context.Context, notifier Notifier, message Message) {
	if notifier == nil {
		return
	}

	if err := notifier.Notify(ctx, message); err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"recipient_id": message.RecipientID,
			"type":         message.Type,
		}).Errorf("Failed to deliver notification: %v", err)
	}
}
