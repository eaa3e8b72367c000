package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"wms/internal/models"
)

// CriticalTopic is the FCM topic driver devices subscribe to for full-bin alerts.
const CriticalTopic = "bins-critical"

// Sender delivers a single FCM message. *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService handles Firebase Cloud Messaging
type FCMService struct {
	client Sender
	log    *zap.Logger
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(ctx context.Context, credentialsFile string, log *zap.Logger) (*FCMService, error) {
	return newFCMService(ctx, option.WithCredentialsFile(credentialsFile), log)
}

// NewFCMServiceFromBase64 creates a new FCM service instance from base64-encoded credentials
// This is useful for cloud deployments where you can't upload files easily
func NewFCMServiceFromBase64(ctx context.Context, credentialsBase64 string, log *zap.Logger) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}
	return newFCMService(ctx, option.WithCredentialsJSON(credentialsJSON), log)
}

func newFCMService(ctx context.Context, opt option.ClientOption, log *zap.Logger) (*FCMService, error) {
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return NewFCMServiceWithSender(client, log), nil
}

// NewFCMServiceWithSender wraps an existing sender.
func NewFCMServiceWithSender(s Sender, log *zap.Logger) *FCMService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FCMService{client: s, log: log}
}

// CriticalBinMessage builds the alert sent when bin enters the critical band.
func CriticalBinMessage(bin models.Bin) *messaging.Message {
	return &messaging.Message{
		Topic: CriticalTopic,
		Notification: &messaging.Notification{
			Title: "Bin almost full",
			Body:  fmt.Sprintf("Bin #%d is %d%% full and needs collection.", bin.ID, bin.Status),
		},
		Data: map[string]string{
			"type":      "bin_critical",
			"bin_id":    strconv.FormatInt(bin.ID, 10),
			"status":    strconv.Itoa(bin.Status),
			"latitude":  strconv.FormatFloat(bin.Latitude, 'f', 6, 64),
			"longitude": strconv.FormatFloat(bin.Longitude, 'f', 6, 64),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}

// BinCritical notifies subscribed drivers that bin needs collection.
func (s *FCMService) BinCritical(ctx context.Context, bin models.Bin) error {
	response, err := s.client.Send(ctx, CriticalBinMessage(bin))
	if err != nil {
		return fmt.Errorf("error sending FCM message: %w", err)
	}
	s.log.Info("✅ FCM notification sent", zap.String("id", response), zap.Int64("bin_id", bin.ID))
	return nil
}
