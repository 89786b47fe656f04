package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging. A client built without credentials
// is a no-op: IsEnabled reports false and sends fail fast.
type Client struct {
	client *messaging.Client
}

// NewClient initializes FCM from a service-account credentials file. An
// empty path disables push delivery instead of failing startup.
func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	if credentialsPath == "" {
		log.Println("No Firebase credentials configured, push alerts disabled")
		return &Client{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	log.Println("Firebase Cloud Messaging initialized")
	return &Client{client: client}, nil
}

// IsEnabled returns true if the FCM client is initialized.
func (c *Client) IsEnabled() bool {
	return c.client != nil
}

// SendMulticast sends one notification to multiple device tokens.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if c.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}
	if len(tokens) == 0 {
		return nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "fvg_alerts",
				Priority:  messaging.PriorityHigh,
			},
		},
	}

	response, err := c.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending multicast: %w", err)
	}

	log.Printf("Sent %d push messages (%d failures)", response.SuccessCount, response.FailureCount)
	return nil
}
