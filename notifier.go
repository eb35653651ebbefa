package auth

import (
	"context"
	"fmt"
)

// NotificationKind selects the mail template to deliver.
type NotificationKind string

const (
	// NotificationPasswordReset carries the reset secret
	NotificationPasswordReset NotificationKind = "password_reset"
	// NotificationEmailVerification carries the verification secret
	NotificationEmailVerification NotificationKind = "email_verification"
)

// Notifier delivers transactional auth mail. Implementations own transport
// and templating; the auth core only hands over the recipient and payload.
type Notifier interface {
	Send(ctx context.Context, to string, kind NotificationKind, data map[string]any) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, to string, kind NotificationKind, data map[string]any) error

// Send implements Notifier.
func (f NotifierFunc) Send(ctx context.Context, to string, kind NotificationKind, data map[string]any) error {
	if f == nil {
		return nil
	}
	return f(ctx, to, kind, data)
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, string, NotificationKind, map[string]any) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// PrintNotifier writes the notification to stdout. Development only.
type PrintNotifier struct{}

// Send implements Notifier.
func (PrintNotifier) Send(_ context.Context, to string, kind NotificationKind, data map[string]any) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", to)
	fmt.Printf("kind: %s\n", kind)
	if secret, ok := data["secret"]; ok {
		fmt.Printf("secret: %v\n", secret)
	}
	return nil
}
