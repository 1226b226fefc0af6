package service

import (
	"context"
)

// PushSender delivers a notification to a single device token through a
// push transport such as FCM.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}
