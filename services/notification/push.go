package notification

import (
	"cityportal/models"

	"firebase.google.com/go/v4/messaging"
)

// buildPushMessage renders n for a device. Both languages travel in the data payload.
func buildPushMessage(token string, n models.Notification, lang string) *messaging.Message {
	data := map[string]string{
		"notificationId": n.ID,
		"type":           n.Type,
		"titleEn":        n.Title.EN,
		"titleRu":        n.Title.RU,
		"bodyEn":         n.Body.EN,
		"bodyRu":         n.Body.RU,
	}
	if n.Link != "" {
		data["link"] = n.Link
	}
	for k, v := range n.Data {
		if _, taken := data[k]; !taken {
			data[k] = v
		}
	}

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title.Pick(lang),
			Body:  n.Body.Pick(lang),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "portal_notifications",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
