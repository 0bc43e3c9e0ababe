package api

import (
	"context"

	"pulasa-client/models"
)

type NotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// MyNotifications and NotificationCount are passive refreshes.
func (c *Client) MyNotifications(ctx context.Context) (*NotificationsResponse, error) {
	var resp NotificationsResponse
	if err := c.getPassive(ctx, "/api/notifications/my-notifications", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NotificationCount(ctx context.Context) (int, error) {
	var resp struct {
		UnreadCount int `json:"unreadCount"`
	}
	if err := c.getPassive(ctx, "/api/notifications/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.post(ctx, "/api/notifications/mark-read/"+id, nil, nil)
}
