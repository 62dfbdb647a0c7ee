package remote

import (
	"context"
	"net/http"
)

func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	return listAll(func(page int) ([]Notification, *Pagination, error) {
		var notes []Notification
		env, err := c.do(ctx, http.MethodGet, "/api/v1/notifications", pageQuery(page), nil, &notes)
		if err != nil {
			return nil, nil, err
		}
		return notes, env.Pagination, nil
	})
}

func (c *Client) CreateNotification(ctx context.Context, req *NotificationRequest) (*Notification, error) {
	var note Notification
	_, err := c.do(ctx, http.MethodPost, "/api/v1/notifications", nil, req, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}
