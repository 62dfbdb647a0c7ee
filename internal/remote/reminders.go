package remote

import (
	"context"
	"net/http"
	"strconv"
)

func (c *Client) ListReminders(ctx context.Context) ([]Reminder, error) {
	return listAll(func(page int) ([]Reminder, *Pagination, error) {
		var rems []Reminder
		env, err := c.do(ctx, http.MethodGet, "/api/v1/reminders", pageQuery(page), nil, &rems)
		if err != nil {
			return nil, nil, err
		}
		return rems, env.Pagination, nil
	})
}

func (c *Client) CreateReminder(ctx context.Context, req *ReminderRequest) (*Reminder, error) {
	var rem Reminder
	_, err := c.do(ctx, http.MethodPost, "/api/v1/reminders", nil, req, &rem)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (c *Client) UpdateReminder(ctx context.Context, id int64, req *ReminderRequest) (*Reminder, error) {
	var rem Reminder
	_, err := c.do(ctx, http.MethodPut, "/api/v1/reminders/"+strconv.FormatInt(id, 10), nil, req, &rem)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (c *Client) DeleteReminder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/reminders/"+strconv.FormatInt(id, 10), nil, nil, nil)
	return err
}

// ToggleReminder flips the server-side active flag.
func (c *Client) ToggleReminder(ctx context.Context, id int64, active bool) (*Reminder, error) {
	var rem Reminder
	body := map[string]bool{"is_active": active}
	_, err := c.do(ctx, http.MethodPatch, "/api/v1/reminders/"+strconv.FormatInt(id, 10)+"/toggle", nil, body, &rem)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}
