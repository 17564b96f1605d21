package api

import (
	"context"
	"net/http"

	"liyu1981.xyz/tank-console/pkg/models"
)

// ListUsers returns every user. Some backends answer 200 with success=false;
// that is reported as a server error carrying their message.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp models.UserListResponse
	if err := c.call(ctx, http.MethodGet, "/api/users", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Success != nil && !*resp.Success {
		return nil, NewAPIError(ErrorCodeServerError, resp.Message, http.StatusOK)
	}
	if resp.Users == nil {
		return []models.User{}, nil
	}
	return resp.Users, nil
}

// GetUser returns the user together with the devices bound to it.
func (c *Client) GetUser(ctx context.Context, id string) (*models.UserDetail, error) {
	var resp models.UserDetail
	if err := c.call(ctx, http.MethodGet, userPath(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, notFound("user", id)
	}
	if resp.Devices == nil {
		resp.Devices = []models.Device{}
	}
	return &resp, nil
}

func (c *Client) CreateUser(ctx context.Context, user *models.User) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodPost, "/api/users", user, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, user *models.User) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodPut, userPath(id), user, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodDelete, userPath(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ChangePassword(ctx context.Context, id string, newPassword string) (string, error) {
	var resp models.MessageResponse
	req := &models.ChangePasswordRequest{NewPassword: newPassword}
	if err := c.call(ctx, http.MethodPost, userPath(id, "change-password"), req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) SendNotification(ctx context.Context, userID, title, message string) (string, error) {
	var resp models.MessageResponse
	req := &models.NotifyRequest{UserID: userID, Title: title, Message: message}
	if err := c.call(ctx, http.MethodPost, "/api/notify/send", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
