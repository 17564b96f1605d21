package api

import (
	"context"
	"net/http"

	"liyu1981.xyz/tank-console/pkg/models"
)

// Login exchanges credentials for a token. A 2xx answer with success=false
// is returned as-is; the caller decides how to present it.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.call(ctx, http.MethodPost, "/login", &models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	req := &models.SignupRequest{Name: name, Email: email, Password: password}
	if err := c.call(ctx, http.MethodPost, "/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.call(ctx, http.MethodGet, "/api/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
