package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"liyu1981.xyz/tank-console/pkg/models"
)

func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	var resp models.DeviceListResponse
	if err := c.call(ctx, http.MethodGet, "/api/devices", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Devices == nil {
		return []models.Device{}, nil
	}
	return resp.Devices, nil
}

func (c *Client) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	var resp models.DeviceResponse
	if err := c.call(ctx, http.MethodGet, devicePath(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Device == nil {
		return nil, notFound("device", id)
	}
	return resp.Device, nil
}

func (c *Client) CreateDevice(ctx context.Context, device *models.Device) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodPost, "/api/devices", device, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) UpdateDevice(ctx context.Context, id string, device *models.Device) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodPut, devicePath(id), device, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DeleteDevice(ctx context.Context, id string) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodDelete, devicePath(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListReadings fetches the readings of one device between start and end.
func (c *Client) ListReadings(ctx context.Context, id string, start, end time.Time) ([]models.Reading, error) {
	var resp models.ReadingsResponse
	query := url.Values{"start": {FormatTime(start)}, "end": {FormatTime(end)}}
	path := devicePath(id, "readings") + "?" + query.Encode()
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

func (c *Client) BindDevice(ctx context.Context, id string, userID int64) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodPost, devicePath(id, "bind"), &models.BindRequest{UserID: userID}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) UnbindDevice(ctx context.Context, id string) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodPost, devicePath(id, "unbind"), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
