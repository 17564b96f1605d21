package console

import (
	"context"

	"go.uber.org/zap"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/telemetry"
)

func deviceLogger() *zap.Logger {
	return common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryDevice)
}

func (c *Console) saveDevice(ctx context.Context, token string, id string, device *models.Device) (string, error) {
	logger := deviceLogger()

	var message string
	var err error
	if id == "" {
		message, err = c.as(token).CreateDevice(ctx, device)
	} else {
		message, err = c.as(token).UpdateDevice(ctx, id, device)
	}

	if err != nil {
		logger.Warn("Device save failed", zap.String("id", id), zap.Reflect("device", device), zap.Error(err))
		return "", err
	}

	logger.Info("Device saved", zap.String("id", id), zap.Reflect("device", device))
	return message, nil
}

func (c *Console) deleteDevice(ctx context.Context, token string, id string) (string, error) {
	message, err := c.as(token).DeleteDevice(ctx, id)
	if err != nil {
		deviceLogger().Warn("Device delete failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	deviceLogger().Info("Device deleted", zap.String("id", id))
	return message, nil
}

func (c *Console) bindDevice(ctx context.Context, token string, id string, userID int64) (string, error) {
	message, err := c.as(token).BindDevice(ctx, id, userID)
	if err != nil {
		deviceLogger().Warn("Device bind failed", zap.String("id", id), zap.Int64("user_id", userID), zap.Error(err))
		return "", err
	}
	deviceLogger().Info("Device bound", zap.String("id", id), zap.Int64("user_id", userID))
	return message, nil
}

func (c *Console) unbindDevice(ctx context.Context, token string, id string) (string, error) {
	message, err := c.as(token).UnbindDevice(ctx, id)
	if err != nil {
		deviceLogger().Warn("Device unbind failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	deviceLogger().Info("Device unbound", zap.String("id", id))
	return message, nil
}

func (c *Console) listReadings(ctx context.Context, token string, id string, window telemetry.Window) ([]models.Reading, error) {
	logger := common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryTelemetry)

	readings, err := c.as(token).ListReadings(ctx, id, window.Start, window.End)
	if err != nil {
		logger.Warn("Readings fetch failed", zap.String("id", id), zap.Time("start", window.Start), zap.Time("end", window.End), zap.Error(err))
		return nil, err
	}

	logger.Debug("Readings fetched", zap.String("id", id), zap.Int("count", len(readings)))
	return readings, nil
}

type IDeviceImpl struct {
	console *Console
}

func (di *IDeviceImpl) ListDevices(ctx context.Context, token string) ([]models.Device, error) {
	return di.console.as(token).ListDevices(ctx)
}

func (di *IDeviceImpl) GetDevice(ctx context.Context, token string, deviceID string) (*models.Device, error) {
	return di.console.as(token).GetDevice(ctx, deviceID)
}

func (di *IDeviceImpl) SaveDevice(ctx context.Context, token string, deviceID string, device *models.Device) (string, error) {
	return di.console.saveDevice(ctx, token, deviceID, device)
}

func (di *IDeviceImpl) DeleteDevice(ctx context.Context, token string, deviceID string) (string, error) {
	return di.console.deleteDevice(ctx, token, deviceID)
}

func (di *IDeviceImpl) BindDevice(ctx context.Context, token string, deviceID string, userID int64) (string, error) {
	return di.console.bindDevice(ctx, token, deviceID, userID)
}

func (di *IDeviceImpl) UnbindDevice(ctx context.Context, token string, deviceID string) (string, error) {
	return di.console.unbindDevice(ctx, token, deviceID)
}

func (di *IDeviceImpl) ListReadings(ctx context.Context, token string, deviceID string, window telemetry.Window) ([]models.Reading, error) {
	return di.console.listReadings(ctx, token, deviceID, window)
}

func (c *Console) GetIDevice() IDevice {
	return &IDeviceImpl{console: c}
}
