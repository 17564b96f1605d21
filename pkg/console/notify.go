package console

import (
	"context"

	"go.uber.org/zap"
	"liyu1981.xyz/tank-console/pkg/common"
)

func (c *Console) sendNotification(ctx context.Context, token string, userID, title, message string) (string, error) {
	logger := common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryNotify)

	logger.Info("Sending notification", zap.String("user_id", userID), zap.String("title", title))

	reply, err := c.as(token).SendNotification(ctx, userID, title, message)
	if err != nil {
		logger.Warn("Notification failed", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	logger.Info("Notification sent", zap.String("user_id", userID), zap.String("reply", reply))
	return reply, nil
}

type INotifyImpl struct {
	console *Console
}

func (in *INotifyImpl) Send(ctx context.Context, token string, userID, title, message string) (string, error) {
	return in.console.sendNotification(ctx, token, userID, title, message)
}

func (c *Console) GetINotify() INotify {
	return &INotifyImpl{console: c}
}
