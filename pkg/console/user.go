package console

import (
	"context"

	"go.uber.org/zap"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
)

func userLogger() *zap.Logger {
	return common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryUser)
}

func (c *Console) saveUser(ctx context.Context, token string, id string, user *models.User) (string, error) {
	var message string
	var err error
	if id == "" {
		message, err = c.as(token).CreateUser(ctx, user)
	} else {
		message, err = c.as(token).UpdateUser(ctx, id, user)
	}

	if err != nil {
		userLogger().Warn("User save failed", zap.String("id", id), zap.String("email", user.Email), zap.Error(err))
		return "", err
	}

	userLogger().Info("User saved", zap.String("id", id), zap.String("email", user.Email))
	return message, nil
}

func (c *Console) deleteUser(ctx context.Context, token string, id string) (string, error) {
	message, err := c.as(token).DeleteUser(ctx, id)
	if err != nil {
		userLogger().Warn("User delete failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	userLogger().Info("User deleted", zap.String("id", id))
	return message, nil
}

func (c *Console) changePassword(ctx context.Context, token string, id string, newPassword string) (string, error) {
	message, err := c.as(token).ChangePassword(ctx, id, newPassword)
	if err != nil {
		userLogger().Warn("Password change failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	userLogger().Info("Password changed", zap.String("id", id))
	return message, nil
}

type IUserImpl struct {
	console *Console
}

func (iu *IUserImpl) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	return iu.console.as(token).ListUsers(ctx)
}

func (iu *IUserImpl) GetUser(ctx context.Context, token string, id string) (*models.UserDetail, error) {
	return iu.console.as(token).GetUser(ctx, id)
}

func (iu *IUserImpl) SaveUser(ctx context.Context, token string, id string, user *models.User) (string, error) {
	return iu.console.saveUser(ctx, token, id, user)
}

func (iu *IUserImpl) DeleteUser(ctx context.Context, token string, id string) (string, error) {
	return iu.console.deleteUser(ctx, token, id)
}

func (iu *IUserImpl) ChangePassword(ctx context.Context, token string, id string, newPassword string) (string, error) {
	return iu.console.changePassword(ctx, token, id, newPassword)
}

func (c *Console) GetIUser() IUser {
	return &IUserImpl{console: c}
}
