package console

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
)

// ErrLoginRejected is a 2xx login answer without success or token.
var ErrLoginRejected = errors.New("login rejected by backend")

// LoginError carries the backend message of a rejected login.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return ErrLoginRejected.Error() + ": " + e.Message
}

func (e *LoginError) Is(target error) bool {
	return target == ErrLoginRejected
}

func (c *Console) login(ctx context.Context, email, password string) (string, error) {
	logger := common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryAuth)

	resp, err := c.Api.Login(ctx, email, password)
	if err != nil {
		logger.Info("Login failed", zap.String("email", email), zap.Error(err))
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		logger.Info("Login rejected", zap.String("email", email), zap.String("message", resp.Message))
		return "", &LoginError{Message: resp.Message}
	}

	logger.Info("Login succeeded", zap.String("email", email))
	return resp.Token, nil
}

func (c *Console) signup(ctx context.Context, name, email, password string) (string, error) {
	logger := common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryAuth)

	resp, err := c.Api.Signup(ctx, name, email, password)
	if err != nil {
		logger.Info("Signup failed", zap.String("email", email), zap.Error(err))
		return "", err
	}

	logger.Info("Signup done", zap.String("email", email), zap.String("message", resp.Message))
	return resp.Message, nil
}

func (c *Console) dashboard(ctx context.Context, token string) (*models.DashboardStats, error) {
	stats, err := c.as(token).Dashboard(ctx)
	if err != nil {
		common.GetCategoryLogger(common.LoggerNameConsoleCore, common.LoggerCategoryDashboard).
			Warn("Dashboard fetch failed", zap.Error(err))
		return nil, err
	}
	return stats, nil
}

type IAuthImpl struct {
	console *Console
}

func (ia *IAuthImpl) Login(ctx context.Context, email, password string) (string, error) {
	return ia.console.login(ctx, email, password)
}

func (ia *IAuthImpl) Signup(ctx context.Context, name, email, password string) (string, error) {
	return ia.console.signup(ctx, name, email, password)
}

func (ia *IAuthImpl) Dashboard(ctx context.Context, token string) (*models.DashboardStats, error) {
	return ia.console.dashboard(ctx, token)
}

func (c *Console) GetIAuth() IAuth {
	return &IAuthImpl{console: c}
}
