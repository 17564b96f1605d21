package console

import (
	"context"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/telemetry"
)

//go:generate mockgen -source=console.go -destination=mocks/mock_console.go -package=mocks

type IAuth interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, name, email, password string) (string, error)
	Dashboard(ctx context.Context, token string) (*models.DashboardStats, error)
}

type IDevice interface {
	ListDevices(ctx context.Context, token string) ([]models.Device, error)
	GetDevice(ctx context.Context, token string, id string) (*models.Device, error)
	SaveDevice(ctx context.Context, token string, id string, device *models.Device) (string, error)
	DeleteDevice(ctx context.Context, token string, id string) (string, error)
	BindDevice(ctx context.Context, token string, id string, userID int64) (string, error)
	UnbindDevice(ctx context.Context, token string, id string) (string, error)
	ListReadings(ctx context.Context, token string, id string, window telemetry.Window) ([]models.Reading, error)
}

type IUser interface {
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	GetUser(ctx context.Context, token string, id string) (*models.UserDetail, error)
	SaveUser(ctx context.Context, token string, id string, user *models.User) (string, error)
	DeleteUser(ctx context.Context, token string, id string) (string, error)
	ChangePassword(ctx context.Context, token string, id string, newPassword string) (string, error)
}

type INotify interface {
	Send(ctx context.Context, token string, userID, title, message string) (string, error)
}

// Console is the operator-facing core: every action goes through one of its
// services, which in turn call the backend API.
type Console struct {
	Api     *api.Client
	Auth    IAuth
	Devices IDevice
	Users   IUser
	Notify  INotify
}

type ServiceOpts struct {
	Auth    IAuth
	Devices IDevice
	Users   IUser
	Notify  INotify
}

func (c *Console) WithServices(opts ServiceOpts) *Console {
	if opts.Auth != nil {
		c.Auth = opts.Auth
	}
	if opts.Devices != nil {
		c.Devices = opts.Devices
	}
	if opts.Users != nil {
		c.Users = opts.Users
	}
	if opts.Notify != nil {
		c.Notify = opts.Notify
	}
	return c
}

// WithDefaultServices wires the API-backed implementation of every service.
func (c *Console) WithDefaultServices() *Console {
	return c.WithServices(ServiceOpts{
		Auth:    c.GetIAuth(),
		Devices: c.GetIDevice(),
		Users:   c.GetIUser(),
		Notify:  c.GetINotify(),
	})
}

func (c *Console) as(token string) *api.Client {
	return c.Api.WithToken(token)
}
