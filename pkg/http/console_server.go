package http

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/console"
	"liyu1981.xyz/tank-console/pkg/session"
)

const loginPath = "/"

type ConsoleServer struct {
	Server       *gin.Engine
	Console      *console.Console
	Sessions     sessions.Store
	LoginLimiter *console.RateLimiterStore
	Views        *console.ViewStore
	Location     *time.Location
	Now          func() time.Time
}

func serverLogger(category string) *zap.Logger {
	return common.GetCategoryLogger(common.LoggerNameConsoleServer, category)
}

func (rs *ConsoleServer) now() time.Time {
	if rs.Now != nil {
		return rs.Now()
	}
	return time.Now()
}

func (rs *ConsoleServer) location() *time.Location {
	if rs.Location != nil {
		return rs.Location
	}
	return time.Local
}

func (rs *ConsoleServer) SetLoginLimit(loginRate float64, loginBurst int) {
	rs.LoginLimiter = console.NewRateLimiterStore(rate.Limit(loginRate), loginBurst)
	rs.LoginLimiter.Now = rs.now
}

// SweepIdle forgets the cached views and login limiters of sessions and
// clients idle for longer than maxIdle.
func (rs *ConsoleServer) SweepIdle(maxIdle time.Duration) {
	before := rs.now().Add(-maxIdle)
	views := rs.Views.Sweep(before)
	limiters := rs.LoginLimiter.Sweep(before)
	if views > 0 || limiters > 0 {
		serverLogger(common.LoggerCategorySessionSave).Info("Idle state swept",
			zap.Int("views", views), zap.Int("limiters", limiters))
	}
}

func (rs *ConsoleServer) Setup() {
	if rs.Views == nil {
		rs.Views = console.NewViewStore()
		rs.Views.Now = rs.now
	}
	rs.Server.SetHTMLTemplate(LoadTemplates())

	rs.Server.GET("/healthz", rs.HealthCheck)

	web := rs.Server.Group("/", session.Middleware(rs.Sessions))
	web.GET("/", rs.Home)
	web.POST("/login", rs.Login)
	web.POST("/signup", rs.Signup)

	protected := web.Group("/", session.RequireToken(loginPath))
	{
		protected.POST("/logout", rs.Logout)
		protected.GET("/dashboard", rs.Dashboard)

		protected.GET("/devices", rs.ListDevices)
		protected.GET("/devices/:id", rs.DeviceDetail)
		protected.GET("/devices/:id/readings", rs.DeviceReadings)
		protected.GET("/devices/:id/readings/nearest", rs.NearestReading)
		protected.GET("/devices/:id/delete", rs.ConfirmDeleteDevice)
		protected.POST("/devices/:id/delete", rs.DeleteDevice)
		protected.GET("/devices/:id/bind", rs.BindForm)
		protected.POST("/devices/:id/bind", rs.BindDevice)
		protected.GET("/devices/:id/unbind", rs.ConfirmUnbindDevice)
		protected.POST("/devices/:id/unbind", rs.UnbindDevice)

		protected.GET("/device-form", rs.EditForm)
		protected.POST("/device-form", rs.SubmitDevice)
		protected.GET("/device-form/:id", rs.EditForm)
		protected.POST("/device-form/:id", rs.SubmitDevice)

		protected.GET("/users", rs.ListUsers)
		protected.GET("/users/:id", rs.UserDetail)
		protected.GET("/users/:id/delete", rs.ConfirmDeleteUser)
		protected.POST("/users/:id/delete", rs.DeleteUser)
		protected.POST("/users/:id/change-password", rs.ChangePassword)
		protected.POST("/users/:id/notify", rs.Notify)
		protected.GET("/users/:id/devices/:deviceID/delete", rs.ConfirmDeleteUserDevice)
		protected.POST("/users/:id/devices/:deviceID/delete", rs.DeleteUserDevice)

		protected.GET("/update-user", rs.EditForm)
		protected.POST("/update-user", rs.SubmitUser)
		protected.GET("/update-user/:id", rs.EditForm)
		protected.POST("/update-user/:id", rs.SubmitUser)
	}
}

func (rs *ConsoleServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// page renders a full page. Pending flashes, including ones added while
// handling this request, are shown and consumed.
func (rs *ConsoleServer) page(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title

	s := session.FromContext(c)
	data["LoggedIn"] = s != nil && s.HasToken()
	if s != nil {
		if flashes := s.Flashes(); len(flashes) > 0 {
			data["Flashes"] = flashes
			if err := s.Save(); err != nil {
				serverLogger(common.LoggerCategorySessionSave).Warn("Flash save failed", zap.Error(err))
			}
		}
	}

	c.HTML(status, name, data)
}

func flash(c *gin.Context, kind session.FlashKind, message string) {
	session.FromContext(c).AddFlash(kind, message)
}

// redirect keeps the flashes queued for the next page.
func redirect(c *gin.Context, path string) {
	if err := session.FromContext(c).Save(); err != nil {
		serverLogger(common.LoggerCategorySessionSave).Warn("Session save failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, path)
}

func token(c *gin.Context) string {
	return session.FromContext(c).Token()
}

func sessionID(c *gin.Context) string {
	return session.FromContext(c).ID()
}

// rejected ends the session when the backend refused its token. It reports
// whether the response has been written.
func (rs *ConsoleServer) rejected(c *gin.Context, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}

	s := session.FromContext(c)
	serverLogger(common.LoggerCategoryAuth).Info("Backend rejected session token", zap.String("path", c.Request.URL.Path))

	rs.Views.Drop(s.ID())
	if clearErr := s.Clear(); clearErr != nil {
		serverLogger(common.LoggerCategorySessionSave).Warn("Session clear failed", zap.Error(clearErr))
	}
	s.AddFlash(session.FlashError, "Your session has expired, please log in again.")
	redirect(c, loginPath)
	return true
}

// dropBlankInputs removes posted values that are empty once trimmed, so a
// required field holding only spaces fails Required and an optional
// numeric input left blank reads as absent.
func dropBlankInputs(r *http.Request) {
	if err := r.ParseForm(); err != nil {
		return
	}
	for key, values := range r.PostForm {
		blank := true
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if blank {
			delete(r.PostForm, key)
			delete(r.Form, key)
		}
	}
}

// invalidFields lists the form fields a validation pass rejected.
func invalidFields[V any](issues map[string]V) string {
	fields := make([]string, 0, len(issues))
	for field := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
