package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/session"
)

type LoginForm struct {
	Email    string `zog:"email"`
	Password string `zog:"password"`
}

var loginFormSchema = z.Struct(z.Shape{
	"Email":    z.String().Trim().Required(),
	"Password": z.String().Required(),
})

type SignupForm struct {
	Name     string `zog:"name"`
	Email    string `zog:"email"`
	Password string `zog:"password"`
}

var signupFormSchema = z.Struct(z.Shape{
	"Name":     z.String().Trim().Required(),
	"Email":    z.String().Trim().Email().Required(),
	"Password": z.String().Required(),
})

const (
	modeLogin  = "login"
	modeSignup = "signup"
)

func (rs *ConsoleServer) renderLogin(c *gin.Context, status int, mode string, message string, email string, name string) {
	title := "Login"
	if mode == modeSignup {
		title = "Signup"
	}
	rs.page(c, status, "login.tmpl", title, gin.H{
		"Mode":    mode,
		"Signup":  mode == modeSignup,
		"Message": message,
		"Email":   email,
		"Name":    name,
	})
}

func (rs *ConsoleServer) Home(c *gin.Context) {
	if session.FromContext(c).HasToken() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	mode := modeLogin
	if c.Query("mode") == modeSignup {
		mode = modeSignup
	}
	rs.renderLogin(c, http.StatusOK, mode, "", "", "")
}

func (rs *ConsoleServer) Login(c *gin.Context) {
	logger := serverLogger(common.LoggerCategoryAuth)

	if !rs.LoginLimiter.Allow(c.ClientIP()) {
		logger.Warn("Login rate limited", zap.String("ip", c.ClientIP()))
		rs.renderLogin(c, http.StatusTooManyRequests, modeLogin, "Too many login attempts, please try again later.", "", "")
		return
	}

	var form LoginForm
	dropBlankInputs(c.Request)
	if errs := loginFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		rs.renderLogin(c, http.StatusBadRequest, modeLogin, "Please enter email and password", c.PostForm("email"), "")
		return
	}

	token, err := rs.Console.Auth.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		rs.renderLogin(c, http.StatusUnauthorized, modeLogin, api.MessageOf(err, "Login failed"), form.Email, "")
		return
	}

	s := session.FromContext(c)
	rs.Views.Drop(s.ID())
	if err := s.Init(token); err != nil {
		logger.Error("Session init failed", zap.Error(err))
		rs.renderLogin(c, http.StatusInternalServerError, modeLogin, "Login failed", form.Email, "")
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (rs *ConsoleServer) Signup(c *gin.Context) {
	var form SignupForm
	dropBlankInputs(c.Request)
	if errs := signupFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		rs.renderLogin(c, http.StatusBadRequest, modeSignup, "Please check: "+invalidFields(errs), c.PostForm("email"), c.PostForm("name"))
		return
	}

	message, err := rs.Console.Auth.Signup(c.Request.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		rs.renderLogin(c, http.StatusOK, modeSignup, api.MessageOf(err, "Signup failed"), form.Email, form.Name)
		return
	}

	rs.renderLogin(c, http.StatusOK, modeSignup, message, "", "")
}

func (rs *ConsoleServer) Logout(c *gin.Context) {
	s := session.FromContext(c)
	rs.Views.Drop(s.ID())
	if err := s.Clear(); err != nil {
		serverLogger(common.LoggerCategorySessionSave).Warn("Session clear failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, loginPath)
}

func (rs *ConsoleServer) Dashboard(c *gin.Context) {
	stats, err := rs.Console.Auth.Dashboard(c.Request.Context(), token(c))
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		stats = &models.DashboardStats{}
	}
	rs.page(c, http.StatusOK, "dashboard.tmpl", "Dashboard", gin.H{"Stats": stats})
}
