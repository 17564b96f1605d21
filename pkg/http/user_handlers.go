package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/console"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/session"
)

func (rs *ConsoleServer) renderUsers(c *gin.Context, status int, users []models.User) {
	menu := console.NewUserMenu(c.Query(console.MenuQueryKey))
	rs.page(c, status, "users.tmpl", "Users", gin.H{
		"Rows": menu.Rows(users),
	})
}

func (rs *ConsoleServer) ListUsers(c *gin.Context) {
	users, err := rs.Console.Users.ListUsers(c.Request.Context(), token(c))
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		flash(c, session.FlashError, api.MessageOf(err, "Failed to fetch users"))
		users, _ = rs.Views.Users(sessionID(c))
		rs.renderUsers(c, http.StatusOK, users)
		return
	}

	rs.Views.SetUsers(sessionID(c), users)
	rs.renderUsers(c, http.StatusOK, users)
}

func (rs *ConsoleServer) ConfirmDeleteUser(c *gin.Context) {
	id := c.Param("id")
	question := "Are you sure you want to delete this user?"
	if users, ok := rs.Views.Users(sessionID(c)); ok {
		for _, u := range users {
			if u.UserID == rowID(c, "id") {
				question = "Are you sure you want to delete " + u.FullName + "?"
			}
		}
	}
	rs.confirm(c, "Delete User", question, "/users/"+id+"/delete", "/users")
}

func (rs *ConsoleServer) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	if confirmed(c) {
		if _, err := rs.Console.Users.DeleteUser(ctx, token(c), c.Param("id")); err != nil {
			if rs.rejected(c, err) {
				return
			}
			flash(c, session.FlashError, api.MessageOf(err, "Delete failed!"))
		} else {
			rs.Views.RemoveUser(sid, rowID(c, "id"))
			flash(c, session.FlashSuccess, "User deleted successfully!")
		}
	}

	users, ok := rs.Views.Users(sid)
	if !ok {
		var err error
		if users, err = rs.Console.Users.ListUsers(ctx, token(c)); err != nil {
			if rs.rejected(c, err) {
				return
			}
		} else {
			rs.Views.SetUsers(sid, users)
		}
	}
	rs.renderUsers(c, http.StatusOK, users)
}

func (rs *ConsoleServer) renderUserDetail(c *gin.Context, detail *models.UserDetail, extra gin.H) {
	userID := c.Param("id")
	data := gin.H{"ID": userID, "NotifyTitle": "", "NotifyBody": ""}
	for k, v := range extra {
		data[k] = v
	}

	if detail == nil {
		rs.page(c, http.StatusOK, "user_detail.tmpl", "User", data)
		return
	}

	menu := console.NewUserDeviceMenu(userID, c.Query(console.MenuQueryKey))
	data["User"] = detail.User
	data["Rows"] = menu.Rows(detail.Devices)
	rs.page(c, http.StatusOK, "user_detail.tmpl", detail.User.FullName, data)
}

// userDetail fetches the user page data; on failure it has already
// answered the request when it returns nil.
func (rs *ConsoleServer) userDetail(c *gin.Context) (*models.UserDetail, bool) {
	detail, err := rs.Console.Users.GetUser(c.Request.Context(), token(c), c.Param("id"))
	if err != nil {
		if rs.rejected(c, err) {
			return nil, false
		}
		message := "Failed to fetch user data."
		if api.IsNotFound(err) {
			message = "User not found."
		}
		rs.renderUserDetail(c, nil, gin.H{"Error": message})
		return nil, false
	}
	rs.Views.SetUserDetail(sessionID(c), detail)
	return detail, true
}

func (rs *ConsoleServer) UserDetail(c *gin.Context) {
	if detail, ok := rs.userDetail(c); ok {
		rs.renderUserDetail(c, detail, nil)
	}
}

// cachedUserDetail is the user page as last rendered, refetched when missing.
func (rs *ConsoleServer) cachedUserDetail(c *gin.Context) (*models.UserDetail, bool) {
	if detail, ok := rs.Views.UserDetail(sessionID(c), rowID(c, "id")); ok {
		return detail, true
	}
	return rs.userDetail(c)
}

type PasswordForm struct {
	NewPassword     string `zog:"new_password"`
	ConfirmPassword string `zog:"confirm_password"`
}

var passwordFormSchema = z.Struct(z.Shape{
	"NewPassword":     z.String().Required(),
	"ConfirmPassword": z.String().Required(),
})

func (rs *ConsoleServer) ChangePassword(c *gin.Context) {
	var form PasswordForm
	dropBlankInputs(c.Request)
	if errs := passwordFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		flash(c, session.FlashError, "Please fill both fields")
	} else if form.NewPassword != form.ConfirmPassword {
		flash(c, session.FlashError, "Passwords do not match")
	} else {
		message, err := rs.Console.Users.ChangePassword(c.Request.Context(), token(c), c.Param("id"), form.NewPassword)
		if err != nil {
			if rs.rejected(c, err) {
				return
			}
			flash(c, session.FlashError, api.MessageOf(err, "Error updating password"))
		} else {
			flash(c, session.FlashSuccess, messageOr(message, "Password updated"))
		}
	}

	redirect(c, "/users/"+c.Param("id"))
}

type NotifyForm struct {
	Title   string `zog:"title"`
	Message string `zog:"message"`
}

var notifyFormSchema = z.Struct(z.Shape{
	"Title":   z.String().Trim().Required(),
	"Message": z.String().Trim().Required(),
})

func (rs *ConsoleServer) Notify(c *gin.Context) {
	var form NotifyForm
	dropBlankInputs(c.Request)
	if errs := notifyFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		if detail, ok := rs.cachedUserDetail(c); ok {
			rs.renderUserDetail(c, detail, gin.H{
				"NotifyError": "Please enter both title and message",
				"NotifyTitle": c.PostForm("title"),
				"NotifyBody":  c.PostForm("message"),
			})
		}
		return
	}

	reply, err := rs.Console.Notify.Send(c.Request.Context(), token(c), c.Param("id"), form.Title, form.Message)
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		flash(c, session.FlashError, api.MessageOf(err, "Error sending notification"))
	} else {
		flash(c, session.FlashSuccess, messageOr(reply, "Notification sent"))
	}
	redirect(c, "/users/"+c.Param("id"))
}

func (rs *ConsoleServer) ConfirmDeleteUserDevice(c *gin.Context) {
	userID, deviceID := c.Param("id"), c.Param("deviceID")
	rs.confirm(c, "Delete Device", "Are you sure you want to delete this device?",
		"/users/"+userID+"/devices/"+deviceID+"/delete", "/users/"+userID)
}

// DeleteUserDevice deletes a device from the user page and drops only that
// row from the page as last rendered.
func (rs *ConsoleServer) DeleteUserDevice(c *gin.Context) {
	if confirmed(c) {
		if _, err := rs.Console.Devices.DeleteDevice(c.Request.Context(), token(c), c.Param("deviceID")); err != nil {
			if rs.rejected(c, err) {
				return
			}
			flash(c, session.FlashError, api.MessageOf(err, "Delete failed!"))
		} else {
			rs.Views.RemoveUserDevice(sessionID(c), rowID(c, "deviceID"))
			flash(c, session.FlashSuccess, "Device deleted successfully!")
		}
	}

	if detail, ok := rs.cachedUserDetail(c); ok {
		rs.renderUserDetail(c, detail, nil)
	}
}
