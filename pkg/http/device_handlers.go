package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/console"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/session"
)

func rowID(c *gin.Context, param string) int64 {
	id, _ := strconv.ParseInt(c.Param(param), 10, 64)
	return id
}

func (rs *ConsoleServer) renderDevices(c *gin.Context, status int, devices []models.Device) {
	menu := console.NewDeviceMenu(c.Query(console.MenuQueryKey))
	rs.page(c, status, "devices.tmpl", "Devices", gin.H{
		"Rows": menu.Rows(devices),
	})
}

// cachedDevices is the list the operator last saw, fetched when there is none.
func (rs *ConsoleServer) cachedDevices(c *gin.Context) ([]models.Device, error) {
	if devices, ok := rs.Views.Devices(sessionID(c)); ok {
		return devices, nil
	}
	devices, err := rs.Console.Devices.ListDevices(c.Request.Context(), token(c))
	if err != nil {
		return nil, err
	}
	rs.Views.SetDevices(sessionID(c), devices)
	return devices, nil
}

func (rs *ConsoleServer) ListDevices(c *gin.Context) {
	devices, err := rs.Console.Devices.ListDevices(c.Request.Context(), token(c))
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		flash(c, session.FlashError, api.MessageOf(err, "Failed to fetch devices"))
		devices, _ = rs.Views.Devices(sessionID(c))
		rs.renderDevices(c, http.StatusOK, devices)
		return
	}

	rs.Views.SetDevices(sessionID(c), devices)
	rs.renderDevices(c, http.StatusOK, devices)
}

func (rs *ConsoleServer) confirm(c *gin.Context, title, question, action, cancel string) {
	rs.page(c, http.StatusOK, "confirm.tmpl", title, gin.H{
		"Question": question,
		"Action":   action,
		"Cancel":   cancel,
	})
}

func confirmed(c *gin.Context) bool {
	return c.PostForm("confirm") == "yes"
}

func (rs *ConsoleServer) ConfirmDeleteDevice(c *gin.Context) {
	id := c.Param("id")
	rs.confirm(c, "Delete Device", "Are you sure you want to delete this device?", "/devices/"+id+"/delete", "/devices")
}

// DeleteDevice removes the device at the backend and then only that row
// from the operator's list, which is rendered without a refetch.
func (rs *ConsoleServer) DeleteDevice(c *gin.Context) {
	if confirmed(c) {
		if _, err := rs.Console.Devices.DeleteDevice(c.Request.Context(), token(c), c.Param("id")); err != nil {
			if rs.rejected(c, err) {
				return
			}
			flash(c, session.FlashError, api.MessageOf(err, "Delete failed!"))
		} else {
			rs.Views.RemoveDevice(sessionID(c), rowID(c, "id"))
			flash(c, session.FlashSuccess, "Device deleted successfully!")
		}
	}

	devices, err := rs.cachedDevices(c)
	if err != nil && rs.rejected(c, err) {
		return
	}
	rs.renderDevices(c, http.StatusOK, devices)
}

type BindForm struct {
	UserID int `zog:"user_id"`
}

var bindFormSchema = z.Struct(z.Shape{
	"UserID": z.Int().Required().GT(0),
})

// bindOwner finds the current owner of the device among users.
func bindOwner(device *models.Device, users []models.User) string {
	if device == nil || !device.IsBound() {
		return "None"
	}
	for _, u := range users {
		if u.UserID == *device.IotUserID {
			return u.FullName
		}
	}
	return "Unknown"
}

func (rs *ConsoleServer) bindTarget(c *gin.Context) (*models.Device, error) {
	if devices, ok := rs.Views.Devices(sessionID(c)); ok {
		id := rowID(c, "id")
		for i := range devices {
			if devices[i].ID == id {
				return &devices[i], nil
			}
		}
	}
	return rs.Console.Devices.GetDevice(c.Request.Context(), token(c), c.Param("id"))
}

func (rs *ConsoleServer) renderBind(c *gin.Context, status int, message string) {
	ctx := c.Request.Context()

	device, err := rs.bindTarget(c)
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		flash(c, session.FlashError, api.MessageOf(err, "Failed to fetch device data."))
		redirect(c, "/devices")
		return
	}

	users, err := rs.Console.Users.ListUsers(ctx, token(c))
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		flash(c, session.FlashError, api.MessageOf(err, "Failed to fetch users"))
		users = []models.User{}
	}

	var owner int64
	if device.IsBound() {
		owner = *device.IotUserID
	}

	rs.page(c, status, "bind.tmpl", "Bind Device", gin.H{
		"Device":  device,
		"Owner":   bindOwner(device, users),
		"OwnerID": owner,
		"Users":   users,
		"Message": message,
	})
}

func (rs *ConsoleServer) BindForm(c *gin.Context) {
	rs.renderBind(c, http.StatusOK, "")
}

// BindDevice binds, updates the owner in the operator's list, then
// refetches the list before rendering it.
func (rs *ConsoleServer) BindDevice(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	var form BindForm
	dropBlankInputs(c.Request)
	if errs := bindFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		rs.renderBind(c, http.StatusBadRequest, "Select a user first!")
		return
	}
	userID := int64(form.UserID)

	message, err := rs.Console.Devices.BindDevice(ctx, token(c), c.Param("id"), userID)
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		rs.renderBind(c, http.StatusOK, api.MessageOf(err, "Bind failed!"))
		return
	}
	flash(c, session.FlashSuccess, messageOr(message, "Device bound successfully!"))
	rs.Views.SetDeviceOwner(sid, rowID(c, "id"), &userID)

	devices, err := rs.Console.Devices.ListDevices(ctx, token(c))
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		serverLogger(common.LoggerCategoryDevice).Warn("Device refetch after bind failed", zap.Error(err))
		devices, _ = rs.Views.Devices(sid)
	} else {
		rs.Views.SetDevices(sid, devices)
	}
	rs.renderDevices(c, http.StatusOK, devices)
}

func (rs *ConsoleServer) ConfirmUnbindDevice(c *gin.Context) {
	id := c.Param("id")
	rs.confirm(c, "Unbind Device", "Are you sure you want to unbind this device?", "/devices/"+id+"/unbind", "/devices/"+id)
}

func (rs *ConsoleServer) UnbindDevice(c *gin.Context) {
	id := c.Param("id")
	if !confirmed(c) {
		redirect(c, "/devices/"+id)
		return
	}

	message, err := rs.Console.Devices.UnbindDevice(c.Request.Context(), token(c), id)
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		flash(c, session.FlashError, api.MessageOf(err, "Unbind failed!"))
		redirect(c, "/devices/"+id)
		return
	}

	rs.Views.SetDeviceOwner(sessionID(c), rowID(c, "id"), nil)
	flash(c, session.FlashSuccess, messageOr(message, "Device unbound successfully!"))
	redirect(c, "/devices/"+id)
}
