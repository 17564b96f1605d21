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
)

type DeviceForm struct {
	Name               string  `zog:"name"`
	Location           string  `zog:"location"`
	DeviceID           string  `zog:"device_id"`
	TankShape          string  `zog:"tank_shape"`
	TankRadius         float64 `zog:"tank_radius"`
	SensorHeightBottom float64 `zog:"sensor_height_bottom"`
	ReadingWhenFull    float64 `zog:"reading_when_full"`
	TankWidth          float64 `zog:"tank_width"`
	TankLength         float64 `zog:"tank_length"`
}

var tankShapes = common.Mapper(models.TankShapes, func(s models.TankShape) string { return string(s) })

var deviceFormSchema = z.Struct(z.Shape{
	"Name":               z.String().Trim().Required(),
	"Location":           z.String().Trim(),
	"DeviceID":           z.String().Trim().Required(),
	"TankShape":          z.String().OneOf(tankShapes).Required(),
	"TankRadius":         z.Float64().GTE(0),
	"SensorHeightBottom": z.Float64().GTE(0),
	"ReadingWhenFull":    z.Float64().GTE(0),
	"TankWidth":          z.Float64().GTE(0),
	"TankLength":         z.Float64().GTE(0),
})

type UserForm struct {
	FullName string `zog:"full_name"`
	Email    string `zog:"email"`
	Phone    string `zog:"phone"`
	IsActive bool   `zog:"is_active"`
}

var userFormSchema = z.Struct(z.Shape{
	"FullName": z.String().Trim().Required(),
	"Email":    z.String().Trim().Email().Required(),
	"Phone":    z.String().Trim(),
	"IsActive": z.Bool(),
})

var deviceNumberFields = []string{"tank_radius", "sensor_height_bottom", "reading_when_full", "tank_width", "tank_length"}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func deviceValues(d *models.Device) map[string]string {
	return map[string]string{
		"name":                 d.Name,
		"location":             d.Location,
		"device_id":            d.DeviceID,
		"tank_shape":           string(d.TankShape),
		"tank_radius":          formatNumber(d.TankRadius),
		"sensor_height_bottom": formatNumber(d.SensorHeightBottom),
		"reading_when_full":    formatNumber(d.ReadingWhenFull),
		"tank_width":           formatNumber(d.TankWidth),
		"tank_length":          formatNumber(d.TankLength),
	}
}

func userValues(u *models.User) map[string]string {
	active := ""
	if u.IsActive {
		active = "true"
	}
	return map[string]string{
		"full_name": u.FullName,
		"email":     u.Email,
		"phone":     u.Phone,
		"is_active": active,
	}
}

// postedValues echoes the submitted fields back into a re-rendered form.
func postedValues(c *gin.Context, kind console.EntityKind) map[string]string {
	keys := []string{"full_name", "email", "phone", "is_active"}
	if kind == console.EntityDevice {
		keys = append([]string{"name", "location", "device_id", "tank_shape"}, deviceNumberFields...)
	}
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		values[k] = c.PostForm(k)
	}
	return values
}

func (rs *ConsoleServer) renderForm(c *gin.Context, status int, target console.FormTarget, values map[string]string, message string) {
	rs.page(c, status, "form.tmpl", target.Title(), gin.H{
		"Target": target,
		"Values": values,
		"Error":  message,
		"Shapes": tankShapes,
	})
}

func (rs *ConsoleServer) formTarget(c *gin.Context) console.FormTarget {
	from := c.Query("from")
	if c.Request.Method == http.MethodPost {
		from = c.PostForm("from")
	}
	return console.ResolveForm(c.Request.URL.Path, c.Param("id"), from)
}

// EditForm serves both the device and the user form, pre-filled when an id is given.
func (rs *ConsoleServer) EditForm(c *gin.Context) {
	ctx := c.Request.Context()
	target := rs.formTarget(c)
	values := map[string]string{}

	if target.Mode == console.FormCreate {
		rs.renderForm(c, http.StatusOK, target, values, "")
		return
	}

	var err error
	switch target.Kind {
	case console.EntityDevice:
		var device *models.Device
		if device, err = rs.Console.Devices.GetDevice(ctx, token(c), target.ID); err == nil {
			values = deviceValues(device)
		}
	default:
		var detail *models.UserDetail
		if detail, err = rs.Console.Users.GetUser(ctx, token(c), target.ID); err == nil {
			values = userValues(detail.User)
		}
	}

	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		rs.renderForm(c, http.StatusOK, target, values, "Failed to fetch details")
		return
	}
	rs.renderForm(c, http.StatusOK, target, values, "")
}

func optionalNumber(c *gin.Context, field string, v float64) *float64 {
	if c.PostForm(field) == "" {
		return nil
	}
	return &v
}

// saved shows the success notice that navigates back after console.RedirectDelay.
func (rs *ConsoleServer) saved(c *gin.Context, target console.FormTarget, message string) {
	rs.page(c, http.StatusOK, "notice.tmpl", target.Title(), gin.H{
		"Message":      messageOr(message, "Operation successful!"),
		"ReturnPath":   target.ReturnPath,
		"DelaySeconds": int(console.RedirectDelay.Seconds()),
	})
}

func (rs *ConsoleServer) submitFailed(c *gin.Context, target console.FormTarget, err error) {
	if rs.rejected(c, err) {
		return
	}
	serverLogger(string(target.Kind)).Info("Form submit failed", zap.String("id", target.ID), zap.Error(err))
	rs.renderForm(c, http.StatusOK, target, postedValues(c, target.Kind), api.MessageOf(err, "Submit failed!"))
}

func (rs *ConsoleServer) SubmitDevice(c *gin.Context) {
	target := rs.formTarget(c)

	var form DeviceForm
	dropBlankInputs(c.Request)
	if errs := deviceFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		rs.renderForm(c, http.StatusBadRequest, target, postedValues(c, target.Kind), "Please check: "+invalidFields(errs))
		return
	}

	device := &models.Device{
		Name:               form.Name,
		Location:           form.Location,
		DeviceID:           form.DeviceID,
		TankShape:          models.TankShape(form.TankShape),
		TankRadius:         optionalNumber(c, "tank_radius", form.TankRadius),
		SensorHeightBottom: optionalNumber(c, "sensor_height_bottom", form.SensorHeightBottom),
		ReadingWhenFull:    optionalNumber(c, "reading_when_full", form.ReadingWhenFull),
		TankWidth:          optionalNumber(c, "tank_width", form.TankWidth),
		TankLength:         optionalNumber(c, "tank_length", form.TankLength),
	}

	message, err := rs.Console.Devices.SaveDevice(c.Request.Context(), token(c), target.ID, device)
	if err != nil {
		rs.submitFailed(c, target, err)
		return
	}
	rs.saved(c, target, message)
}

func (rs *ConsoleServer) SubmitUser(c *gin.Context) {
	target := rs.formTarget(c)

	var form UserForm
	dropBlankInputs(c.Request)
	if errs := userFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		rs.renderForm(c, http.StatusBadRequest, target, postedValues(c, target.Kind), "Please check: "+invalidFields(errs))
		return
	}

	user := &models.User{
		FullName: form.FullName,
		Email:    form.Email,
		Phone:    form.Phone,
		IsActive: form.IsActive,
	}

	message, err := rs.Console.Users.SaveUser(c.Request.Context(), token(c), target.ID, user)
	if err != nil {
		rs.submitFailed(c, target, err)
		return
	}
	rs.saved(c, target, message)
}
