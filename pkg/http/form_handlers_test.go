package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/models"
)

func deviceFormValues() url.Values {
	return url.Values{
		"name":                 {"Roof Tank"},
		"location":             {"Block A"},
		"device_id":            {"esp-42"},
		"tank_shape":           {"cylindrical"},
		"tank_radius":          {"55.5"},
		"sensor_height_bottom": {"180"},
		"reading_when_full":    {"20"},
		"tank_width":           {""},
		"tank_length":          {""},
	}
}

func TestDeviceFormCreate(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	{
		w := b.get("/device-form")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Add Device")
		assert.Contains(t, body, `action="/device-form"`)
		assert.Contains(t, body, `<a href="/devices">Cancel</a>`)
	}

	{
		var saved *models.Device
		ts.devices.EXPECT().SaveDevice(gomock.Any(), testToken, "", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ string, d *models.Device) (string, error) {
				saved = d
				return "Device created", nil
			})

		w := b.post("/device-form", deviceFormValues())
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Device created")
		assert.Contains(t, body, `content="2;url=/devices"`)

		require.NotNil(t, saved)
		assert.Equal(t, "Roof Tank", saved.Name)
		assert.Equal(t, "esp-42", saved.DeviceID)
		assert.Equal(t, models.TankShapeCylindrical, saved.TankShape)
		require.NotNil(t, saved.TankRadius)
		assert.Equal(t, 55.5, *saved.TankRadius)
		assert.Nil(t, saved.TankWidth)
		assert.Nil(t, saved.TankLength)
	}

	{
		// an empty server message falls back to the generic notice
		ts.devices.EXPECT().SaveDevice(gomock.Any(), testToken, "", gomock.Any()).Return("", nil)
		w := b.post("/device-form", deviceFormValues())
		assert.Contains(t, w.Body.String(), "Operation successful!")
	}
}

func TestDeviceFormValidation(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	{
		form := deviceFormValues()
		form.Del("name")
		w := b.post("/device-form", form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please check:")
		assert.Contains(t, w.Body.String(), `value="esp-42"`)
	}

	{
		form := deviceFormValues()
		form.Set("tank_shape", "pyramid")
		w := b.post("/device-form", form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		form := deviceFormValues()
		form.Set("tank_radius", "wide")
		w := b.post("/device-form", form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	for _, field := range []string{"name", "device_id"} {
		// spaces only count as missing, nothing is saved
		form := deviceFormValues()
		form.Set(field, "   ")
		w := b.post("/device-form", form)
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Contains(t, w.Body.String(), "Please check:", field)
	}
}

func TestDeviceFormUpdate(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	{
		ts.devices.EXPECT().GetDevice(gomock.Any(), testToken, "42").Return(&models.Device{
			ID:         42,
			Name:       "Roof Tank",
			DeviceID:   "esp-42",
			TankShape:  models.TankShapeSquare,
			TankWidth:  f64(120),
			TankLength: f64(80.5),
		}, nil)

		w := b.get("/device-form/42?from=/users/5")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Update Device")
		assert.Contains(t, body, `action="/device-form/42"`)
		assert.Contains(t, body, `name="name" value="Roof Tank"`)
		assert.Contains(t, body, `value="square" selected`)
		assert.Contains(t, body, `name="tank_length" value="80.5"`)
		assert.Contains(t, body, `name="from" value="/users/5"`)
	}

	{
		ts.devices.EXPECT().SaveDevice(gomock.Any(), testToken, "42", gomock.Any()).Return("Device updated", nil)
		form := deviceFormValues()
		form.Set("from", "/users/5")
		w := b.post("/device-form/42", form)
		assert.Contains(t, w.Body.String(), "Device updated")
		assert.Contains(t, w.Body.String(), `content="2;url=/users/5"`)
	}

	{
		ts.devices.EXPECT().SaveDevice(gomock.Any(), testToken, "42", gomock.Any()).
			Return("", api.NewAPIError(api.ErrorCodeValidationFailed, "Device ID already exists", http.StatusConflict))
		w := b.post("/device-form/42", deviceFormValues())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Device ID already exists")
		assert.Contains(t, w.Body.String(), `name="name" value="Roof Tank"`)
	}

	{
		ts.devices.EXPECT().SaveDevice(gomock.Any(), testToken, "42", gomock.Any()).
			Return("", &api.APIError{Code: api.ErrorCodeTransport, Message: "timeout"})
		w := b.post("/device-form/42", deviceFormValues())
		assert.Contains(t, w.Body.String(), "Submit failed!")
	}

	{
		ts.devices.EXPECT().GetDevice(gomock.Any(), testToken, "43").
			Return(nil, &api.APIError{Code: api.ErrorCodeTransport, Message: "timeout"})
		w := b.get("/device-form/43")
		assert.Contains(t, w.Body.String(), "Failed to fetch details")
	}
}

func TestDeviceFormIgnoresForeignReturnPath(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	ts.devices.EXPECT().SaveDevice(gomock.Any(), testToken, "", gomock.Any()).Return("Device created", nil)
	form := deviceFormValues()
	form.Set("from", "https://evil.example/")
	w := b.post("/device-form", form)
	assert.Contains(t, w.Body.String(), `content="2;url=/devices"`)
}

func TestUserForm(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	{
		w := b.get("/update-user")
		assert.Contains(t, w.Body.String(), "Add User")
		assert.Contains(t, w.Body.String(), `action="/update-user"`)
	}

	{
		ts.users.EXPECT().GetUser(gomock.Any(), testToken, "7").Return(&models.UserDetail{
			User: &models.User{UserID: 7, FullName: "Ana Lima", Email: "ana@example.com", IsActive: true},
		}, nil)
		w := b.get("/update-user/7")
		body := w.Body.String()
		assert.Contains(t, body, "Update User")
		assert.Contains(t, body, `name="full_name" value="Ana Lima"`)
		assert.Contains(t, body, `value="true" checked`)
	}

	{
		var saved *models.User
		ts.users.EXPECT().SaveUser(gomock.Any(), testToken, "7", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ string, u *models.User) (string, error) {
				saved = u
				return "User updated", nil
			})
		w := b.post("/update-user/7", url.Values{
			"full_name": {"Ana Lima"},
			"email":     {"ana@example.com"},
			"phone":     {"555-0100"},
			"is_active": {"true"},
		})
		assert.Contains(t, w.Body.String(), "User updated")
		assert.Contains(t, w.Body.String(), `content="2;url=/users"`)
		require.NotNil(t, saved)
		assert.True(t, saved.IsActive)
		assert.Equal(t, "555-0100", saved.Phone)
	}

	{
		var saved *models.User
		ts.users.EXPECT().SaveUser(gomock.Any(), testToken, "", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ string, u *models.User) (string, error) {
				saved = u
				return "User created", nil
			})
		w := b.post("/update-user", url.Values{"full_name": {"Bo Chen"}, "email": {"bo@example.com"}})
		assert.Contains(t, w.Body.String(), "User created")
		require.NotNil(t, saved)
		assert.False(t, saved.IsActive)
	}

	{
		w := b.post("/update-user", url.Values{"full_name": {"Bo Chen"}, "email": {"bo"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := b.post("/update-user", url.Values{"full_name": {"  "}, "email": {"bo@example.com"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `value="bo@example.com"`)
	}
}
