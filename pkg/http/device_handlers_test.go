package http

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/models"
)

func sampleDevices() []models.Device {
	return []models.Device{
		{ID: 1, Name: "Roof Tank", DeviceID: "esp-1", TankShape: models.TankShapeCylindrical, IotUserID: i64(5)},
		{ID: 2, Name: "Garden Tank", DeviceID: "esp-2", TankShape: models.TankShapeSquare},
		{ID: 3, Name: "Cellar Tank", DeviceID: "esp-3", TankShape: models.TankShapeRectangular},
	}
}

func sampleUsers() []models.User {
	return []models.User{
		{UserID: 5, FullName: "Ana Lima", Email: "ana@example.com", IsActive: true},
		{UserID: 6, FullName: "Bo Chen", Email: "bo@example.com"},
	}
}

func TestDeviceListAndRowMenu(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	ts.devices.EXPECT().ListDevices(gomock.Any(), testToken).Return(sampleDevices(), nil).Times(2)

	{
		w := b.get("/devices")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Roof Tank")
		assert.Contains(t, body, "Garden Tank")
		assert.Contains(t, body, "Cellar Tank")
		assert.NotContains(t, body, `class="menu`)
		assert.Contains(t, body, `href="/devices?menu=2"`)
	}

	{
		w := b.get("/devices?menu=2")
		body := w.Body.String()
		assert.Contains(t, body, `class="menu menu-above"`)
		assert.Contains(t, body, `href="/device-form/2"`)
		assert.Contains(t, body, `href="/devices/2/delete"`)
		assert.Contains(t, body, `href="/devices/2/bind"`)
		assert.NotContains(t, body, `href="/devices/1/delete"`)
	}
}

func TestDeleteDeviceRemovesOnlyThatRow(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	ts.devices.EXPECT().ListDevices(gomock.Any(), testToken).Return(sampleDevices(), nil).Times(1)
	require.Equal(t, http.StatusOK, b.get("/devices").Code)

	{
		w := b.get("/devices/2/delete")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Are you sure you want to delete this device?")
		assert.Contains(t, w.Body.String(), `action="/devices/2/delete"`)
	}

	{
		// cancel leaves the list as it was, nothing is deleted
		w := b.post("/devices/2/delete", url.Values{"confirm": {"no"}})
		body := w.Body.String()
		assert.Contains(t, body, "Roof Tank")
		assert.Contains(t, body, "Garden Tank")
		assert.Contains(t, body, "Cellar Tank")
	}

	{
		ts.devices.EXPECT().DeleteDevice(gomock.Any(), testToken, "2").Return("Device deleted", nil)
		w := b.post("/devices/2/delete", url.Values{"confirm": {"yes"}})
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Device deleted successfully!")
		assert.Contains(t, body, "Roof Tank")
		assert.NotContains(t, body, "Garden Tank")
		assert.Contains(t, body, "Cellar Tank")
	}

	{
		ts.devices.EXPECT().DeleteDevice(gomock.Any(), testToken, "3").
			Return("", &api.APIError{Code: api.ErrorCodeTransport, Message: "connection refused"})
		w := b.post("/devices/3/delete", url.Values{"confirm": {"yes"}})
		body := w.Body.String()
		assert.Contains(t, body, "Delete failed!")
		assert.Contains(t, body, "Cellar Tank")
		assert.NotContains(t, body, "Garden Tank")
	}
}

func TestBindDevice(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	ts.devices.EXPECT().ListDevices(gomock.Any(), testToken).Return(sampleDevices(), nil)
	require.Equal(t, http.StatusOK, b.get("/devices").Code)

	ts.users.EXPECT().ListUsers(gomock.Any(), testToken).Return(sampleUsers(), nil).AnyTimes()

	{
		w := b.get("/devices/2/bind")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Current owner: <b>None</b>")
		assert.NotContains(t, body, "(Already Bind)")
	}

	{
		w := b.get("/devices/1/bind")
		body := w.Body.String()
		assert.Contains(t, body, "Current owner: <b>Ana Lima</b>")
		assert.Contains(t, body, `<option value="5" disabled>Ana Lima (ana@example.com) (Already Bind)</option>`)
	}

	{
		w := b.post("/devices/2/bind", url.Values{"user_id": {""}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Select a user first!")
	}

	{
		rebound := sampleDevices()
		rebound[1].IotUserID = i64(6)

		gomock.InOrder(
			ts.devices.EXPECT().BindDevice(gomock.Any(), testToken, "2", int64(6)).Return("Device bound", nil),
			ts.devices.EXPECT().ListDevices(gomock.Any(), testToken).Return(rebound, nil),
		)

		w := b.post("/devices/2/bind", url.Values{"user_id": {"6"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Device bound")
		assert.Contains(t, w.Body.String(), "Garden Tank")
	}
}

func TestBindOwnerName(t *testing.T) {
	users := sampleUsers()
	assert.Equal(t, "None", bindOwner(&models.Device{}, users))
	assert.Equal(t, "Bo Chen", bindOwner(&models.Device{IotUserID: i64(6)}, users))
	assert.Equal(t, "Unknown", bindOwner(&models.Device{IotUserID: i64(99)}, users))
}

// rowHTML cuts the table row with the given element id out of body.
func rowHTML(body, id string) string {
	start := strings.Index(body, `id="`+id+`"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(body[start:], "</tr>")
	if end < 0 {
		return body[start:]
	}
	return body[start : start+end]
}

func TestBindUpdatesCachedOwnerBeforeRefetch(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	ts.devices.EXPECT().ListDevices(gomock.Any(), testToken).Return(sampleDevices(), nil)
	require.Equal(t, http.StatusOK, b.get("/devices").Code)

	gomock.InOrder(
		ts.devices.EXPECT().BindDevice(gomock.Any(), testToken, "3", int64(5)).Return("Device bound", nil),
		// the refetch fails, the operator still sees the new owner
		ts.devices.EXPECT().ListDevices(gomock.Any(), testToken).
			Return(nil, api.NewAPIError(api.ErrorCodeServerError, "boom", http.StatusInternalServerError)),
	)

	w := b.post("/devices/3/bind", url.Values{"user_id": {"5"}})
	assert.Equal(t, http.StatusOK, w.Code)
	row := rowHTML(w.Body.String(), "device-3")
	assert.Contains(t, row, "Cellar Tank")
	assert.Contains(t, row, "<td>5</td>")
}

func TestUnbindDevice(t *testing.T) {
	ts := setupTestServer(t)
	b := ts.loggedIn(t)

	{
		w := b.get("/devices/1/unbind")
		assert.Contains(t, w.Body.String(), "Are you sure you want to unbind this device?")
	}

	{
		w := b.post("/devices/1/unbind", url.Values{"confirm": {"no"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/devices/1", w.Header().Get("Location"))
	}

	{
		ts.devices.EXPECT().UnbindDevice(gomock.Any(), testToken, "1").Return("Device unbound", nil)
		w := b.post("/devices/1/unbind", url.Values{"confirm": {"yes"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/devices/1", w.Header().Get("Location"))
	}

	ts.devices.EXPECT().GetDevice(gomock.Any(), testToken, "1").
		Return(&models.Device{ID: 1, Name: "Roof Tank"}, nil)
	ts.devices.EXPECT().ListReadings(gomock.Any(), testToken, "1", gomock.Any()).Return(nil, nil)

	w := b.get("/devices/1")
	body := w.Body.String()
	assert.Contains(t, body, "Device unbound")
	assert.NotContains(t, body, "Unbind Device")
}
