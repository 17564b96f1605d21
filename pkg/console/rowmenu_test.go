package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/tank-console/pkg/models"
)

func devicesN(n int) []models.Device {
	devices := make([]models.Device, n)
	for i := range n {
		devices[i] = models.Device{ID: int64(i + 1), Name: "tank"}
	}
	return devices
}

func TestPlacementFor(t *testing.T) {
	assert.Equal(t, PlacementBelow, PlacementFor(0, 5))
	assert.Equal(t, PlacementBelow, PlacementFor(2, 5))
	assert.Equal(t, PlacementAbove, PlacementFor(3, 5))
	assert.Equal(t, PlacementAbove, PlacementFor(4, 5))

	// short tables open upwards everywhere
	assert.Equal(t, PlacementAbove, PlacementFor(0, 2))
	assert.Equal(t, PlacementAbove, PlacementFor(0, 1))
}

func TestRowMenu_AtMostOneOpen(t *testing.T) {
	{
		rows := NewDeviceMenu("").Rows(devicesN(4))
		for _, row := range rows {
			assert.False(t, row.Open)
			assert.Empty(t, row.Actions)
			assert.Equal(t, "/devices?menu="+row.ID, row.ToggleHref)
		}
	}

	{
		rows := NewDeviceMenu("3").Rows(devicesN(4))
		open := 0
		for _, row := range rows {
			if row.Open {
				open++
				assert.Equal(t, "3", row.ID)
				assert.Equal(t, "/devices", row.ToggleHref)
				require.Len(t, row.Actions, 4)
				assert.Equal(t, "/device-form/3", row.Actions[0].Href)
				assert.Equal(t, "/devices/3/bind", row.Actions[3].Href)
			} else {
				assert.Empty(t, row.Actions)
			}
		}
		assert.Equal(t, 1, open)
		assert.Equal(t, PlacementAbove, rows[2].Placement)
	}

	{
		rows := NewDeviceMenu("99").Rows(devicesN(2))
		for _, row := range rows {
			assert.False(t, row.Open)
		}
	}
}

func TestUserMenus(t *testing.T) {
	users := []models.User{{UserID: 5, FullName: "Ana"}, {UserID: 6, FullName: "Bo"}}
	rows := NewUserMenu("6").Rows(users)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Open)
	assert.True(t, rows[1].Open)
	assert.Equal(t, []string{"update", "detail", "delete"}, keys(rows[1].Actions))
	assert.Equal(t, "/update-user/6", rows[1].Actions[0].Href)

	deviceRows := NewUserDeviceMenu("5", "1").Rows(devicesN(1))
	require.Len(t, deviceRows, 1)
	assert.Equal(t, "/users/5", deviceRows[0].ToggleHref)
	assert.Equal(t, "/device-form/1?from=%2Fusers%2F5", deviceRows[0].Actions[0].Href)
	assert.Equal(t, "/users/5/devices/1/delete", deviceRows[0].Actions[2].Href)
}

func keys(actions []MenuAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Key
	}
	return out
}
