package console

import (
	"net/url"
	"strconv"

	"liyu1981.xyz/tank-console/pkg/models"
)

type Placement string

const (
	PlacementBelow Placement = "below"
	PlacementAbove Placement = "above"

	MenuQueryKey = "menu"
)

type MenuAction struct {
	Key   string
	Label string
	Href  string
}

// RowMenu is the per-row action menu shared by every table. At most one
// row is open at a time; its id travels in the ?menu= query parameter so
// any other navigation closes it.
type RowMenu[T any] struct {
	BasePath string
	OpenID   string
	RowID    func(T) string
	Actions  func(T) []MenuAction
}

type MenuRow[T any] struct {
	Item       T
	ID         string
	Open       bool
	Placement  Placement
	ToggleHref string
	Actions    []MenuAction
}

// PlacementFor flips the menu upwards for the last two rows.
func PlacementFor(index, total int) Placement {
	if index >= total-2 {
		return PlacementAbove
	}
	return PlacementBelow
}

// ToggleHref opens rowID, or closes it when it is already open.
func ToggleHref(basePath, openID, rowID string) string {
	if openID == rowID {
		return basePath
	}
	return basePath + "?" + url.Values{MenuQueryKey: {rowID}}.Encode()
}

func (m RowMenu[T]) Rows(items []T) []MenuRow[T] {
	rows := make([]MenuRow[T], len(items))
	for i, item := range items {
		id := m.RowID(item)
		rows[i] = MenuRow[T]{
			Item:       item,
			ID:         id,
			Open:       id != "" && id == m.OpenID,
			Placement:  PlacementFor(i, len(items)),
			ToggleHref: ToggleHref(m.BasePath, m.OpenID, id),
		}
		if rows[i].Open && m.Actions != nil {
			rows[i].Actions = m.Actions(item)
		}
	}
	return rows
}

func DeviceRowID(d models.Device) string {
	return strconv.FormatInt(d.ID, 10)
}

func UserRowID(u models.User) string {
	return strconv.FormatInt(u.UserID, 10)
}

func DeviceActions(d models.Device) []MenuAction {
	id := DeviceRowID(d)
	return []MenuAction{
		{Key: "update", Label: "Update", Href: "/device-form/" + id},
		{Key: "detail", Label: "Details", Href: "/devices/" + id},
		{Key: "delete", Label: "Delete", Href: "/devices/" + id + "/delete"},
		{Key: "bind", Label: "Bind Device", Href: "/devices/" + id + "/bind"},
	}
}

func UserActions(u models.User) []MenuAction {
	id := UserRowID(u)
	return []MenuAction{
		{Key: "update", Label: "Update", Href: "/update-user/" + id},
		{Key: "detail", Label: "Details", Href: "/users/" + id},
		{Key: "delete", Label: "Delete", Href: "/users/" + id + "/delete"},
	}
}

// UserDeviceActions are the device row actions on a user's page; updates
// come back to that page.
func UserDeviceActions(userID string) func(models.Device) []MenuAction {
	back := "/users/" + userID
	return func(d models.Device) []MenuAction {
		id := DeviceRowID(d)
		return []MenuAction{
			{Key: "update", Label: "Update", Href: "/device-form/" + id + "?" + url.Values{"from": {back}}.Encode()},
			{Key: "detail", Label: "Details", Href: "/devices/" + id},
			{Key: "delete", Label: "Delete", Href: back + "/devices/" + id + "/delete"},
		}
	}
}

func NewDeviceMenu(openID string) RowMenu[models.Device] {
	return RowMenu[models.Device]{BasePath: "/devices", OpenID: openID, RowID: DeviceRowID, Actions: DeviceActions}
}

func NewUserMenu(openID string) RowMenu[models.User] {
	return RowMenu[models.User]{BasePath: "/users", OpenID: openID, RowID: UserRowID, Actions: UserActions}
}

func NewUserDeviceMenu(userID string, openID string) RowMenu[models.Device] {
	return RowMenu[models.Device]{
		BasePath: "/users/" + userID,
		OpenID:   openID,
		RowID:    DeviceRowID,
		Actions:  UserDeviceActions(userID),
	}
}
