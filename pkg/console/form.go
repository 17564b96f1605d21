package console

import (
	"strings"
	"time"

	"liyu1981.xyz/tank-console/pkg/common"
)

type EntityKind string

const (
	EntityDevice EntityKind = "device"
	EntityUser   EntityKind = "user"
)

type FormMode string

const (
	FormCreate FormMode = "create"
	FormUpdate FormMode = "update"
)

// RedirectDelay is how long the success notice stays before navigating back.
const RedirectDelay = 2 * time.Second

// FormTarget says which record a form edits and where to go afterwards.
type FormTarget struct {
	Kind       EntityKind
	Mode       FormMode
	ID         string
	ReturnPath string
}

// ResolveForm infers the entity from the request path and the mode from
// the presence of an id. from is honoured only when it is a local path.
func ResolveForm(path string, id string, from string) FormTarget {
	kind := EntityUser
	if strings.Contains(path, "/device") {
		kind = EntityDevice
	}

	mode := FormCreate
	if id != "" {
		mode = FormUpdate
	}

	returnPath := DefaultReturnPath(kind)
	if from != "" && common.IsLocalPath(from) {
		returnPath = from
	}

	return FormTarget{Kind: kind, Mode: mode, ID: id, ReturnPath: returnPath}
}

func DefaultReturnPath(kind EntityKind) string {
	if kind == EntityDevice {
		return "/devices"
	}
	return "/users"
}

func (t FormTarget) Title() string {
	noun := "User"
	if t.Kind == EntityDevice {
		noun = "Device"
	}
	if t.Mode == FormUpdate {
		return "Update " + noun
	}
	return "Add " + noun
}

func (t FormTarget) SubmitLabel() string {
	if t.Mode == FormUpdate {
		return "Update"
	}
	return "Add"
}

// ActionPath is where the form posts back to.
func (t FormTarget) ActionPath() string {
	base := "/update-user"
	if t.Kind == EntityDevice {
		base = "/device-form"
	}
	if t.ID != "" {
		return base + "/" + t.ID
	}
	return base
}
