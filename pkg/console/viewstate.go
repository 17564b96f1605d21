package console

import (
	"sync"
	"time"

	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/telemetry"
)

// TelemetryView is what the device page currently shows.
type TelemetryView struct {
	Window   telemetry.Window
	Readings []models.Reading
}

type viewState struct {
	devices    []models.Device
	hasDevices bool
	users      []models.User
	hasUsers   bool
	userDetail *models.UserDetail
	telemetry  map[string]TelemetryView
	touched    time.Time
}

// ViewStore keeps each operator session's last rendered lists: session_id -> view state.
// Confirmed deletes and binds edit these copies instead of refetching.
type ViewStore struct {
	views map[string]*viewState
	mu    sync.Mutex
	Now   func() time.Time
}

func NewViewStore() *ViewStore {
	return &ViewStore{views: make(map[string]*viewState), Now: time.Now}
}

// get returns the session's state for writing, creating it if needed.
func (s *ViewStore) get(sessionID string) *viewState {
	v, exists := s.views[sessionID]
	if !exists {
		v = &viewState{telemetry: make(map[string]TelemetryView)}
		s.views[sessionID] = v
	}
	v.touched = s.Now()
	return v
}

// lookup returns the session's state for reading; unknown sessions get none.
func (s *ViewStore) lookup(sessionID string) (*viewState, bool) {
	v, exists := s.views[sessionID]
	if exists {
		v.touched = s.Now()
	}
	return v, exists
}

// Sweep drops the state of sessions untouched since before and reports how
// many were dropped.
func (s *ViewStore) Sweep(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, v := range s.views {
		if v.touched.Before(before) {
			delete(s.views, id)
			n++
		}
	}
	return n
}

func (s *ViewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *ViewStore) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, sessionID)
}

func (s *ViewStore) SetDevices(sessionID string, devices []models.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.get(sessionID)
	v.devices = append([]models.Device(nil), devices...)
	v.hasDevices = true
}

func (s *ViewStore) Devices(sessionID string) ([]models.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok {
		return []models.Device{}, false
	}
	return append([]models.Device{}, v.devices...), v.hasDevices
}

// RemoveDevice drops exactly the device with id from the cached list.
func (s *ViewStore) RemoveDevice(sessionID string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok {
		return
	}
	v.devices = common.Filter(v.devices, func(d models.Device) bool { return d.ID != id })
}

func (s *ViewStore) SetDeviceOwner(sessionID string, id int64, owner *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok {
		return
	}
	for i := range v.devices {
		if v.devices[i].ID == id {
			v.devices[i].IotUserID = owner
		}
	}
}

func (s *ViewStore) SetUsers(sessionID string, users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.get(sessionID)
	v.users = append([]models.User(nil), users...)
	v.hasUsers = true
}

func (s *ViewStore) Users(sessionID string) ([]models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok {
		return []models.User{}, false
	}
	return append([]models.User{}, v.users...), v.hasUsers
}

func (s *ViewStore) RemoveUser(sessionID string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok {
		return
	}
	v.users = common.Filter(v.users, func(u models.User) bool { return u.UserID != userID })
}

func (s *ViewStore) SetUserDetail(sessionID string, detail *models.UserDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.get(sessionID)
	if detail == nil {
		v.userDetail = nil
		return
	}
	cp := *detail
	cp.Devices = append([]models.Device{}, detail.Devices...)
	v.userDetail = &cp
}

// UserDetail returns the cached detail if it belongs to userID.
func (s *ViewStore) UserDetail(sessionID string, userID int64) (*models.UserDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok || v.userDetail == nil || v.userDetail.User == nil || v.userDetail.User.UserID != userID {
		return nil, false
	}
	cp := *v.userDetail
	cp.Devices = append([]models.Device{}, v.userDetail.Devices...)
	return &cp, true
}

func (s *ViewStore) RemoveUserDevice(sessionID string, deviceID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok || v.userDetail == nil {
		return
	}
	v.userDetail.Devices = common.Filter(v.userDetail.Devices, func(d models.Device) bool { return d.ID != deviceID })
}

func (s *ViewStore) SetTelemetry(sessionID string, deviceID string, view TelemetryView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view.Readings = append([]models.Reading{}, view.Readings...)
	s.get(sessionID).telemetry[deviceID] = view
}

func (s *ViewStore) Telemetry(sessionID string, deviceID string) (TelemetryView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(sessionID)
	if !ok {
		return TelemetryView{}, false
	}
	view, ok := v.telemetry[deviceID]
	if ok {
		view.Readings = append([]models.Reading{}, view.Readings...)
	}
	return view, ok
}
