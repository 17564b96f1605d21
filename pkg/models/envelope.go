package models

// Response envelopes of the backend API.

type MessageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type DeviceListResponse struct {
	Devices []Device `json:"devices"`
}

type DeviceResponse struct {
	Message string  `json:"message"`
	Device  *Device `json:"device"`
}

type UserListResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
	Users   []User `json:"users"`
}

type UserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type ReadingsResponse struct {
	Readings []Reading `json:"readings"`
	Data     []Reading `json:"data"`
}

func (r *ReadingsResponse) Items() []Reading {
	if len(r.Readings) > 0 {
		return r.Readings
	}
	return r.Data
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type BindRequest struct {
	UserID int64 `json:"userId"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type NotifyRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
