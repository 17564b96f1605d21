package console

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/console/mocks"
)

// GetConsoleWithFakeBackend points a console at a gin backend built by
// register. Services not mocked use the API-backed implementation.
func GetConsoleWithFakeBackend(t *testing.T, register func(r *gin.Engine), useMockIAuth, useMockIDevice, useMockIUser, useMockINotify bool) (
	*gomock.Controller,
	*Console,
	*mocks.MockIAuth,
	*mocks.MockIDevice,
	*mocks.MockIUser,
	*mocks.MockINotify,
) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	mockIAuth := mocks.NewMockIAuth(ctrl)
	mockIDevice := mocks.NewMockIDevice(ctrl)
	mockIUser := mocks.NewMockIUser(ctrl)
	mockINotify := mocks.NewMockINotify(ctrl)

	r := gin.New()
	if register != nil {
		register(r)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	consoleObj := (&Console{Api: api.NewClient(srv.URL, 2*time.Second)}).WithDefaultServices()

	opts := ServiceOpts{}
	if useMockIAuth {
		opts.Auth = mockIAuth
	}
	if useMockIDevice {
		opts.Devices = mockIDevice
	}
	if useMockIUser {
		opts.Users = mockIUser
	}
	if useMockINotify {
		opts.Notify = mockINotify
	}
	consoleObj.WithServices(opts)

	return ctrl, consoleObj, mockIAuth, mockIDevice, mockIUser, mockINotify
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

func findLog(logs []any, msg string) map[string]any {
	for _, l := range logs {
		if m, ok := l.(map[string]any); ok && m["msg"] == msg {
			return m
		}
	}
	return nil
}
