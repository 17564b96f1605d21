package console

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/telemetry"
	_ "liyu1981.xyz/tank-console/pkg/testing"
)

func TestSaveDevice_CreateVsUpdate(t *testing.T) {
	common.SetTestLoggerNop()

	var hits []string
	ctrl, consoleObj, _, _, _, _ := GetConsoleWithFakeBackend(t, func(r *gin.Engine) {
		r.POST("/api/devices", func(c *gin.Context) {
			hits = append(hits, "POST /api/devices")
			c.JSON(http.StatusCreated, gin.H{"message": "Device created"})
		})
		r.PUT("/api/devices/:id", func(c *gin.Context) {
			hits = append(hits, "PUT /api/devices/"+c.Param("id"))
			c.JSON(http.StatusOK, gin.H{"message": "Device updated"})
		})
	}, false, false, false, false)
	defer ctrl.Finish()

	ctx := context.Background()
	device := &models.Device{Name: "Roof", DeviceID: "esp-1", TankShape: models.TankShapeCylindrical}

	msg, err := consoleObj.Devices.SaveDevice(ctx, "tok", "", device)
	require.NoError(t, err)
	assert.Equal(t, "Device created", msg)

	msg, err = consoleObj.Devices.SaveDevice(ctx, "tok", "42", device)
	require.NoError(t, err)
	assert.Equal(t, "Device updated", msg)

	assert.Equal(t, []string{"POST /api/devices", "PUT /api/devices/42"}, hits)
}

func TestDeviceActions_Logging(t *testing.T) {
	buf := &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	var bindBody map[string]any
	ctrl, consoleObj, _, _, _, _ := GetConsoleWithFakeBackend(t, func(r *gin.Engine) {
		r.DELETE("/api/devices/:id", func(c *gin.Context) {
			if c.Param("id") == "404" {
				c.JSON(http.StatusNotFound, gin.H{"message": "Device not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Device deleted"})
		})
		r.POST("/api/devices/:id/bind", func(c *gin.Context) {
			_ = c.ShouldBindJSON(&bindBody)
			c.JSON(http.StatusOK, gin.H{"message": "Device bound"})
		})
		r.POST("/api/devices/:id/unbind", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Device unbound"})
		})
	}, false, false, false, false)
	defer ctrl.Finish()

	ctx := context.Background()

	_, err := consoleObj.Devices.DeleteDevice(ctx, "tok", "7")
	require.NoError(t, err)
	_, err = consoleObj.Devices.DeleteDevice(ctx, "tok", "404")
	require.Error(t, err)

	msg, err := consoleObj.Devices.BindDevice(ctx, "tok", "7", 12)
	require.NoError(t, err)
	assert.Equal(t, "Device bound", msg)
	assert.Equal(t, float64(12), bindBody["userId"])

	_, err = consoleObj.Devices.UnbindDevice(ctx, "tok", "7")
	require.NoError(t, err)

	logs := ParseLogs(buf)
	deleted := findLog(logs, "Device deleted")
	require.NotNil(t, deleted)
	assert.Equal(t, common.LoggerCategoryDevice, deleted[common.LoggerFieldCategory])
	assert.Equal(t, common.LoggerNameConsoleCore, deleted["logger"])

	failed := findLog(logs, "Device delete failed")
	require.NotNil(t, failed)
	assert.Equal(t, "404", failed["id"])

	bound := findLog(logs, "Device bound")
	require.NotNil(t, bound)
	assert.Equal(t, float64(12), bound["user_id"])
	assert.NotNil(t, findLog(logs, "Device unbound"))
}

func TestListReadings_Window(t *testing.T) {
	common.SetTestLoggerNop()

	var query map[string]string
	ctrl, consoleObj, _, _, _, _ := GetConsoleWithFakeBackend(t, func(r *gin.Engine) {
		r.GET("/api/devices/:id/readings", func(c *gin.Context) {
			query = map[string]string{"start": c.Query("start"), "end": c.Query("end")}
			c.JSON(http.StatusOK, gin.H{"data": []gin.H{
				{"timestamp": "2025-03-01T10:00:00Z", "percentage": "40.5"},
				{"time": "2025-03-01T11:00:00Z"},
			}})
		})
	}, false, false, false, false)
	defer ctrl.Finish()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := telemetry.Window{Start: start, End: start.Add(24 * time.Hour)}

	readings, err := consoleObj.Devices.ListReadings(context.Background(), "tok", "42", window)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 40.5, readings[0].Value)
	assert.Equal(t, 0.0, readings[1].Value)
	assert.Equal(t, "2025-03-01T00:00:00.000Z", query["start"])
	assert.Equal(t, "2025-03-02T00:00:00.000Z", query["end"])
}
