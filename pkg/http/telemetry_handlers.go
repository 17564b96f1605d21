package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/tank-console/pkg/api"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/console"
	"liyu1981.xyz/tank-console/pkg/models"
	"liyu1981.xyz/tank-console/pkg/telemetry"
)

const (
	alertMissingBounds = "Please select both start and end dates!"
	alertNoData        = "No data found for selected range!"
	alertFilterFailed  = "Error fetching filtered data!"
)

// loadTelemetry decides which series the device page shows. Without apply
// it is the trailing day; with apply the picked window, keeping the
// previous series whenever the new one cannot be shown.
func (rs *ConsoleServer) loadTelemetry(c *gin.Context, deviceID string) (console.TelemetryView, string, error) {
	ctx := c.Request.Context()
	sid := sessionID(c)
	loc := rs.location()
	logger := serverLogger(common.LoggerCategoryTelemetry)

	previous, hasPrevious := rs.Views.Telemetry(sid, deviceID)
	if !hasPrevious {
		previous = console.TelemetryView{Window: telemetry.DefaultWindow(rs.now())}
	}

	if c.Query("apply") == "" {
		window := telemetry.DefaultWindow(rs.now())
		readings, err := rs.Console.Devices.ListReadings(ctx, token(c), deviceID, window)
		if err != nil {
			return console.TelemetryView{Window: window}, "", err
		}
		view := console.TelemetryView{Window: window, Readings: readings}
		rs.Views.SetTelemetry(sid, deviceID, view)
		return view, "", nil
	}

	window, err := telemetry.ParseWindow(c.Query("start"), c.Query("end"), loc)
	if err != nil {
		return previous, alertMissingBounds, nil
	}

	readings, err := rs.Console.Devices.ListReadings(ctx, token(c), deviceID, window)
	if err != nil {
		if api.IsUnauthorized(err) {
			return previous, "", err
		}
		logger.Warn("Filtered readings failed", zap.String("device", deviceID), zap.Error(err))
		return previous, alertFilterFailed, nil
	}

	view := console.TelemetryView{Window: window, Readings: readings}
	rs.Views.SetTelemetry(sid, deviceID, view)
	if len(readings) == 0 {
		return view, alertNoData, nil
	}
	return view, "", nil
}

func (rs *ConsoleServer) DeviceDetail(c *gin.Context) {
	id := c.Param("id")
	loc := rs.location()
	data := gin.H{"ID": id}

	device, err := rs.Console.Devices.GetDevice(c.Request.Context(), token(c), id)
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		if api.IsNotFound(err) {
			data["Error"] = "Device not found."
			rs.page(c, http.StatusNotFound, "device_detail.tmpl", "Device", data)
			return
		}
		data["Error"] = "Failed to fetch device data."
		rs.page(c, http.StatusOK, "device_detail.tmpl", "Device", data)
		return
	}

	view, alert, err := rs.loadTelemetry(c, id)
	if err != nil {
		if rs.rejected(c, err) {
			return
		}
		data["Error"] = "Failed to fetch device data."
	}

	startInput := telemetry.InputValue(view.Window.Start, loc)
	endInput := telemetry.InputValue(view.Window.End, loc)
	if alert == alertMissingBounds {
		startInput, endInput = c.Query("start"), c.Query("end")
	}

	sensor := "-"
	if n := len(view.Readings); n > 0 {
		sensor = strconv.FormatFloat(view.Readings[n-1].Value, 'f', -1, 64)
	} else if device.SensorValue != nil {
		sensor = strconv.FormatFloat(*device.SensorValue, 'f', -1, 64)
	}

	fill := telemetry.FillLevel(device.PercentageFull)
	data["Device"] = device
	data["Alert"] = alert
	data["Fill"] = fill
	data["FillLabel"] = fmt.Sprintf("%.0f%%", fill)
	data["Sensor"] = sensor
	data["Chart"] = telemetry.NewChart(telemetry.BuildSeries(view.Readings), view.Window, loc)
	data["StartInput"] = startInput
	data["EndInput"] = endInput
	data["MaxInput"] = telemetry.InputValue(rs.now(), loc)

	rs.page(c, http.StatusOK, "device_detail.tmpl", device.Name, data)
}

type seriesResponse struct {
	Start  time.Time         `json:"start"`
	End    time.Time         `json:"end"`
	Points []telemetry.Point `json:"points"`
}

// currentView is the series on the operator's device page, or the
// trailing day when the page has not been opened.
func (rs *ConsoleServer) currentView(c *gin.Context, deviceID string) (console.TelemetryView, error) {
	if view, ok := rs.Views.Telemetry(sessionID(c), deviceID); ok {
		return view, nil
	}
	window := telemetry.DefaultWindow(rs.now())
	readings, err := rs.Console.Devices.ListReadings(c.Request.Context(), token(c), deviceID, window)
	if err != nil {
		return console.TelemetryView{}, err
	}
	view := console.TelemetryView{Window: window, Readings: readings}
	rs.Views.SetTelemetry(sessionID(c), deviceID, view)
	return view, nil
}

func (rs *ConsoleServer) apiFailure(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if api.IsUnauthorized(err) {
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": api.MessageOf(err, "Error fetching data")})
}

func (rs *ConsoleServer) DeviceReadings(c *gin.Context) {
	view, err := rs.currentView(c, c.Param("id"))
	if err != nil {
		rs.apiFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, seriesResponse{
		Start:  view.Window.Start,
		End:    view.Window.End,
		Points: telemetry.BuildSeries(view.Readings),
	})
}

// parseInstant reads t as unix milliseconds or as a date time.
func parseInstant(value string, loc *time.Location) (time.Time, bool) {
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	return telemetry.ParseBound(value, loc)
}

type nearestResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Label     string    `json:"label"`
}

// NearestReading is the chart tooltip: the raw reading closest to t.
func (rs *ConsoleServer) NearestReading(c *gin.Context) {
	t, ok := parseInstant(c.Query("t"), rs.location())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "t must be a unix millisecond or RFC3339 time"})
		return
	}

	view, err := rs.currentView(c, c.Param("id"))
	if err != nil {
		rs.apiFailure(c, err)
		return
	}

	var reading models.Reading
	if reading, ok = telemetry.NewIndex(view.Readings).Nearest(t); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no readings"})
		return
	}

	c.JSON(http.StatusOK, nearestResponse{
		Timestamp: reading.Timestamp,
		Value:     reading.Value,
		Label:     telemetry.FormatPercent(reading.Value),
	})
}
