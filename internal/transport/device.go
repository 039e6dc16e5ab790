package transport

import (
	"context"
	"net/http"
	"strings"
)

// DeviceHeader identifies the device a sync request belongs to.
const DeviceHeader = "X-Device-Id"

// MaxDeviceIDLength bounds the accepted device identifier.
const MaxDeviceIDLength = 200

type deviceKey struct{}

// DeviceFromContext returns the device ID from context, if present.
func DeviceFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(deviceKey{}).(string)
	return deviceID, ok
}

// DeviceMiddleware requires a usable X-Device-Id header and stores it in
// context.
func DeviceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := strings.TrimSpace(r.Header.Get(DeviceHeader))
		if deviceID == "" {
			writeDetail(w, http.StatusBadRequest, "Missing X-Device-Id")
			return
		}
		if len(deviceID) > MaxDeviceIDLength {
			writeDetail(w, http.StatusBadRequest, "Invalid X-Device-Id")
			return
		}

		ctx := context.WithValue(r.Context(), deviceKey{}, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
