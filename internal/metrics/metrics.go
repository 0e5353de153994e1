package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_http_requests_total",
			Help: "HTTP requests handled",
		},
		[]string{"method", "status"},
	)

	// SensorReadings counts temperature readings accepted from the display sensor.
	SensorReadings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_sensor_readings_total",
			Help: "Temperature sensor readings ingested",
		},
	)

	// OTPIssued counts one-time codes generated for password resets.
	OTPIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_otp_issued_total",
			Help: "Password reset OTP codes issued",
		},
	)
)
