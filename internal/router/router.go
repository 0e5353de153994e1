package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/webiot/signage-admin-core/internal/activity"
	"github.com/webiot/signage-admin-core/internal/auth"
	authentity "github.com/webiot/signage-admin-core/internal/auth/entity"
	"github.com/webiot/signage-admin-core/internal/feature"
	"github.com/webiot/signage-admin-core/internal/mailer"
	"github.com/webiot/signage-admin-core/internal/metrics"
	"github.com/webiot/signage-admin-core/internal/otp"
	"github.com/webiot/signage-admin-core/internal/upload"
	"github.com/webiot/signage-admin-core/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs requests at debug level, tags each with a snowflake
// request id, and feeds the request counter.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := utilities.NewSnowflakeID()
			w.Header().Set("X-Request-Id", reqID)
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPRequests.WithLabelValues(r.Method, fmt.Sprintf("%d", status)).Inc()
			logger.Debugw("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deps bundles the constructed handlers and middleware dependencies.
type Deps struct {
	DB        *sqlx.DB
	Logger    *zap.SugaredLogger
	JWTSecret []byte
	Storage   *upload.Storage
	Mail      mailer.Sender
	OTPStore  otp.Store
}

// RegisterRoutes mounts HTTP handlers using the standard library's
// http.ServeMux and returns the wrapped root handler.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	authSvc := auth.NewService(d.DB, nil, nil, nil, d.JWTSecret)
	authHandler := auth.NewHandler(d.DB, authSvc, d.Storage, d.Logger)

	otpSvc := otp.NewService(d.OTPStore, authSvc.Users(), authSvc.Hasher(), d.Mail)
	otpHandler := otp.NewHandler(otpSvc, d.Logger)

	activitySvc := activity.NewService(d.DB, nil)
	activityHandler := activity.NewHandler(activitySvc, d.Logger)

	featureSvc := feature.NewService(d.DB, nil, nil, activitySvc, d.Logger)
	featureHandler := feature.NewHandler(featureSvc, d.Logger)

	requireAuth := authSvc.RequireAuth(d.Logger)
	profileRoles := auth.RequireRole(authentity.RoleDosen, authentity.RoleMahasiswa, authentity.RoleStaff)

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// uploaded photos, served statically without auth
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Storage.Dir()))))

	// registration and session
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// password reset flow
	mux.HandleFunc("POST /api/auth/forgot-password", otpHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/verify-otp", otpHandler.VerifyOTP)
	mux.HandleFunc("POST /api/auth/reset-password", otpHandler.ResetPassword)

	// profile (admin deliberately not in the allowed roles)
	mux.Handle("GET /api/auth/profile", requireAuth(profileRoles(http.HandlerFunc(authHandler.GetProfile))))
	mux.Handle("PUT /api/auth/update-profile", requireAuth(http.HandlerFunc(authHandler.UpdateProfile)))

	// login history
	mux.Handle("GET /api/auth/login-history", requireAuth(http.HandlerFunc(authHandler.LoginHistory)))
	mux.Handle("DELETE /api/auth/login-history/{id}", requireAuth(http.HandlerFunc(authHandler.DeleteLoginHistory)))

	// running text
	mux.Handle("POST /api/feature/edit-text", requireAuth(http.HandlerFunc(featureHandler.EditText)))
	mux.HandleFunc("GET /api/feature/running-text", featureHandler.GetRunningText)
	mux.HandleFunc("GET /api/running-text/speed", featureHandler.GetTextSpeed)
	mux.Handle("POST /api/feature/template", requireAuth(http.HandlerFunc(featureHandler.SaveTemplate)))
	mux.Handle("GET /api/feature/template", requireAuth(http.HandlerFunc(featureHandler.ListTemplates)))

	// date and time
	mux.Handle("POST /api/feature/edit-date", requireAuth(http.HandlerFunc(featureHandler.EditDate)))
	mux.HandleFunc("GET /api/feature/get-date", featureHandler.GetDate)
	mux.Handle("POST /api/feature/edit-time", requireAuth(http.HandlerFunc(featureHandler.EditTime)))
	mux.HandleFunc("GET /api/feature/get-time", featureHandler.GetTime)

	// temperature: sensor ingest is open for the IoT device
	mux.HandleFunc("POST /api/feature/temperature/sensor", featureHandler.SensorTemperature)
	mux.Handle("POST /api/feature/temperature/manual", requireAuth(http.HandlerFunc(featureHandler.ManualTemperature)))
	mux.HandleFunc("GET /api/feature/get-temperature", featureHandler.GetTemperature)

	// feature usage history
	mux.Handle("GET /api/feature/usage", requireAuth(http.HandlerFunc(activityHandler.List)))
	mux.Handle("DELETE /api/feature-usage/{id}", requireAuth(http.HandlerFunc(activityHandler.DeleteOne)))
	mux.Handle("DELETE /api/feature-usage", requireAuth(http.HandlerFunc(activityHandler.DeleteAll)))

	// wrap with security headers middleware then logging middleware
	return LoggingMiddleware(d.Logger)(SecurityHeadersMiddleware()(mux))
}
