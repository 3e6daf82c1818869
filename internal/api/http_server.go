package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tempatku/internal/config"
	"tempatku/internal/domain"
	"tempatku/internal/metrics"
	"tempatku/internal/models"
	"tempatku/internal/service"

	"github.com/rs/zerolog"
)

// BookingExporter renders booking reports to files.
type BookingExporter interface {
	BookingsByDateRange(ctx context.Context, start, end string) (string, error)
}

// HTTPServer exposes the public catalog/admission surface and the keyed
// management surface on one port.
type HTTPServer struct {
	cfg        config.APIConfig
	bookingCfg config.BookingConfig
	bookings   domain.BookingService
	places     domain.PlaceService
	users      domain.UserService
	resolver   domain.TimeResolver
	limiter    domain.RateLimiter
	exporter   BookingExporter
	auth       *HTTPAuth
	server     *http.Server
	logger     *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookingCfg config.BookingConfig,
	bookings domain.BookingService,
	places domain.PlaceService,
	users domain.UserService,
	resolver domain.TimeResolver,
	limiter domain.RateLimiter,
	exporter BookingExporter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:        cfg,
		bookingCfg: bookingCfg,
		bookings:   bookings,
		places:     places,
		users:      users,
		resolver:   resolver,
		limiter:    limiter,
		exporter:   exporter,
		auth:       NewHTTPAuth(cfg),
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/time", srv.handleTime)
	mux.HandleFunc("/api/v1/places", srv.handlePlaces)
	mux.HandleFunc("/api/v1/places/", srv.handlePlaceByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/owners/", srv.handleOwnerBookings)
	mux.HandleFunc("/api/v1/users", srv.handleUsers)
	mux.HandleFunc("/api/v1/users/", srv.handleUserByID)
	mux.HandleFunc("/api/v1/exports/bookings", srv.handleExportBookings)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the wrapped handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTime reports the canonical venue-local clock.
func (s *HTTPServer) handleTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snapshot := s.resolver.Resolve(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"time":          snapshot.TimeOfDay,
		"zone":          models.WITAZone,
		"source":        snapshot.Source,
		"authoritative": snapshot.Authoritative(),
	})
}

func (s *HTTPServer) handlePlaces(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		places, err := s.places.ListApproved(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list places")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"places": places})

	case http.MethodPost:
		var place models.Place
		if err := decodeBody(r, &place); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if place.OwnerID == "" || place.Name == "" {
			writeError(w, http.StatusBadRequest, "owner_id and name are required")
			return
		}
		if err := s.places.CreatePlace(r.Context(), &place); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, &place)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handlePlaceByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitResourcePath(r.URL.Path, "/api/v1/places/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "place id is required")
		return
	}

	if action == "status" {
		s.handlePlaceStatus(w, r, id)
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		place, err := s.places.GetPlace(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, place)

	case http.MethodPut:
		var place models.Place
		if err := decodeBody(r, &place); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		place.ID = id
		if err := s.places.UpdatePlace(r.Context(), &place); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &place)

	case http.MethodDelete:
		if err := s.places.DeletePlace(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handlePlaceStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	place, err := s.places.Approve(r.Context(), id, body.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleAdmit(w, r)

	case http.MethodGet:
		bookings, err := s.bookings.ListBookings(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list bookings")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleAdmit is the public booking entry point.
func (s *HTTPServer) handleAdmit(w http.ResponseWriter, r *http.Request) {
	var req models.AdmissionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.PlaceID == "" {
		writeError(w, http.StatusBadRequest, "user_id and place_id are required")
		return
	}

	if s.limiter != nil {
		window := time.Duration(s.bookingCfg.RateLimitWindow) * time.Second
		allowed, err := s.limiter.Allow(r.Context(), "bookings:"+req.UserID, s.bookingCfg.RateLimitBookings, window)
		if err != nil {
			s.logger.Warn().Err(err).Msg("booking rate limiter unavailable")
		} else if !allowed {
			writeError(w, http.StatusTooManyRequests, "too many booking requests")
			return
		}
	}

	booking, err := s.bookings.Admit(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	summary, err := s.bookings.Summarize(r.Context(), booking)
	if err != nil {
		// The booking exists; fall back to the raw record.
		writeJSON(w, http.StatusCreated, booking)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitResourcePath(r.URL.Path, "/api/v1/bookings/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	if action == "status" {
		s.handleBookingStatus(w, r, id)
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case http.MethodDelete:
		if err := s.bookings.DeleteBooking(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// handleOwnerBookings serves GET /api/v1/owners/{id}/bookings.
func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ownerID, action := splitResourcePath(r.URL.Path, "/api/v1/owners/")
	if ownerID == "" || action != "bookings" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	bookings, err := s.bookings.ListOwnerBookings(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if email := r.URL.Query().Get("email"); email != "" {
			user, err := s.users.GetUserByEmail(r.Context(), email)
			if err != nil {
				s.writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, user)
			return
		}

		users, err := s.users.ListUsers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})

	case http.MethodPost:
		var user models.User
		if err := decodeBody(r, &user); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if user.Name == "" || user.Email == "" {
			writeError(w, http.StatusBadRequest, "name and email are required")
			return
		}
		if err := s.users.CreateUser(r.Context(), &user); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, &user)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, action := splitResourcePath(r.URL.Path, "/api/v1/users/")
	if id == "" || action != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	var body struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := time.Parse("2006-01-02", body.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("2006-01-02", body.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}

	path, err := s.exporter.BookingsByDateRange(r.Context(), body.Start, body.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_path": path})
}

// writeServiceError maps typed service errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}

	var closed *service.VenueClosedError
	if errors.As(err, &closed) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":       closed.Error(),
			"open_hours":  closed.OpenHours,
			"close_hours": closed.CloseHours,
		})
		return
	}

	var capacity *service.CapacityExceededError
	if errors.As(err, &capacity) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": capacity.Error(),
			"limit": capacity.Limit,
		})
		return
	}

	var invalid *service.InvalidTransitionError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusConflict, invalid.Error())
		return
	}

	s.logger.Error().Err(err).Msg("internal api error")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses resource IDs so the metric cardinality stays flat.
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 && parts[0] == "api" {
		return parts[2]
	}
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "root"
}

// splitResourcePath extracts "{id}" and an optional trailing action from
// paths like "/api/v1/places/{id}/status".
func splitResourcePath(path, prefix string) (id, action string) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		action = strings.TrimSpace(parts[1])
	}
	return id, action
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
