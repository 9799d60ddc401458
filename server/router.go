package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"roomrec-server/metrics"
	"roomrec-server/server/handlers"
)

// RouterOptions configure the middleware around the routes.
type RouterOptions struct {
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

type Router struct {
	roomHandler *handlers.RoomHandler
	router      *mux.Router
	metrics     *metrics.Metrics
	limiter     *rate.Limiter
	options     RouterOptions
	logger      *log.Logger
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	roomHandler *handlers.RoomHandler,
	router *mux.Router,
	m *metrics.Metrics,
	options RouterOptions,
	logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	var limiter *rate.Limiter
	if options.RateLimitRPS > 0 {
		burst := options.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RateLimitRPS), burst)
	}
	return &Router{
		roomHandler: roomHandler,
		router:      router,
		metrics:     m,
		limiter:     limiter,
		options:     options,
		logger:      logger,
	}
}

func (r *Router) RegisterRoutes() {
	// expects a JSON RecommendationRequest body
	r.handle("/v1/recommend", rateLimit(r.limiter, http.HandlerFunc(r.roomHandler.Recommend)), http.MethodPost)

	r.handle("/v1/rooms", http.HandlerFunc(r.roomHandler.ListRooms), http.MethodGet)
	r.handle("/v1/rooms/metrics", http.HandlerFunc(r.roomHandler.RoomsWithMetrics), http.MethodGet)
	r.handle("/v1/rooms/{room_name}/chart", http.HandlerFunc(r.roomHandler.RoomChart), http.MethodGet)

	// expects ?start={YYYY-MM-DDTHH:MM:SS}&end={YYYY-MM-DDTHH:MM:SS}
	r.handle("/v1/calendar/events", http.HandlerFunc(r.roomHandler.CalendarEvents), http.MethodGet)

	r.handle("/v1/snapshot", http.HandlerFunc(r.roomHandler.Snapshot), http.MethodGet)
	r.handle("/v1/snapshot/refresh", http.HandlerFunc(r.roomHandler.RefreshSnapshot), http.MethodPost)

	r.handle("/ping", http.HandlerFunc(r.roomHandler.Ping), http.MethodGet)
	r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)
}

func (r *Router) handle(path string, h http.Handler, method string) {
	r.router.Handle(path, r.metrics.WrapHandler(path, h)).Methods(method, http.MethodOptions)
}

// Handler wraps the routes with CORS and access logging.
func (r *Router) Handler() http.Handler {
	origins := r.options.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)
	access := r.logger.WithPrefix("http").StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	return gorillahandlers.LoggingHandler(access.Writer(), cors(r.router))
}

// rateLimit rejects requests beyond the limiter's rate with 429. A nil limiter admits all.
func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests"}` + "\n"))
			return
		}
		next.ServeHTTP(w, req)
	})
}
