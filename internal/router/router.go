package router

import (
	"net/http"
	"strings"

	"profile-service/internal/config"
	"profile-service/internal/core"
	"profile-service/internal/handlers"
	"profile-service/internal/metrics"
	"profile-service/internal/middleware"

	_ "profile-service/docs"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// Dependencies are the services the HTTP layer calls into.
type Dependencies struct {
	Users  core.UserService
	Photos core.PhotoService
	Tokens core.TokenService
	Probe  handlers.StatusProbe
}

func Setup(app *config.Application, deps Dependencies) http.Handler {
	router := mux.NewRouter()

	h := handlers.New(app, deps.Users, deps.Photos, deps.Probe)
	mw := middleware.New(app, deps.Tokens)

	// Apply global middleware in order of execution
	router.Use(mw.RequestID)
	router.Use(otelmux.Middleware("profile-service"))
	router.Use(mw.Recovery)
	router.Use(mw.Logging)
	router.Use(middleware.Security)
	router.Use(mw.Timeout(app.Config.GetRequestTimeout()))

	// Health and monitoring routes (no authentication required)
	router.HandleFunc("/status", h.Status).Methods("GET")
	router.HandleFunc("/status/detailed", h.StatusDetailed).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if !app.Config.IsProduction() {
		router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	}

	// Uploaded photos are public, read-only
	if app.Config.StorageBackend == "local" {
		prefix := strings.TrimSuffix(app.Config.UploadURLPrefix, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(app.Config.UploadDir)))
		router.PathPrefix(prefix).Handler(noDirListing(files)).Methods("GET", "HEAD")
	}

	// Public authentication routes
	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", h.Register).Methods("POST")
	auth.HandleFunc("/login", h.Login).Methods("POST")

	// Protected user routes
	user := router.PathPrefix("/api/user").Subrouter()
	user.Use(mw.Auth)

	user.HandleFunc("/me", h.Me).Methods("GET")
	user.HandleFunc("/update", h.UpdateProfile).Methods("PUT")
	user.HandleFunc("/delete", h.DeleteAccount).Methods("DELETE")
	user.HandleFunc("/photo", h.UploadPhoto).Methods("POST")
	user.HandleFunc("/photo", h.DeletePhoto).Methods("DELETE")

	// CORS wraps the router so preflight requests never reach method matching
	c := cors.New(cors.Options{
		AllowedOrigins:   app.Config.CORS_Allowed_Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	})

	return promhttp.InstrumentHandlerDuration(metrics.RequestDuration, c.Handler(router))
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
