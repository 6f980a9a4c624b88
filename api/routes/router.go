package routes

import (
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/controllers"
	"github.com/courierlabs/robocourier-backend/api/middleware"
	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/courierlabs/robocourier-backend/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Logger   *logger.Logger
	Writer   *responses.Writer
	Metrics  *metrics.Metrics
	Resolver middleware.BearerResolver

	Accounts   controllers.AccountRegistrar
	Sessions   controllers.SessionIssuer
	Users      controllers.AccountLister
	Targets    controllers.TargetService
	Deliveries controllers.DeliveryService
	Dispatcher controllers.Dispatcher
	Robots     controllers.RobotService
	Verifier   controllers.RobotVerifier

	ReadinessPingers []controllers.Pinger
}

// New assembles the full HTTP surface. Only delivery creation requires
// a bearer; robots live on a trusted fleet network and drive the rest
// of the lifecycle without accounts.
func New(deps Deps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.Recoverer(deps.Logger, deps.Writer))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		deps.Writer.NotFound(r.Context(), w)
	})

	router.Get("/health/live", controllers.Liveness(deps.Writer))
	router.Get("/health/ready", controllers.Readiness(deps.Writer, deps.ReadinessPingers...))
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{}))

	router.Post("/register", controllers.Register(deps.Accounts, deps.Writer))
	router.Post("/login", controllers.Login(deps.Sessions, deps.Writer))
	router.Post("/logout", controllers.Logout(deps.Sessions, deps.Writer))

	router.Get("/users", controllers.ListUsers(deps.Users, deps.Writer))

	router.Post("/targets", controllers.CreateTarget(deps.Targets, deps.Writer))
	router.Get("/targets", controllers.ListTargets(deps.Targets, deps.Writer))
	router.Delete("/targets", controllers.DeleteTargets(deps.Targets, deps.Writer))
	router.Get("/target/{id}", controllers.GetTarget(deps.Targets, deps.Writer))
	router.Patch("/target/{id}", controllers.UpdateTarget(deps.Targets, deps.Writer))
	router.Delete("/target/{id}", controllers.DeleteTarget(deps.Targets, deps.Writer))

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireBearer(deps.Resolver, deps.Logger, deps.Writer))
		protected.Post("/deliveries", controllers.CreateDelivery(deps.Deliveries, deps.Writer))
	})
	router.Get("/deliveries", controllers.ListDeliveries(deps.Deliveries, deps.Writer))
	router.Delete("/deliveries", controllers.DeleteDeliveries(deps.Deliveries, deps.Writer))
	router.Get("/delivery/{id}", controllers.GetDelivery(deps.Deliveries, deps.Writer))
	router.Patch("/delivery/{id}", controllers.TransitionDelivery(deps.Dispatcher, deps.Writer))
	router.Delete("/delivery/{id}", controllers.DeleteDelivery(deps.Deliveries, deps.Writer))

	router.Route("/robot/{id}", func(robot chi.Router) {
		for _, field := range []string{"correction", "angle", "distance", "motor", "lock"} {
			handler := controllers.RobotField(deps.Robots, deps.Writer, field)
			robot.Get("/"+field, handler)
			robot.Post("/"+field, handler)
		}
		robot.Get("/batch", controllers.RobotBatch(deps.Robots, deps.Writer))
		robot.Post("/batch", controllers.RobotBatch(deps.Robots, deps.Writer))
		robot.Post("/verify", controllers.VerifyRobot(deps.Verifier, deps.Writer))
	})

	return router
}
