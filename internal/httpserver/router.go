package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"coachconnect/internal/auth"
	"coachconnect/internal/backend"
	"coachconnect/internal/chat"
	"coachconnect/internal/config"
	"coachconnect/internal/httpserver/handlers"
)

// NewRouter wires the gateway's route surface. The session guard runs on
// every request; role middleware narrows the client-only operations.
func NewRouter(cfg config.Config, sessions *auth.CookieStore, be, nutrition *backend.Client, hub *chat.Hub, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(auth.Guard(sessions, lg))

	r.Route("/api", func(api chi.Router) {
		api.Post("/login", handlers.Login(be, sessions, lg))
		api.Post("/logout", handlers.Logout(sessions))
		api.Get("/me", handlers.Me(sessions))
		api.Post("/register", handlers.Register(be, lg))

		api.Post("/form-show", handlers.FormShow(be, lg))
		api.Post("/form-submit", handlers.FormSave(be, cfg.EnforceTrainer, lg))
		api.Post("/form-submit-client", handlers.FormSubmitClient(be, lg))
		api.Get("/form-submissions", handlers.FormSubmissions(be, lg))

		api.Get("/trainercode", handlers.TrainerCode(be, sessions, lg))
		api.Post("/trainercode", handlers.RotateTrainerCode(be, lg))
		api.Get("/client/check-trainer", handlers.CheckTrainer(be, lg))

		api.Group(func(client chi.Router) {
			client.Use(auth.RequireRole(auth.RoleClient))
			client.Post("/client/link-trainer", handlers.LinkTrainer(be, lg))
			client.Post("/client/select-trainer", handlers.SelectTrainer(be, lg))
			client.Get("/trainers/available", handlers.AvailableTrainers(be, lg))
		})

		api.Route("/nutrition", func(n chi.Router) {
			n.Get("/search", handlers.NutritionSearch(nutrition, lg))
			n.Get("/product/{barcode}", handlers.NutritionProduct(nutrition, lg))
			n.Post("/intake", handlers.IntakeAdd(nutrition, lg))
			n.Post("/intake/add-from-barcode", handlers.IntakeAddFromBarcode(nutrition, lg))
			n.Get("/intake/daily/{userID}", handlers.IntakeDaily(nutrition, lg))
			n.Get("/intake/range/{userID}", handlers.IntakeRange(nutrition, lg))
			n.Get("/intake/week/{userID}", handlers.IntakeWeek(nutrition, lg))
			n.Put("/intake/{recordID}", handlers.IntakeUpdate(nutrition, lg))
			n.Delete("/intake/{recordID}", handlers.IntakeDelete(nutrition, lg))
			n.Get("/goals/{userID}", handlers.GoalsGet(nutrition, lg))
			n.Post("/goals/update", handlers.GoalsUpdate(nutrition, lg))
			n.Post("/favorites/add-from-barcode", handlers.FavoriteAddFromBarcode(nutrition, lg))
			n.Get("/favorites/detail/{favoriteID}", handlers.FavoriteDetail(nutrition, lg))
			n.Delete("/favorites/delete/{favoriteID}", handlers.FavoriteDelete(nutrition, lg))
		})

		api.Get("/chat/ws", hub.ServeWS)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
