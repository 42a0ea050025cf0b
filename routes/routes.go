package routes

import (
	"github.com/Adilet09/academy-league/handlers"
	"github.com/Adilet09/academy-league/middleware"
	"github.com/Adilet09/academy-league/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.Authorize(models.RoleAdmin, models.RoleOwner)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Создание аккаунтов персонала (судьи, администраторы)
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)
		r.Post("/users", authHandler.CreateUser)
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичный просмотр турнира с матчами
		r.Get("/{tournamentID}", tournamentHandler.GetTournamentOverviewHandler)

		// Защищённые маршруты только для владельцев/администраторов
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", tournamentHandler.CreateTournamentHandler)
			r.Post("/{tournamentID}/matches", matchHandler.CreateMatchHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteTournamentHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			// Счёт может вести и назначенный судья - роль решает policy в сервисе
			r.Put("/{matchID}/score", matchHandler.RecordPointHandler)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Put("/{matchID}/result", matchHandler.SetResultHandler)
				r.Put("/{matchID}/referee", matchHandler.AssignRefereeHandler)
			})
		})
	})

	// Live-обновления счёта по турниру
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
