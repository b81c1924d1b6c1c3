package routes

import (
	"net/http"

	"gollama/gollama/controllers"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes(ctrl *controllers.HealthController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		ctrl.HealthCheck(w, r)
	})
	return r
}
