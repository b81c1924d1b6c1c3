package routes

import (
	"encoding/json"
	"net/http"

	"gollama/gollama/config"
	"gollama/gollama/controllers"
	"gollama/gollama/middlewares"
	"gollama/gollama/utils/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(authCtrl *controllers.AuthController, userCtrl *controllers.UserController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		var req types.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := authCtrl.Register(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		setTokenCookie(w, resp.Token)
		writeJSON(w, http.StatusCreated, resp)
	})

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := authCtrl.Login(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		setTokenCookie(w, resp.Token)
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		// JWTs are stateless; logout just drops the cookie.
		http.SetCookie(w, &http.Cookie{
			Name:     middlewares.TokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	})

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middlewares.UserIDFromContext(r.Context())
			profile, err := userCtrl.Profile(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, profile)
		})

		gr.Put("/profile", func(w http.ResponseWriter, r *http.Request) {
			var req types.ProfileUpdateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			userID, _ := middlewares.UserIDFromContext(r.Context())
			profile, err := userCtrl.UpdateProfile(r.Context(), userID, req)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, profile)
		})

		gr.Post("/profile/picture", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(8 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			file, header, err := r.FormFile("profile_picture")
			if err != nil {
				http.Error(w, "profile_picture file required", http.StatusBadRequest)
				return
			}
			defer file.Close()

			userID, _ := middlewares.UserIDFromContext(r.Context())
			profile, err := userCtrl.UploadAvatar(
				r.Context(), userID, file, header.Size, header.Header.Get("Content-Type"),
			)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, profile)
		})
	})

	return r
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
