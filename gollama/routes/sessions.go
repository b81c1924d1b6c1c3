package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"gollama/gollama/config"
	"gollama/gollama/controllers"
	"gollama/gollama/middlewares"
	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/utils/types"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionRoutes is the JSON history surface: /api/chats.
func SessionRoutes(ctrl *controllers.SessionsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middlewares.UserIDFromContext(r.Context())
		items, err := ctrl.List(r.Context(), userID, parseListFilters(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middlewares.UserIDFromContext(r.Context())
		stats, err := ctrl.Stats(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	r.Post("/bulk-delete", func(w http.ResponseWriter, r *http.Request) {
		var req types.BulkDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		userID, _ := middlewares.UserIDFromContext(r.Context())
		deleted, err := ctrl.BulkDelete(r.Context(), userID, req.ChatIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.BulkDeleteResponse{
			Message:      "chats deleted successfully",
			DeletedCount: deleted,
		})
	})

	r.Post("/export", func(w http.ResponseWriter, r *http.Request) {
		var req types.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Format == "" {
			req.Format = "json"
		}
		userID, _ := middlewares.UserIDFromContext(r.Context())
		resp, err := ctrl.Export(r.Context(), userID, req.ChatIDs, req.Format)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Route("/{chat_id}", func(cr chi.Router) {
		cr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseChatID(w, r)
			if !ok {
				return
			}
			userID, _ := middlewares.UserIDFromContext(r.Context())
			detail, err := ctrl.Detail(r.Context(), userID, id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, detail)
		})

		cr.Put("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseChatID(w, r)
			if !ok {
				return
			}
			var req types.UpdateSessionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			userID, _ := middlewares.UserIDFromContext(r.Context())
			detail, err := ctrl.Update(r.Context(), userID, id, req)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, detail)
		})

		cr.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseChatID(w, r)
			if !ok {
				return
			}
			userID, _ := middlewares.UserIDFromContext(r.Context())
			if err := ctrl.Delete(r.Context(), userID, id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

func parseChatID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "chat_id"))
	if err != nil {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parseListFilters(r *http.Request) dao.ListFilters {
	filters := dao.ListFilters{
		Search: r.URL.Query().Get("search"),
		Model:  r.URL.Query().Get("model"),
	}
	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive upper bound: anything created on that day counts.
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filters.DateTo = &end
		}
	}
	return filters
}
