package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"gollama/gollama/config"
	"gollama/gollama/controllers"
	"gollama/gollama/middlewares"
	"gollama/gollama/sources/guest"
	"gollama/gollama/sources/psql/dao"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChatRoutes is the web-facing chat surface: form-encoded posts with redirect
// semantics, the chunked streaming relay, and a websocket variant.
func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config, registry *guest.Registry) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.ViewerMiddleware(cfg, registry))

		// Session view for the viewer's latest chat, creating one on first visit.
		gr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			session, messages, err := ctrl.SessionView(r.Context(), viewerFrom(r), nil)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"chat":     session,
				"messages": messages,
				"models":   ctrl.Models(),
			})
		})

		gr.Get("/new", func(w http.ResponseWriter, r *http.Request) {
			session, err := ctrl.StartSession(r.Context(), viewerFrom(r), r.URL.Query().Get("model"))
			if err != nil {
				writeError(w, err)
				return
			}
			http.Redirect(w, r, "/chat/"+session.ID.String(), http.StatusSeeOther)
		})

		gr.Get("/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseSessionID(w, r)
			if !ok {
				return
			}
			session, messages, err := ctrl.SessionView(r.Context(), viewerFrom(r), &id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"chat":     session,
				"messages": messages,
				"models":   ctrl.Models(),
			})
		})

		gr.Post("/{session_id}/send", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseSessionID(w, r)
			if !ok {
				return
			}
			if err := ctrl.SendMessage(r.Context(), id, r.PostFormValue("prompt")); err != nil {
				writeError(w, err)
				return
			}
			http.Redirect(w, r, "/chat/"+id.String(), http.StatusSeeOther)
		})

		gr.Post("/{session_id}/stream", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseSessionID(w, r)
			if !ok {
				return
			}
			streamTurn(w, r, ctrl, id, r.PostFormValue("prompt"))
		})

		gr.Post("/{session_id}/model", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseSessionID(w, r)
			if !ok {
				return
			}
			if err := ctrl.ChangeModel(r.Context(), id, r.PostFormValue("model")); err != nil {
				writeError(w, err)
				return
			}
			http.Redirect(w, r, "/chat/"+id.String(), http.StatusSeeOther)
		})

		gr.Post("/{session_id}/delete", func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseSessionID(w, r)
			if !ok {
				return
			}
			latest, err := ctrl.DeleteChat(r.Context(), viewerFrom(r), id)
			if err != nil {
				writeError(w, err)
				return
			}
			if latest != nil {
				http.Redirect(w, r, "/chat/"+latest.ID.String(), http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/chat/new", http.StatusSeeOther)
		})
	})

	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(w, r, ctrl, cfg)
	})

	return r
}

// streamTurn relays generation fragments to the browser as chunked
// text/plain. The channel is drained to the end even when the client is gone,
// so the assembled bot message is still persisted server-side.
func streamTurn(w http.ResponseWriter, r *http.Request, ctrl *controllers.ChatController, id uuid.UUID, prompt string) {
	ch, err := ctrl.StreamMessage(r.Context(), id, prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	if ch == nil {
		// Empty prompt: a successful no-content response.
		return
	}

	flusher, _ := w.(http.Flusher)
	clientGone := false
	for fragment := range ch {
		if clientGone {
			continue
		}
		if _, err := w.Write([]byte(fragment)); err != nil {
			clientGone = true
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func serveWS(w http.ResponseWriter, r *http.Request, ctrl *controllers.ChatController, cfg config.Config) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx := r.Context()
	typ, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	if typ != websocket.MessageText {
		conn.Close(websocket.StatusUnsupportedData, "unsupported data")
		return
	}

	var input struct {
		Token     string    `json:"token"`
		SessionID uuid.UUID `json:"session_id"`
		Prompt    string    `json:"prompt"`
	}
	if err := json.Unmarshal(data, &input); err != nil {
		conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
		return
	}

	token, err := jwt.Parse(input.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid token"}`))
		conn.Close(websocket.StatusPolicyViolation, "invalid token")
		return
	}

	ch, err := ctrl.StreamMessage(ctx, input.SessionID, input.Prompt)
	if err != nil {
		if errors.Is(err, controllers.ErrSessionNotFound) {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"session not found"}`))
		} else {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"stream failed"}`))
		}
		conn.Close(websocket.StatusInternalError, "stream error")
		return
	}
	if ch != nil {
		for fragment := range ch {
			if err := conn.Write(ctx, websocket.MessageText, []byte(fragment)); err != nil {
				// Keep draining so the reply is persisted.
				for range ch {
				}
				break
			}
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func viewerFrom(r *http.Request) dao.Viewer {
	viewer := dao.Viewer{}
	if userID, ok := middlewares.UserIDFromContext(r.Context()); ok {
		viewer.UserID = &userID
	}
	if key, ok := middlewares.SessionKeyFromContext(r.Context()); ok {
		viewer.SessionKey = &key
	}
	return viewer
}
