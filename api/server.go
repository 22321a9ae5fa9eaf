package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/QS-Iuro-Ware/Iuri-Ware/game/hub"
	"github.com/QS-Iuro-Ware/Iuri-Ware/transport/websocket"
)

// Server is the HTTP front door: the websocket upgrade route, a small
// read-only REST surface for introspection, and the static web client.
type Server struct {
	hub       *hub.Hub
	router    *mux.Router
	staticDir string
}

// NewServer creates the server. staticDir may be empty to disable static
// file serving.
func NewServer(h *hub.Hub, staticDir string) *Server {
	s := &Server{
		hub:       h,
		router:    mux.NewRouter(),
		staticDir: staticDir,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/ws/", s.handleWebSocket)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{name}", s.handleRoomInfo).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	if s.staticDir != "" {
		s.router.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
		s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/static/index.html", http.StatusFound)
		})
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(s.hub, w, r)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"rooms": s.hub.ListRooms()})
}

func (s *Server) handleRoomInfo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	wins, err := s.hub.RoomInfo(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"room":      name,
		"occupants": wins,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.Stats())
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
