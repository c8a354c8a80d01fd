package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/store"
	"github.com/adamavenir/branch/internal/types"
)

// Server wires the store, the hub, and the HTTP routes together.
type Server struct {
	cfg      Config
	db       *sql.DB
	hub      *Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
	http     *http.Server
}

// New builds a server around an open database.
func New(cfg Config, db *sql.DB, log *slog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		db:  db,
		hub: NewHub(log),
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The API is token-authenticated; origin checks add nothing for
			// non-browser clients.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/topics", s.withAuth(s.handleListTopics))
	mux.HandleFunc("POST /api/topics", s.withAuth(s.handleCreateTopic))
	mux.HandleFunc("GET /ws/topic/{id}", s.handleTopicSocket)
	return mux
}

// ListenAndServe blocks until the context is cancelled, then drains
// websocket rooms and shuts the HTTP listener down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// ─── helpers ───

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]string{"error": message})
}

// bearerToken extracts the session token from the Authorization header,
// falling back to the token query parameter for websocket upgrades, where
// browser clients cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *Server) authenticate(r *http.Request) (types.User, bool) {
	token := bearerToken(r)
	if token == "" {
		return types.User{}, false
	}
	user, ok, err := store.GetUserBySession(s.db, token)
	if err != nil {
		s.log.Error("resolve session", "err", err)
		return types.User{}, false
	}
	return user, ok
}

func (s *Server) withAuth(next func(w http.ResponseWriter, r *http.Request, user types.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(r)
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r, user)
	}
}

// ─── handlers ───

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok", "service": "branch"})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		s.respondError(w, http.StatusBadRequest, "missing credentials")
		return
	}
	if len(creds.Username) > 32 {
		s.respondError(w, http.StatusBadRequest, "username too long")
		return
	}

	user, err := store.CreateUser(s.db, creds.Username, creds.Password)
	if errors.Is(err, store.ErrUsernameTaken) {
		s.respondError(w, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		s.log.Error("signup", "err", err)
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	s.log.Info("user registered", "user", user.Username)
	s.respond(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed body")
		return
	}

	user, ok, err := store.VerifyUser(s.db, strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		s.log.Error("login", "err", err)
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "wrong username or password")
		return
	}

	token, err := store.CreateSession(s.db, user.ID)
	if err != nil {
		s.log.Error("create session", "err", err)
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.respond(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		_ = store.DeleteSession(s.db, token)
	}
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTopics(w http.ResponseWriter, _ *http.Request, _ types.User) {
	topics, err := store.ListTopics(s.db)
	if err != nil {
		s.log.Error("list topics", "err", err)
		s.respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if topics == nil {
		topics = []types.Topic{}
	}
	s.respond(w, http.StatusOK, topics)
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request, user types.User) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		s.respondError(w, http.StatusBadRequest, "missing title")
		return
	}
	if runes := []rune(title); len(runes) > s.cfg.MaxTopicTitle {
		title = string(runes[:s.cfg.MaxTopicTitle])
	}

	topic, err := store.CreateTopic(s.db, title, user.ID)
	if err != nil {
		s.log.Error("create topic", "err", err)
		s.respondError(w, http.StatusInternalServerError, "create failed")
		return
	}

	s.log.Info("topic created", "topic", topic.ID, "user", user.Username)
	s.respond(w, http.StatusCreated, topic)
}

func (s *Server) handleTopicSocket(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	topicID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no such topic")
		return
	}
	topic, err := store.GetTopic(s.db, topicID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no such topic")
		return
	}

	snapshot, err := store.ListMessages(s.db, topicID)
	if err != nil {
		s.log.Error("snapshot", "err", err)
		s.respondError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "err", err)
		return
	}

	c := &client{
		server:  s,
		conn:    conn,
		topicID: topicID,
		user:    user,
		send:    make(chan []byte, sendBufferSize),
	}

	ready, err := protocol.EncodeReady(protocol.ReadyPayload{
		User:     user,
		Topic:    topic,
		Messages: snapshot,
	})
	if err != nil {
		s.log.Error("encode ready", "err", err)
		_ = conn.Close()
		return
	}

	s.hub.register(c)
	c.send <- ready
	go c.writePump()
	go c.readPump()
}
