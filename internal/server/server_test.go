package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adamavenir/branch/internal/protocol"
	"github.com/adamavenir/branch/internal/store"
	"github.com/adamavenir/branch/internal/types"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := Config{Addr: ":0", MaxMessageLen: 50, MaxTopicTitle: 20}
	s := New(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// signupAndLogin registers a user and returns a live session token.
func signupAndLogin(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "hunter22"}

	resp := postJSON(t, ts.URL+"/api/signup", "", creds)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/login", "", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	var login struct {
		Token string     `json:"token"`
		User  types.User `json:"user"`
	}
	decodeBody(t, resp, &login)
	if login.Token == "" || login.User.Username != username {
		t.Fatalf("bad login payload: %+v", login)
	}
	return login.Token
}

func TestSignupRejectsDuplicates(t *testing.T) {
	_, ts := newTestServer(t)
	signupAndLogin(t, ts, "alice")

	resp := postJSON(t, ts.URL+"/api/signup", "", map[string]string{"username": "alice", "password": "other"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, ts := newTestServer(t)
	signupAndLogin(t, ts, "alice")

	resp := postJSON(t, ts.URL+"/api/login", "", map[string]string{"username": "alice", "password": "wrong"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestTopicsRequireAuth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/topics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateAndListTopics(t *testing.T) {
	_, ts := newTestServer(t)
	token := signupAndLogin(t, ts, "alice")

	resp := postJSON(t, ts.URL+"/api/topics", token, map[string]string{"title": "  weekend plans  "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var created types.Topic
	decodeBody(t, resp, &created)
	if created.Title != "weekend plans" {
		t.Fatalf("title not trimmed: %q", created.Title)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/topics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var topics []types.Topic
	decodeBody(t, listResp, &topics)
	if len(topics) != 1 || topics[0].ID != created.ID {
		t.Fatalf("unexpected topic list: %+v", topics)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	_, ts := newTestServer(t)
	token := signupAndLogin(t, ts, "alice")

	resp := postJSON(t, ts.URL+"/api/logout", token, nil)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/topics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	listResp.Body.Close()
	if listResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", listResp.StatusCode)
	}
}

func wsURL(ts *httptest.Server, topicID int64, token string) string {
	base := strings.Replace(ts.URL, "http://", "ws://", 1)
	return base + "/ws/topic/" + strconv.FormatInt(topicID, 10) + "?token=" + token
}

func createTopic(t *testing.T, ts *httptest.Server, token, title string) types.Topic {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/topics", token, map[string]string{"title": title})
	var topic types.Topic
	decodeBody(t, resp, &topic)
	return topic
}

func readEvent(t *testing.T, conn *websocket.Conn) *protocol.ServerEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	event, err := protocol.DecodeServerEvent(data)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if event == nil {
		t.Fatal("server sent a frame the client does not understand")
	}
	return event
}

func TestSocketReadyAndBroadcast(t *testing.T) {
	_, ts := newTestServer(t)
	token := signupAndLogin(t, ts, "alice")
	topic := createTopic(t, ts, token, "general")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, topic.ID, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ready := readEvent(t, conn)
	if ready.Type != protocol.TypeReady {
		t.Fatalf("first frame must be ready, got %q", ready.Type)
	}
	if ready.Ready.Topic.ID != topic.ID || ready.Ready.User.Username != "alice" {
		t.Fatalf("bad ready payload: %+v", ready.Ready)
	}
	if len(ready.Ready.Messages) != 0 {
		t.Fatalf("fresh topic snapshot must be empty, got %d", len(ready.Ready.Messages))
	}

	// A second client in the same room sees the first client's post.
	other, _, err := websocket.DefaultDialer.Dial(wsURL(ts, topic.ID, token), nil)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer other.Close()
	readEvent(t, other) // its ready frame

	frame, _ := json.Marshal(protocol.NewMessage{Type: protocol.TypeNewMessage, Body: "hello room"})
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, c := range []*websocket.Conn{conn, other} {
		event := readEvent(t, c)
		if event.Type != protocol.TypeMessage {
			t.Fatalf("expected message frame, got %q", event.Type)
		}
		if event.Message.Body != "hello room" || event.Message.Username != "alice" {
			t.Fatalf("bad broadcast payload: %+v", event.Message)
		}
	}
}

func TestSocketEditAndReact(t *testing.T) {
	_, ts := newTestServer(t)
	token := signupAndLogin(t, ts, "alice")
	topic := createTopic(t, ts, token, "general")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, topic.ID, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readEvent(t, conn)

	frame, _ := json.Marshal(protocol.NewMessage{Type: protocol.TypeNewMessage, Body: "draft"})
	_ = conn.WriteMessage(websocket.TextMessage, frame)
	posted := readEvent(t, conn)

	frame, _ = json.Marshal(protocol.EditMessage{Type: protocol.TypeEditMessage, MessageID: posted.Message.ID, Body: "final"})
	_ = conn.WriteMessage(websocket.TextMessage, frame)
	edited := readEvent(t, conn)
	if edited.Type != protocol.TypeEdit || edited.Message.Body != "final" {
		t.Fatalf("bad edit frame: %+v", edited)
	}

	frame, _ = json.Marshal(protocol.React{Type: protocol.TypeReact, MessageID: posted.Message.ID, Value: types.ReactionLike})
	_ = conn.WriteMessage(websocket.TextMessage, frame)
	reacted := readEvent(t, conn)
	if reacted.Type != protocol.TypeReaction || reacted.Message.Likes != 1 {
		t.Fatalf("bad reaction frame: %+v", reacted)
	}
}

func TestSocketClampsLongBody(t *testing.T) {
	_, ts := newTestServer(t)
	token := signupAndLogin(t, ts, "alice")
	topic := createTopic(t, ts, token, "general")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, topic.ID, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readEvent(t, conn)

	long := strings.Repeat("x", 500)
	frame, _ := json.Marshal(protocol.NewMessage{Type: protocol.TypeNewMessage, Body: long})
	_ = conn.WriteMessage(websocket.TextMessage, frame)
	event := readEvent(t, conn)
	if got := len([]rune(event.Message.Body)); got != 50 {
		t.Fatalf("expected body clamped to 50 runes, got %d", got)
	}
}

func TestSocketRejectsBadToken(t *testing.T) {
	_, ts := newTestServer(t)
	token := signupAndLogin(t, ts, "alice")
	topic := createTopic(t, ts, token, "general")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, topic.ID, "bogus"), nil)
	if err == nil {
		t.Fatal("dial with bad token must fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}
