// Package stubserver is an in-memory backend that speaks the panel's wire
// protocol. It exists for local development and end-to-end tests.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sas-panel/internal/channel"
	"sas-panel/internal/client"
	"sas-panel/internal/common/logger"
	"sas-panel/internal/models"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

type Options struct {
	Username string
	Password string
	Timezone string
	Hash     HashParams
	Channel  channel.Settings
	// Latency delays every reply. Replies may then arrive out of order.
	Latency time.Duration
	Logger  logger.Logger
}

// Server answers requests from a Store. It is an http.Handler that upgrades
// every request to a channel connection.
type Server struct {
	store    *Store
	users    *Users
	settings channel.Settings
	latency  time.Duration
	log      logger.Logger
}

func New(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.Hash == (HashParams{}) {
		opts.Hash = DefaultHashParams
	}

	users := NewUsers(opts.Hash)
	if err := users.Add(opts.Username, opts.Password); err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}

	store := NewStore()
	if opts.Timezone != "" {
		store.SetSetting(settingKeys[client.ObjectTimezone], opts.Timezone)
	}

	return &Server{
		store:    store,
		users:    users,
		settings: opts.Channel,
		latency:  opts.Latency,
		log:      log,
	}, nil
}

// Store exposes the backing store for seeding and inspection.
func (s *Server) Store() *Store {
	return s.store
}

// settingKeys maps a scalar object to its reply field and alter parameter.
var settingKeys = map[string]string{
	client.ObjectTimezone:  "timezone",
	client.ObjectSMSAPIKey: "api-key",
	client.ObjectTelephone: "telephone",
}

type request struct {
	Action     client.Action   `json:"action"`
	Parameters json.RawMessage `json:"parameters"`
	ID         *string         `json:"id"`
	Username   *string         `json:"username"`
	Password   *string         `json:"password"`
}

type fetchParams struct {
	ID     *int64 `json:"id"`
	Limit  *int   `json:"limit"`
	Offset *int   `json:"offset"`
}

type idParams struct {
	ID *int64 `json:"id"`
}

type credentialParams struct {
	NewUsername string `json:"new_username"`
	NewPassword string `json:"new_password"`
}

var errRejected = errors.New("request rejected")

// Handle answers one raw request. It returns nil for messages that cannot be
// answered at all, and a reply carrying only the id for failed requests.
func (s *Server) Handle(raw []byte) []byte {
	var req request
	if err := json.Unmarshal(raw, &req); err != nil || req.ID == nil {
		s.log.Debug("dropping malformed request", map[string]interface{}{"error": err})
		return nil
	}

	reply := map[string]interface{}{"id": *req.ID}
	fields, err := s.answer(req)
	if err != nil {
		s.log.Info("request failed", map[string]interface{}{
			"action": req.Action.String(),
			"error":  err.Error(),
		})
	}
	for k, v := range fields {
		reply[k] = v
	}

	out, err := json.Marshal(reply)
	if err != nil {
		s.log.Error("encode reply", map[string]interface{}{"error": err})
		out, _ = json.Marshal(map[string]string{"id": *req.ID})
	}
	return out
}

func (s *Server) answer(req request) (map[string]interface{}, error) {
	if req.Username == nil || req.Password == nil {
		return nil, fmt.Errorf("%w: missing credentials", errRejected)
	}
	if !s.users.Login(*req.Username, *req.Password) {
		return nil, fmt.Errorf("%w: bad credentials for %q", errRejected, *req.Username)
	}

	params := req.Parameters
	if len(params) == 0 {
		params = json.RawMessage("null")
	}

	if req.Action.Object == client.ObjectUsers {
		return s.answerUsers(req.Action.Verb, *req.Username, params)
	}
	if key, ok := settingKeys[req.Action.Object]; ok {
		return s.answerSetting(req.Action.Verb, key, params)
	}
	kind, err := models.ParseKind(req.Action.Object)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRejected, err)
	}
	return s.answerRecord(kind, req.Action.Verb, params)
}

func (s *Server) answerRecord(kind models.Kind, verb string, params json.RawMessage) (map[string]interface{}, error) {
	switch verb {
	case client.VerbGet:
		var p fetchParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: parameters: %v", errRejected, err)
		}
		return map[string]interface{}{"results": s.store.Get(kind, p.ID, p.Limit, p.Offset)}, nil

	case client.VerbAdd, client.VerbAlter:
		rec, err := decodeRecord(kind, params)
		if err != nil {
			return nil, err
		}
		adding := verb == client.VerbAdd
		if adding != (rec.RecordID() == 0) {
			return nil, fmt.Errorf("%w: %s with id %d", errRejected, verb, rec.RecordID())
		}
		id, ok := s.store.Put(rec)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s not stored", errRejected, kind, verb)
		}
		if adding {
			return map[string]interface{}{"added_id": id}, nil
		}
		return success(), nil

	case client.VerbRemove:
		var p idParams
		if err := json.Unmarshal(params, &p); err != nil || p.ID == nil {
			return nil, fmt.Errorf("%w: remove needs an id", errRejected)
		}
		s.store.Delete(kind, *p.ID)
		return success(), nil
	}
	return nil, fmt.Errorf("%w: unknown verb %q", errRejected, verb)
}

func decodeRecord(kind models.Kind, params json.RawMessage) (models.Record, error) {
	rec, err := models.NewRecord(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRejected, err)
	}
	if err := json.Unmarshal(params, rec); err != nil {
		return nil, fmt.Errorf("%w: parameters: %v", errRejected, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errRejected, err)
	}
	return rec, nil
}

func (s *Server) answerUsers(verb, username string, params json.RawMessage) (map[string]interface{}, error) {
	switch verb {
	case client.VerbLogin:
		return success(), nil
	case client.VerbAlter:
		var p credentialParams
		if err := json.Unmarshal(params, &p); err != nil || p.NewUsername == "" || p.NewPassword == "" {
			return nil, fmt.Errorf("%w: users alter needs new_username and new_password", errRejected)
		}
		if err := s.users.Rename(username, p.NewUsername, p.NewPassword); err != nil {
			return nil, fmt.Errorf("%w: %v", errRejected, err)
		}
		return success(), nil
	}
	return nil, fmt.Errorf("%w: unknown verb %q", errRejected, verb)
}

func (s *Server) answerSetting(verb, key string, params json.RawMessage) (map[string]interface{}, error) {
	switch verb {
	case client.VerbGet:
		return map[string]interface{}{key: s.store.Setting(key)}, nil
	case client.VerbAlter:
		var p map[string]string
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: parameters: %v", errRejected, err)
		}
		value, ok := p[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", errRejected, key)
		}
		s.store.SetSetting(key, value)
		return success(), nil
	}
	return nil, fmt.Errorf("%w: unknown verb %q", errRejected, verb)
}

func success() map[string]interface{} {
	return map[string]interface{}{"status": "success"}
}

// ServeHTTP upgrades the request and answers messages until the peer leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := channel.Upgrade(w, r, s.settings, s.log)
	if err != nil {
		s.log.Warn("upgrade failed", map[string]interface{}{"error": err, "remote": r.RemoteAddr})
		return
	}
	defer ws.Close()

	s.log.Info("panel connected", map[string]interface{}{"remote": r.RemoteAddr})
	for msg := range ws.Messages() {
		reply := s.Handle(msg)
		if reply == nil {
			continue
		}
		if s.latency > 0 {
			time.AfterFunc(s.latency, func() { s.send(ws, reply) })
			continue
		}
		s.send(ws, reply)
	}
	s.log.Info("panel disconnected", map[string]interface{}{"remote": r.RemoteAddr})
}

func (s *Server) send(ws *channel.WebSocket, reply []byte) {
	if err := ws.Send(context.Background(), reply); err != nil {
		s.log.Warn("reply not sent", map[string]interface{}{"error": err})
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("stub backend listening", map[string]interface{}{"addr": addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Hijacked channel connections are not tracked by Shutdown.
		return srv.Shutdown(shutdownCtx)
	}
}
