// Package rewardstest provides an in-process fake of the rewards API. The server
// doubles as an HTTP forward proxy: clients point their base URL at BaseURL and
// their proxy at Endpoint, so every request proves it went through the proxy.
package rewardstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/xterio-checker/internal/proxy"
	"github.com/GoPolymarket/xterio-checker/internal/signer"
)

// BaseURL is unresolvable on purpose; only the proxy can reach it.
const BaseURL = "http://xterio.test"

// Stage names mirror the rewards package constants; importing them would cycle
// with the rewards tests. Keep both in sync.
const (
	StageLoginChallenge = "login_challenge"
	StageLoginSubmit    = "login_submit"
	StagePointsFetch    = "points_fetch"
)

// Account scripts how the fake answers for one wallet address.
type Account struct {
	Points      int64
	BonusPoints int64
	// FailStage answers 500 at the named stage.
	FailStage string
	// PointsJSON replaces the dashboard "data" object when set.
	PointsJSON string
	// Delay is applied before answering any request for this wallet.
	Delay time.Duration
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]Account
	challenges map[string]string
	tokens     map[string]string
	hits       map[string]int
	hosts      map[string]int
	seq        int
}

func NewServer() *Server {
	s := &Server{
		accounts:   make(map[string]Account),
		challenges: make(map[string]string),
		tokens:     make(map[string]string),
		hits:       make(map[string]int),
		hosts:      make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /account/v1/login/wallet/{address}", s.handleChallenge)
	mux.HandleFunc("POST /account/v1/login/wallet", s.handleLogin)
	mux.HandleFunc("GET /account/v1/points/dashboard", s.handlePoints)
	s.Server = httptest.NewServer(s.browserOnly(mux))
	return s
}

// Endpoint returns the server as an http proxy endpoint.
func (s *Server) Endpoint() proxy.Endpoint {
	return proxy.MustParseEndpoint(s.URL)
}

func (s *Server) SetAccount(address string, acct Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(address)] = acct
}

// Hits returns how many requests reached the given stage.
func (s *Server) Hits(stage string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[stage]
}

// ProxiedHosts returns request counts keyed by the Host the client asked for.
func (s *Server) ProxiedHosts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.hosts))
	for k, v := range s.hosts {
		out[k] = v
	}
	return out
}

func (s *Server) browserOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hosts[r.Host]++
		s.mu.Unlock()
		if r.Header.Get("User-Agent") == "" || r.Header.Get("Origin") == "" || r.Header.Get("Referer") == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{"msg": "unrecognized client"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	address := strings.ToLower(r.PathValue("address"))
	acct := s.enter(StageLoginChallenge, address)
	wait(r, acct.Delay)
	if acct.FailStage == StageLoginChallenge {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": "internal error"})
		return
	}

	s.mu.Lock()
	s.seq++
	challenge := fmt.Sprintf("Welcome to Xterio!\nAddress: %s\nNonce: %d", address, s.seq)
	s.challenges[address] = challenge
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"message": challenge}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address    string `json:"address"`
		Type       string `json:"type"`
		Sign       string `json:"sign"`
		Provider   string `json:"provider"`
		InviteCode string `json:"invite_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "bad json"})
		return
	}
	address := strings.ToLower(req.Address)
	acct := s.enter(StageLoginSubmit, address)
	wait(r, acct.Delay)
	if acct.FailStage == StageLoginSubmit {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": "internal error"})
		return
	}
	if req.Type != "eth" || req.Provider != "METAMASK" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "unsupported provider"})
		return
	}

	// Each challenge is consumed exactly once.
	s.mu.Lock()
	challenge, ok := s.challenges[address]
	delete(s.challenges, address)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "no challenge"})
		return
	}
	recovered, err := signer.RecoverText(challenge, req.Sign)
	if err != nil || strings.ToLower(recovered.Hex()) != address {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "bad signature"})
		return
	}

	s.mu.Lock()
	s.seq++
	token := fmt.Sprintf("token-%d", s.seq)
	s.tokens[token] = address
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id_token": token}})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	address, ok := s.tokens[r.Header.Get("Authorization")]
	s.mu.Unlock()
	if !ok {
		s.enter(StagePointsFetch, "")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid token"})
		return
	}
	acct := s.enter(StagePointsFetch, address)
	wait(r, acct.Delay)
	if acct.FailStage == StagePointsFetch {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": "internal error"})
		return
	}
	if acct.PointsJSON != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"data":%s}`, acct.PointsJSON)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"total_points": []map[string]any{
			{"points": acct.Points, "bonus_points": acct.BonusPoints},
		},
	}})
}

func (s *Server) enter(stage, address string) Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[stage]++
	return s.accounts[address]
}

func wait(r *http.Request, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-r.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
