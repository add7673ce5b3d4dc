package credentials

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"outbound-dialer/pkg/logger"
)

// Known keys. Clear removes exactly these.
const (
	KeyBearerToken = "bearer_token"
	KeyOutboundID  = "outbound_id"
	KeyCampaignID  = "campaign_id"
)

var knownKeys = []string{KeyBearerToken, KeyOutboundID, KeyCampaignID}

const opTimeout = 2 * time.Second

// Credentials is the campaign credential triple persisted per user.
type Credentials struct {
	OutboundID  string `json:"outboundId"`
	BearerToken string `json:"bearerToken"`
	CampaignID  string `json:"campaignId,omitempty"`
}

// Token returns the bearer token without a pasted "Bearer " prefix.
func (c Credentials) Token() string {
	return NormalizeToken(c.BearerToken)
}

func (c Credentials) Configured() bool {
	return c.Token() != "" && strings.TrimSpace(c.OutboundID) != ""
}

// NormalizeToken trims whitespace and a leading "Bearer ".
func NormalizeToken(tok string) string {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimPrefix(tok, "Bearer ")
	return strings.TrimSpace(tok)
}

// Store is a best-effort key/value view over KV, namespaced per user.
// No method returns an error: storage failures are logged and treated as "absent".
type Store struct {
	kv     KV
	prefix string
	log    *slog.Logger
}

func NewStore(kv KV, userID string, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		kv:     kv,
		prefix: "dialer:" + userID + ":",
		log:    log.With("component", "credentials", "user_id", userID),
	}
}

func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	v, ok, err := s.kv.Get(ctx, s.prefix+key)
	if err != nil {
		s.log.Warn("credential read failed", "key", key, "err", err)
		return "", false
	}
	return v, ok
}

func (s *Store) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, s.prefix+key, value); err != nil {
		s.log.Warn("credential write failed", "key", key, "err", err)
	}
}

func (s *Store) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.kv.Del(ctx, s.prefix+key); err != nil {
		s.log.Warn("credential remove failed", "key", key, "err", err)
	}
}

// Clear removes the bearer token, outbound id and campaign id. Idempotent.
func (s *Store) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	keys := make([]string, 0, len(knownKeys))
	for _, k := range knownKeys {
		keys = append(keys, s.prefix+k)
	}
	if err := s.kv.Del(ctx, keys...); err != nil {
		s.log.Warn("credential clear failed", "err", err)
	}
}

// Credentials reads the triple. Missing keys come back empty.
func (s *Store) Credentials() Credentials {
	tok, _ := s.Get(KeyBearerToken)
	out, _ := s.Get(KeyOutboundID)
	camp, _ := s.Get(KeyCampaignID)
	return Credentials{OutboundID: out, BearerToken: tok, CampaignID: camp}
}

// Save writes token and outbound id, and the campaign id when present.
func (s *Store) Save(c Credentials) {
	s.Set(KeyBearerToken, strings.TrimSpace(c.BearerToken))
	s.Set(KeyOutboundID, strings.TrimSpace(c.OutboundID))
	if c.CampaignID != "" {
		s.Set(KeyCampaignID, c.CampaignID)
	}
}

func (s *Store) Configured() bool {
	return s.Credentials().Configured()
}
