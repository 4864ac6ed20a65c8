// Package auth binds requests to a tenant. In session mode the tenant id lives
// server-side in Redis and the browser only holds a signed, encrypted session
// id; header mode trusts X-Tenant-ID and exists for local development.
//
// Session keys: 32 or 64 bytes for HMAC, 16, 24 or 32 bytes for AES.
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "itemtree:session:"
	defaultSessionAge = 7 * 24 * time.Hour
)

// SessionOptions configures NewSessionStore.
type SessionOptions struct {
	AuthKey       []byte
	EncryptionKey []byte
	// Secure marks the cookie HTTPS-only; set it outside local development.
	Secure bool
	MaxAge time.Duration
}

// RedisStore is a sessions.Store keeping session values in Redis under
// "itemtree:session:<id>" with a TTL equal to the cookie MaxAge.
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options *sessions.Options
}

var _ sessions.Store = (*RedisStore)(nil)

func NewSessionStore(client *redis.Client, opts SessionOptions) *RedisStore {
	age := opts.MaxAge
	if age <= 0 {
		age = defaultSessionAge
	}
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(opts.AuthKey, opts.EncryptionKey),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(age.Seconds()),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the stored session for the request cookie. A missing, tampered
// or expired cookie, or a session evicted from Redis, yields a fresh session
// rather than an error so the middleware answers 401 instead of 500.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	session.ID = id
	if err := s.load(r.Context(), session); err != nil {
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session and writes its cookie. A negative MaxAge deletes
// both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), sessionKeyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	if err := s.save(r.Context(), session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, buf.Bytes(), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) error {
	data, err := s.client.Get(ctx, sessionKeyPrefix+session.ID).Bytes()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&session.Values)
}

// BindTenant stores tenantID in the request's session and writes the cookie.
// The login flow that authenticates the caller sits in front of this service.
func BindTenant(w http.ResponseWriter, r *http.Request, store sessions.Store, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return errors.New("bind tenant: nil tenant id")
	}
	session, err := store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("bind tenant: %w", err)
	}
	session.Values[sessionTenantIDKey] = tenantID.String()
	return session.Save(r, w)
}

// ClearTenant expires the session cookie and its stored values.
func ClearTenant(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("clear tenant: %w", err)
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
