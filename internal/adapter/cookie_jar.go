package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/models"
)

const jarPersistTimeout = 5 * time.Second

// persistedCookie is the stored form of a cookie set by the gateway.
type persistedCookie struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitempty"`
	Secure   bool          `json:"secure,omitempty"`
	HttpOnly bool          `json:"httpOnly,omitempty"`
	SameSite http.SameSite `json:"sameSite,omitempty"`
}

// persistentJar is an http.CookieJar that mirrors the cookies the gateway
// sets into the key-value store under [models.TransportStorageKey].
//
// Only one origin is ever talked to, so cookies are tracked by name.
type persistentJar struct {
	*cookiejar.Jar

	origin *url.URL
	kv     store.KVRepository
	now    func() time.Time
	logger *logger.Logger

	mu      sync.Mutex
	cookies map[string]persistedCookie
}

func newPersistentJar(ctx context.Context, origin *url.URL, kv store.KVRepository, log *logger.Logger) (*persistentJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	j := &persistentJar{
		Jar:     inner,
		origin:  origin,
		kv:      kv,
		now:     time.Now,
		logger:  log,
		cookies: make(map[string]persistedCookie),
	}
	j.load(ctx)
	return j, nil
}

func (j *persistentJar) load(ctx context.Context) {
	raw, err := j.kv.Get(ctx, models.TransportStorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			j.logger.Err(err).Str("func", "*persistentJar.load").Msg("error loading cookie jar")
		}
		return
	}

	var stored []persistedCookie
	if err = json.Unmarshal(raw, &stored); err != nil {
		j.logger.Warn().Err(err).Str("func", "*persistentJar.load").Msg("discarding malformed cookie jar")
		return
	}

	now := j.now()
	restored := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		j.cookies[c.Name] = c
		restored = append(restored, c.httpCookie())
	}
	j.Jar.SetCookies(j.origin, restored)
}

// SetCookies implements http.CookieJar.
func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)

	j.mu.Lock()
	now := j.now()
	for _, c := range cookies {
		switch {
		case c.MaxAge < 0, !c.Expires.IsZero() && !c.Expires.After(now):
			delete(j.cookies, c.Name)
		default:
			j.cookies[c.Name] = fromHTTPCookie(c, now)
		}
	}
	snapshot := make([]persistedCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		snapshot = append(snapshot, c)
	}
	j.mu.Unlock()

	j.persist(snapshot)
}

// Clear forgets every cookie locally and in storage.
func (j *persistentJar) Clear(ctx context.Context) error {
	j.mu.Lock()
	expired := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		expired = append(expired, &http.Cookie{Name: c.Name, Path: c.Path, Domain: c.Domain, MaxAge: -1})
	}
	clear(j.cookies)
	j.mu.Unlock()

	j.Jar.SetCookies(j.origin, expired)
	return j.kv.Delete(ctx, models.TransportStorageKey)
}

func (j *persistentJar) persist(cookies []persistedCookie) {
	ctx, cancel := context.WithTimeout(context.Background(), jarPersistTimeout)
	defer cancel()

	if len(cookies) == 0 {
		if err := j.kv.Delete(ctx, models.TransportStorageKey); err != nil {
			j.logger.Err(err).Str("func", "*persistentJar.persist").Msg("error clearing cookie jar")
		}
		return
	}

	raw, err := json.Marshal(cookies)
	if err != nil {
		j.logger.Err(err).Str("func", "*persistentJar.persist").Msg("error encoding cookie jar")
		return
	}
	if err = j.kv.Put(ctx, models.TransportStorageKey, raw); err != nil {
		j.logger.Err(err).Str("func", "*persistentJar.persist").Msg("error saving cookie jar")
	}
}

func fromHTTPCookie(c *http.Cookie, now time.Time) persistedCookie {
	expires := c.Expires
	if c.MaxAge > 0 {
		expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	return persistedCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}

func (c persistedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}
