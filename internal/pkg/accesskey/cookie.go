package accesskey

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// cookieMaxAge keeps grant and closed markers for a year, matching how
// long a visitor plausibly holds on to a card.
const cookieMaxAge = int(365 * 24 * time.Hour / time.Second)

// CookieStore backs a Gate with per-client cookies on the current
// request. Writes become Set-Cookie headers on the response; reads see
// the request's cookie jar, so a value written earlier in the same
// request is also visible.
type CookieStore struct {
	c       *gin.Context
	written map[string]*string // nil value marks a delete
}

func NewCookieStore(c *gin.Context) *CookieStore {
	return &CookieStore{c: c, written: make(map[string]*string)}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	v, err := s.c.Cookie(key)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *CookieStore) Set(key, value string) {
	s.written[key] = &value
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, cookieMaxAge, "/", "", false, true)
}

func (s *CookieStore) Delete(key string) {
	s.written[key] = nil
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, "", -1, "/", "", false, true)
}
