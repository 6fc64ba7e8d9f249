package guard

import (
	"net/http"
	"net/url"
)

// CookieStorage exposes the request's cookies as a Storage. Writes and
// deletions are sent back on the response.
type CookieStorage struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool
	values map[string]string
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{r: r, w: w, secure: secure, values: make(map[string]string)}
}

func (c *CookieStorage) Get(key string) (string, bool) {
	if v, ok := c.values[key]; ok {
		return v, v != ""
	}
	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *CookieStorage) Set(key, value string) {
	c.values[key] = value
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieStorage) Delete(key string) {
	if _, err := c.r.Cookie(key); err != nil {
		if _, pending := c.values[key]; !pending {
			return
		}
	}
	c.values[key] = ""
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
