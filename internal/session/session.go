// Package session выдаёт браузеру подписанный идентификатор клиента.
// Идентификатор не аутентифицирует пользователя, он только отделяет
// локальное хранилище одного браузера от другого.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	CookieName   = "toolbox_client"
	cookieMaxAge = 365 * 24 * 60 * 60 // 1 год
)

type ctxKey struct{}

type Session struct {
	SecretKey string
}

func New(secret string) *Session {
	return &Session{SecretKey: secret}
}

// Создать подпись
func (s *Session) sign(clientID string) string {
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(clientID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Создать куку вида: toolbox_client=clientID:signature
func (s *Session) issueCookie(w http.ResponseWriter) string {
	clientID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.SignCookieValue(clientID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cookieMaxAge,
	})
	return clientID
}

// ClientID проверяет куку и возвращает идентификатор клиента.
func (s *Session) ClientID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	parts := strings.SplitN(cookie.Value, ":", 2)
	if len(parts) != 2 || !hmac.Equal([]byte(s.sign(parts[0])), []byte(parts[1])) {
		return "", false
	}

	return parts[0], true
}

// GetOrSetClientID возвращает идентификатор из куки, при отсутствии или
// неверной подписи выдаёт новый.
func (s *Session) GetOrSetClientID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := s.ClientID(r); ok {
		return id
	}
	return s.issueCookie(w)
}

// SignCookieValue возвращает значение куки для идентификатора.
func (s *Session) SignCookieValue(clientID string) string {
	return fmt.Sprintf("%s:%s", clientID, s.sign(clientID))
}

// Middleware кладёт идентификатор клиента в контекст запроса.
func (s *Session) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.GetOrSetClientID(w, r)
		next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), id)))
	})
}

// WithClientID возвращает контекст с идентификатором клиента.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext достаёт идентификатор клиента из контекста.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
