// Package jwtdecoder раскрывает содержимое JWT без проверки подписи.
package jwtdecoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// SignatureNotice показывается вместе с каждым результатом.
const SignatureNotice = "The signature is not verified. Never trust decoded claims without proper verification."

// ErrMalformedStructure токен не состоит ровно из трёх сегментов.
var ErrMalformedStructure = errors.New("Invalid JWT format. Expected 3 parts separated by dots.")

// SegmentError ошибка base64url или JSON в заголовке либо payload.
type SegmentError struct {
	Segment string
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("invalid %s segment: %v", e.Segment, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// Token разобранный токен.
type Token struct {
	Header    map[string]any
	Payload   jwt.MapClaims
	Signature string
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Parse делит токен на сегменты и декодирует первые два.
// Подпись остаётся как есть и никогда не проверяется.
func Parse(raw string) (*Token, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedStructure
	}

	header, err := decodeSegment("header", parts[0])
	if err != nil {
		return nil, err
	}
	payload, err := decodeSegment("payload", parts[1])
	if err != nil {
		return nil, err
	}

	return &Token{
		Header:    header,
		Payload:   jwt.MapClaims(payload),
		Signature: parts[2],
	}, nil
}

// decodeSegment принимает и base64url, и обычный алфавит base64,
// паддинг необязателен.
func decodeSegment(name, seg string) (map[string]any, error) {
	seg = strings.NewReplacer("+", "-", "/", "_").Replace(seg)
	data, err := parser.DecodeSegment(seg)
	if err != nil {
		return nil, &SegmentError{Segment: name, Err: err}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &SegmentError{Segment: name, Err: err}
	}
	if out == nil {
		return nil, &SegmentError{Segment: name, Err: errors.New("segment is not a JSON object")}
	}
	return out, nil
}

// Decode превращает строку токена в DecodedToken. Ошибки не возвращаются,
// а попадают в поле Error, как их показывает инструмент.
func Decode(raw string, now time.Time) model.DecodedToken {
	tok, err := Parse(strings.TrimSpace(raw))
	if err != nil {
		return model.DecodedToken{
			Header:  map[string]any{},
			Payload: map[string]any{},
			Valid:   false,
			Error:   err.Error(),
		}
	}

	return model.DecodedToken{
		Header:     tok.Header,
		Payload:    tok.Payload,
		Signature:  tok.Signature,
		Valid:      true,
		Expiration: ExpirationStatus(tok.Payload, now),
		Notice:     SignatureNotice,
	}
}

// ExpirationStatus сравнивает claim exp с текущим временем.
// Если exp нет или он не числовой, возвращает nil.
func ExpirationStatus(claims jwt.MapClaims, now time.Time) *model.Expiration {
	exp, ok := claims["exp"]
	if !ok {
		return nil
	}
	var seconds float64
	switch v := exp.(type) {
	case float64:
		seconds = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		seconds = f
	default:
		return nil
	}
	if seconds == 0 {
		return nil
	}

	nowSec := float64(now.Unix())
	if seconds > nowSec {
		minutes := int64(math.Floor((seconds - nowSec) / 60))
		return &model.Expiration{
			Expired: false,
			Minutes: minutes,
			Text:    fmt.Sprintf("Valid for %d minutes", minutes),
		}
	}
	minutes := int64(math.Floor((nowSec - seconds) / 60))
	return &model.Expiration{
		Expired: true,
		Minutes: minutes,
		Text:    fmt.Sprintf("Expired %d minutes ago", minutes),
	}
}
