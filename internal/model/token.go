package model

// DecodedToken результат декодирования JWT.
// Подпись не проверяется, Signature хранит третий сегмент как есть.
type DecodedToken struct {
	Header     map[string]any `json:"header"`
	Payload    map[string]any `json:"payload"`
	Signature  string         `json:"signature"`
	Valid      bool           `json:"valid"`
	Error      string         `json:"error,omitempty"`
	Expiration *Expiration    `json:"expiration,omitempty"`
	Notice     string         `json:"notice,omitempty"`
}

// Expiration состояние claim exp относительно текущего времени.
type Expiration struct {
	Expired bool   `json:"expired"`
	Minutes int64  `json:"minutes"`
	Text    string `json:"text"`
}

// DecodeRequest тело запроса на декодирование.
type DecodeRequest struct {
	Token string `json:"token"`
}
