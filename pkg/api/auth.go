package api

// LoginRequest представляет запрос на получение пары токенов по логину/паролю
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair представляет пару токенов, выдаваемую POST /auth/token/
type TokenPair struct {
	Access  string `json:"access"`  // короткоживущий access token
	Refresh string `json:"refresh"` // refresh token, сервер его не ротирует
}

// RefreshRequest представляет запрос на обновление access token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse представляет ответ POST /auth/token/refresh/
type RefreshResponse struct {
	Access string `json:"access"`
}

// VerifyRequest представляет запрос на проверку токена
type VerifyRequest struct {
	Token string `json:"token"`
}

// ErrorResponse представляет ответ с ошибкой.
// Backend отдает либо {"detail": "..."}, либо ошибки по полям
// ({"non_field_errors": ["..."]}, {"username": ["..."]}).
type ErrorResponse struct {
	Detail         string   `json:"detail,omitempty"`
	Code           string   `json:"code,omitempty"`
	NonFieldErrors []string `json:"non_field_errors,omitempty"`
}
