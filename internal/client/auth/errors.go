package auth

import "errors"

var (
	// ErrRefreshDenied сервер отклонил обновление токена; сессия завершена
	ErrRefreshDenied = errors.New("token refresh denied")
	// ErrNoRefreshToken в хранилище нет refresh token
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrNoAccessToken в хранилище нет access token
	ErrNoAccessToken = errors.New("no access token stored")

	// errSessionEnded токены уже очищены другим обновлением
	errSessionEnded = errors.New("session already ended")
)

// SessionExpiredError возвращается вызывающему, когда 401 не удалось восстановить.
// Текст совпадает с исходной ошибкой, errors.As находит исходный *api.HTTPError,
// errors.Is(err, ErrRefreshDenied) истинно.
type SessionExpiredError struct {
	// Err исходная ошибка 401
	Err error
	// Cause ошибка запроса обновления токена
	Cause error
}

func (e *SessionExpiredError) Error() string {
	return e.Err.Error()
}

func (e *SessionExpiredError) Unwrap() []error {
	return []error{e.Err, ErrRefreshDenied}
}
