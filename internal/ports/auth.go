package ports

import "context"

// Authenticator - проверка логина/пароля.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// TokenIssuer - выпуск и проверка токенов доступа.
type TokenIssuer interface {
	Issue(username string) (string, error)
	Parse(token string) (username string, err error)
}
