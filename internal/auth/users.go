package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

var _ ports.Authenticator = (*UserStore)(nil)

// UserStore - пользователи из конфигурации, пароли хранятся только в виде bcrypt-хэшей.
type UserStore struct {
	hashes map[string][]byte
	// dummy - сравнение для неизвестного логина (одинаковое время ответа)
	dummy []byte
}

// ParseUsers - разбор строки вида "john:1234,jane:secret".
func ParseUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pass, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("invalid user entry %q: want name:password", pair)
		}
		if _, dup := users[name]; dup {
			return nil, fmt.Errorf("duplicate user %q", name)
		}
		users[name] = pass
	}
	return users, nil
}

// NewUserStore - хэширует пароли с заданной стоимостью (cost <= 0 → bcrypt.DefaultCost).
func NewUserStore(users map[string]string, cost int) (*UserStore, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}

	s := &UserStore{hashes: make(map[string][]byte, len(users))}
	for name, pass := range users {
		h, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", name, err)
		}
		s.hashes[name] = h
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	s.dummy = dummy
	return s, nil
}

func (s *UserStore) Authenticate(_ context.Context, username, password string) error {
	hash, ok := s.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
	}
	return nil
}
