package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/hash"
)

// ParseUsers разбирает строку "username:password:role:Имя;..." и хеширует пароли.
// Имя может содержать двоеточия; пустые элементы пропускаются.
func ParseUsers(raw string, cost int) ([]*domain.User, error) {
	var users []*domain.User
	seen := make(map[string]bool)

	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 4)
		if len(parts) < 3 {
			return nil, fmt.Errorf("auth user %q: expected username:password:role[:name]", item)
		}

		user := &domain.User{
			Username: strings.TrimSpace(parts[0]),
			Role:     domain.UserRole(strings.TrimSpace(parts[2])),
		}
		if len(parts) == 4 {
			user.Name = strings.TrimSpace(parts[3])
		}
		if user.Name == "" {
			user.Name = user.Username
		}
		if err := user.Validate(); err != nil {
			return nil, fmt.Errorf("auth user %q: %w", user.Username, err)
		}
		if seen[user.Username] {
			return nil, fmt.Errorf("auth user %q: duplicate username", user.Username)
		}
		if parts[1] == "" {
			return nil, fmt.Errorf("auth user %q: empty password", user.Username)
		}

		passwordHash, err := hash.HashPasswordCost(parts[1], cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash

		seen[user.Username] = true
		users = append(users, user)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("no auth users configured")
	}
	return users, nil
}

// Directory - неизменяемый список пользователей в памяти
type Directory struct {
	users []*domain.User
	index map[string]*domain.User
}

// NewDirectory создает справочник пользователей
func NewDirectory(users []*domain.User) *Directory {
	d := &Directory{users: users, index: make(map[string]*domain.User, len(users))}
	for _, u := range users {
		d.index[strings.ToLower(u.Username)] = u
	}
	return d
}

// GetByUsername ищет пользователя без учета регистра логина
func (d *Directory) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := d.index[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// List возвращает копии всех пользователей
func (d *Directory) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(d.users))
	for _, u := range d.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}
