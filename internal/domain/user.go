package domain

// UserRole представляет роль пользователя в системе
type UserRole string

const (
	RoleAdmin  UserRole = "admin"  // Yönetici
	RoleEditor UserRole = "editor" // Editör
	RoleViewer UserRole = "viewer" // Kullanıcı, только чтение
)

// Level возвращает уровень роли в иерархии admin > editor > viewer
func (r UserRole) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// IsValid проверяет, что роль известна системе
func (r UserRole) IsValid() bool {
	return r.Level() > 0
}

// Allows проверяет, покрывает ли роль требуемую
func (r UserRole) Allows(required UserRole) bool {
	return r.IsValid() && r.Level() >= required.Level()
}

// User - оператор системы из конфигурируемого списка учетных записей
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"` // Никогда не возвращаем в JSON
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
}

// Validate проверяет корректность данных пользователя
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrInvalidCredentials
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// CanEdit проверяет, может ли пользователь изменять записи
func (u *User) CanEdit() bool {
	return u.Role.Allows(RoleEditor)
}
