package hash

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost - стоимость хеширования по умолчанию
	DefaultCost = 12
)

// ErrPasswordTooLong - bcrypt учитывает только первые 72 байта
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword хеширует пароль с использованием bcrypt
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultCost)
}

// HashPasswordCost хеширует пароль с заданной стоимостью.
// Стоимость вне допустимого диапазона bcrypt заменяется на DefaultCost.
func HashPasswordCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CheckPassword сравнивает хешированный пароль с plain-text паролем
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// CheckDummy выполняет сравнение с заранее вычисленным хешем, чтобы вход
// с неизвестным логином занимал столько же времени, сколько с известным.
func CheckDummy(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("plaka-takip-dummy"), DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
