package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

type User struct {
	Email        string    `json:"email"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Company      *string   `json:"company"`
	Phone        *string   `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// NewUserID returns "user_<unix-ms>_<random base36>". The timestamp keeps
// IDs roughly sortable; the suffix keeps same-millisecond signups apart.
func NewUserID() string {
	return fmt.Sprintf("user_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

func randomSuffix(n int) string {
	s := strconv.FormatUint(rand.Uint64(), 36)
	for len(s) < n {
		s += strconv.FormatUint(rand.Uint64(), 36)
	}
	return s[:n]
}
