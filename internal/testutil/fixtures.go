// Package testutil holds cacheable fixtures shared by package tests.
package testutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// User is a cacheable fixture without a default TTL.
type User struct {
	ID    string
	Name  string
	Email string
	Age   int
}

func (u *User) ModelName() string           { return "user" }
func (u *User) ExpiresAfter() time.Duration { return 0 }

func (u *User) ToFields() map[string]string {
	return map[string]string{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"age":   strconv.Itoa(u.Age),
	}
}

func (u *User) FromFields(fields map[string]string) error {
	age, err := strconv.Atoi(fields["age"])
	if err != nil {
		return fmt.Errorf("age: %w", err)
	}
	u.ID = fields["id"]
	u.Name = fields["name"]
	u.Email = fields["email"]
	u.Age = age
	return nil
}

// Session is a cacheable fixture that expires one second after insertion.
type Session struct {
	Token  string
	UserID string
}

func (s *Session) ModelName() string           { return "session" }
func (s *Session) ExpiresAfter() time.Duration { return time.Second }

func (s *Session) ToFields() map[string]string {
	return map[string]string{"token": s.Token, "user_id": s.UserID}
}

func (s *Session) FromFields(fields map[string]string) error {
	s.Token = fields["token"]
	s.UserID = fields["user_id"]
	return nil
}

// Account shares User's model name, so the two collide on the same keys.
type Account struct {
	ID      string
	Balance int64
}

func (a *Account) ModelName() string           { return "user" }
func (a *Account) ExpiresAfter() time.Duration { return 0 }

func (a *Account) ToFields() map[string]string {
	return map[string]string{"id": a.ID, "balance": strconv.FormatInt(a.Balance, 10)}
}

func (a *Account) FromFields(fields map[string]string) error {
	balance, err := strconv.ParseInt(fields["balance"], 10, 64)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	a.ID = fields["id"]
	a.Balance = balance
	return nil
}

// NewUser returns a populated User.
func NewUser(id string) *User {
	return &User{
		ID:    id,
		Name:  "User " + id,
		Email: id + "@example.com",
		Age:   30,
	}
}

// ErrBackendDown stands in for a failing backend call.
var ErrBackendDown = errors.New("backend unavailable")
