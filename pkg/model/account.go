package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

type Account struct {
	ID        string `json:"_id,omitempty"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (a *Account) UnmarshalJSON(data []byte) error {
	type alias Account
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Account(raw.alias)
	if a.ID == "" {
		a.ID = raw.AltID
	}
	return nil
}

func (a Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// AccountRef is a reference to an account that the API sends either as a
// bare id or as the populated account.
type AccountRef struct {
	ID      string
	Account *Account
}

func RefAccount(a Account) AccountRef {
	return AccountRef{ID: a.ID, Account: &a}
}

func (r AccountRef) MarshalJSON() ([]byte, error) {
	if r.Account != nil {
		return json.Marshal(r.Account)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *AccountRef) UnmarshalJSON(data []byte) error {
	*r = AccountRef{}
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "null":
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &r.ID)
	}
	var a Account
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	r.ID = a.ID
	r.Account = &a
	return nil
}

type AuthPayload struct {
	AccessToken string  `json:"access_token"`
	User        Account `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

type CreateAccountRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

type AccountUpdate struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func Ptr[T any](v T) *T {
	return &v
}
