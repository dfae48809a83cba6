package model

import (
	"encoding/json"
	"strings"
)

type Contact struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

// UnmarshalJSON accepts both "avatar" and "avatarUrl" for the avatar reference.
func (c *Contact) UnmarshalJSON(b []byte) error {
	var w struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Avatar    string `json:"avatar"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	c.ID = w.ID
	c.Name = w.Name
	c.Email = w.Email
	c.AvatarURL = w.Avatar
	if strings.TrimSpace(c.AvatarURL) == "" {
		c.AvatarURL = w.AvatarURL
	}
	return nil
}

// Initials is the two-letter fallback shown where an avatar image can't be.
func (c Contact) Initials() string {
	fields := strings.Fields(c.Name)
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		r := []rune(fields[0])
		if len(r) >= 2 {
			return strings.ToUpper(string(r[:2]))
		}
		return strings.ToUpper(string(r))
	default:
		first := []rune(fields[0])
		last := []rune(fields[len(fields)-1])
		return strings.ToUpper(string(first[:1]) + string(last[:1]))
	}
}

func ContactIDs(cs []Contact) []int {
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
