package prompt

import (
	"errors"
	"strconv"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

const MaxDays = 365

// ParseUser accepts a user mention (<@id> or <@!id>) or a bare ID.
func ParseUser(content string) (any, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	s = strings.TrimSuffix(s, ">")
	id, err := snowflake.Parse(s)
	if err != nil || id == 0 {
		return nil, errors.New("mention a user or paste their ID")
	}
	return id, nil
}

// ParseDays accepts a whole number of days between 1 and MaxDays.
func ParseDays(content string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil || n < 1 || n > MaxDays {
		return nil, errors.New("enter a number of days between 1 and " + strconv.Itoa(MaxDays))
	}
	return n, nil
}

// ParseText accepts any non-empty reply.
func ParseText(content string) (any, error) {
	s := strings.TrimSpace(content)
	if s == "" {
		return nil, errors.New("reply cannot be empty")
	}
	return s, nil
}
