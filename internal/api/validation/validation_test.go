package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"ab", "Alice", "a1", "user-name", "user_name", "user.name", "A" + strings.Repeat("b", 20)}
	for _, u := range valid {
		assert.Nil(t, ValidateUsername(u), "expected %q to be valid", u)
	}

	invalid := []string{
		"",
		"a",                           // too short
		"1user",                       // must start with a letter
		"-user",                       // must start with a letter
		"user name",                   // space
		"user@name",                   // forbidden symbol
		"A" + strings.Repeat("b", 21), // too long
	}
	for _, u := range invalid {
		err := ValidateUsername(u)
		if assert.NotNil(t, err, "expected %q to be rejected", u) {
			assert.Equal(t, "username", err.Field)
		}
	}
}

func TestValidateUsernameReserved(t *testing.T) {
	err := ValidateUsername("me")
	if assert.NotNil(t, err) {
		assert.Equal(t, "username", err.Field)
		assert.Contains(t, err.Message, "reserved")
	}

	// "Me" and "mee" match the pattern and are not reserved
	assert.Nil(t, ValidateUsername("Me"))
	assert.Nil(t, ValidateUsername("mee"))
}

func TestValidateYear(t *testing.T) {
	current := time.Now().Year()

	assert.NotNil(t, ValidateYear(1899))
	assert.Nil(t, ValidateYear(1900))
	assert.Nil(t, ValidateYear(current))
	assert.NotNil(t, ValidateYear(current+1))
}

func TestValidateScore(t *testing.T) {
	assert.NotNil(t, ValidateScore(0))
	assert.Nil(t, ValidateScore(1))
	assert.Nil(t, ValidateScore(10))
	assert.NotNil(t, ValidateScore(11))
	assert.NotNil(t, ValidateScore(-3))
}

func TestValidateSlug(t *testing.T) {
	assert.Nil(t, ValidateSlug("books"))
	assert.Nil(t, ValidateSlug("sci-fi_2"))
	assert.NotNil(t, ValidateSlug(""))
	assert.NotNil(t, ValidateSlug("bad slug"))
	assert.NotNil(t, ValidateSlug("bad/slug"))
	assert.NotNil(t, ValidateSlug(strings.Repeat("a", 51)))
}

func TestValidateRole(t *testing.T) {
	assert.Nil(t, ValidateRole("user"))
	assert.Nil(t, ValidateRole("moderator"))
	assert.Nil(t, ValidateRole("admin"))
	assert.NotNil(t, ValidateRole("superuser"))
	assert.NotNil(t, ValidateRole(""))
}
