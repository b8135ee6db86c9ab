package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2026-02-28")
	assert.True(t, ok)
	_, ok = IsValidDate("2026-02-30")
	assert.False(t, ok)
	_, ok = IsValidDate("28/02/2026")
	assert.False(t, ok)
}

func TestIsValidDateTime(t *testing.T) {
	_, ok := IsValidDateTime("2026-01-15T10:30:00Z")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2026-01-15T10:30:00.123+07:00")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2026-01-15 10:30")
	assert.False(t, ok)
}

type contact struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type sample struct {
	Name     string   `json:"name" validate:"required,max=5"`
	Priority string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Days     int      `json:"days" validate:"gte=0"`
	Contact  *contact `json:"contact_info,omitempty"`
	Ignored  string   `json:"-"`
}

func TestStruct(t *testing.T) {
	errs := Struct(sample{Name: "Budi", Priority: "low", Contact: &contact{Email: "budi@example.com"}})
	assert.Empty(t, errs)

	errs = Struct(sample{Name: "", Priority: "urgent", Days: -1, Contact: &contact{Email: "nope"}})
	require.Len(t, errs, 4)

	m := errs.ToMap()
	assert.Equal(t, "name is required", m["name"])
	assert.Equal(t, "priority must be one of: low, medium, high", m["priority"])
	assert.Equal(t, "days must be greater than or equal to 0", m["days"])
	assert.Equal(t, "email must be a valid email address", m["contact_info.email"])
}

func TestValidationErrors_AddErr(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("start_date", "start_date is required")
	errs.Add("reason", "reason is required")

	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, "start_date: start_date is required; reason: reason is required", err.Error())
}
