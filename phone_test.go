package agriconnect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agriconnect/agriconnect"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local format", "0712345678", "+254712345678"},
		{"country code no plus", "254712345678", "+254712345678"},
		{"bare subscriber number", "712345678", "+254712345678"},
		{"already normalized", "+254712345678", "+254712345678"},
		{"spaces and dashes", "0712-345 678", "+254712345678"},
		{"parenthesis format", "(0712) 345678", "+254712345678"},
		{"too short passes through", "12345", "12345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, agriconnect.NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhoneIsIdempotent(t *testing.T) {
	inputs := []string{"0712345678", "254712345678", "712345678", "+254712345678"}

	for _, in := range inputs {
		once := agriconnect.NormalizePhone(in)
		assert.Equal(t, once, agriconnect.NormalizePhone(once), "normalizing %q twice should be stable", in)
	}
}

func TestPlausibleMobile(t *testing.T) {
	assert.True(t, agriconnect.PlausibleMobile("+254712345678"))
	assert.False(t, agriconnect.PlausibleMobile(""))
	assert.False(t, agriconnect.PlausibleMobile("12345"))
}

func TestCanonicalSeedDefaults(t *testing.T) {
	seed := agriconnect.CanonicalSeed("jane@example.com", agriconnect.Signup{})

	assert.Equal(t, "jane@example.com", seed.Email)
	assert.Equal(t, agriconnect.DefaultFullName, seed.FullName)
	assert.Equal(t, agriconnect.RoleFarmer, seed.Role)
	assert.Equal(t, agriconnect.DefaultCounty, seed.County)
	assert.Equal(t, agriconnect.FallbackPhoneNumber, seed.PhoneNumber)
	assert.Equal(t, "", seed.MpesaNumber)
}

func TestCanonicalSeedNameComposition(t *testing.T) {
	seed := agriconnect.CanonicalSeed("jane@example.com", agriconnect.Signup{
		FirstName: "Jane",
		LastName:  "Wanjiku",
	})
	assert.Equal(t, "Jane Wanjiku", seed.FullName)

	seed = agriconnect.CanonicalSeed("jane@example.com", agriconnect.Signup{
		FullName:  "Jane W.",
		FirstName: "Ignored",
		LastName:  "Too",
	})
	assert.Equal(t, "Jane W.", seed.FullName)

	seed = agriconnect.CanonicalSeed("jane@example.com", agriconnect.Signup{
		FirstName: "Jane",
	})
	assert.Equal(t, "Jane", seed.FullName)
}

func TestCanonicalSeedPhoneDerivation(t *testing.T) {
	seed := agriconnect.CanonicalSeed("jane@example.com", agriconnect.Signup{
		MpesaNumber: "0712 345 678",
	})

	assert.Equal(t, "+254712345678", seed.MpesaNumber)
	assert.Equal(t, "+254712345678", seed.PhoneNumber)
}

func TestCanonicalSeedKeepsExplicitValues(t *testing.T) {
	seed := agriconnect.CanonicalSeed("peter@example.com", agriconnect.Signup{
		FullName:     "Peter Kimani",
		Role:         agriconnect.RoleBuyer,
		County:       "Kajiado",
		SubCounty:    "Kajiado East",
		BusinessName: "Kimani Traders",
		BusinessType: "Wholesaler",
	})

	assert.Equal(t, agriconnect.RoleBuyer, seed.Role)
	assert.Equal(t, "Kajiado", seed.County)
	assert.Equal(t, "Kajiado East", seed.SubCounty)
	assert.Equal(t, "Kimani Traders", seed.BusinessName)
	assert.Equal(t, "Wholesaler", seed.BusinessType)
}
