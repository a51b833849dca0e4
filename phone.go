package agriconnect

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	// DefaultCounty is applied when a signup does not name one
	DefaultCounty = "Nairobi"
	// DefaultFullName is the literal fallback when no name survives trimming
	DefaultFullName = "User"
	// FallbackPhoneNumber keeps the seeded phone_number non-empty; the value
	// mirrors what the marketplace backend expects for unreachable contacts.
	FallbackPhoneNumber = "+254700000000"
)

// NormalizePhone rewrites a free-form phone string into Kenyan E.164-like
// form. Best effort only: inputs that do not match any rule pass through
// unchanged, possibly as an invalid or partial number.
//
//	"0712345678"   -> "+254712345678"
//	"254712345678" -> "+254712345678"
//	"712345678"    -> "+254712345678"
func NormalizePhone(raw string) string {
	digits := stripNonDigits(raw)

	switch {
	case strings.HasPrefix(digits, "0"):
		return "+254" + digits[1:]
	case strings.HasPrefix(digits, "254"):
		return "+" + digits
	case len(digits) >= 9:
		return "+254" + digits
	}

	return digits
}

// PlausibleMobile reports whether a normalized number parses as a valid
// Kenyan number. Used for logging only; normalization never rejects input.
func PlausibleMobile(msisdn string) bool {
	if msisdn == "" {
		return false
	}

	num, err := phonenumbers.Parse(msisdn, "KE")
	if err != nil {
		return false
	}

	return phonenumbers.IsValidNumber(num)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Signup is the free-form metadata collected by the registration form
type Signup struct {
	FullName     string `json:"full_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         Role   `json:"user_role"`
	County       string `json:"county"`
	SubCounty    string `json:"sub_county"`
	FarmerType   string `json:"farmer_type"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	MpesaNumber  string `json:"mpesa_number"`
}

// ProfileSeed is the canonical profile-seed record handed to the provider's
// account creation call. Keys match the profiles row the backend materializes.
type ProfileSeed struct {
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         Role   `json:"user_role"`
	County       string `json:"county"`
	SubCounty    string `json:"sub_county"`
	FarmerType   string `json:"farmer_type"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	PhoneNumber  string `json:"phone_number"`
	MpesaNumber  string `json:"mpesa_number"`
}

// CanonicalSeed normalizes signup metadata into the seed record. The rules
// are fixed: name fallbacks, farmer default role, Nairobi default county and
// M-Pesa derived phone fields.
func CanonicalSeed(email string, meta Signup) ProfileSeed {
	mpesa := ""
	if meta.MpesaNumber != "" {
		mpesa = NormalizePhone(meta.MpesaNumber)
	}

	phone := mpesa
	if phone == "" {
		phone = FallbackPhoneNumber
	}

	fullName := meta.FullName
	if fullName == "" {
		fullName = strings.TrimSpace(meta.FirstName + " " + meta.LastName)
	}
	if fullName == "" {
		fullName = DefaultFullName
	}

	role := meta.Role
	if role == "" {
		role = RoleFarmer
	}

	county := meta.County
	if county == "" {
		county = DefaultCounty
	}

	return ProfileSeed{
		Email:        email,
		FullName:     fullName,
		Role:         role,
		County:       county,
		SubCounty:    meta.SubCounty,
		FarmerType:   meta.FarmerType,
		BusinessName: meta.BusinessName,
		BusinessType: meta.BusinessType,
		PhoneNumber:  phone,
		MpesaNumber:  mpesa,
	}
}
