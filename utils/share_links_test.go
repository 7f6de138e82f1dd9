package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveReferralCode(t *testing.T) {
	code := DeriveReferralCode("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
	assert.Equal(t, "A1B2C3D4", code)
	assert.Len(t, code, ReferralCodeLength)

	// Same identity always derives the same code.
	assert.Equal(t, code, DeriveReferralCode("a1b2c3d4-e5f6-7890-abcd-ef1234567890"))

	// Short ids pass through case-normalized rather than panicking.
	assert.Equal(t, "AB", DeriveReferralCode("ab"))
}

func TestIsReferralCode(t *testing.T) {
	assert.True(t, IsReferralCode("A1B2C3D4"))
	assert.True(t, IsReferralCode("a1b2c3d4"))
	assert.True(t, IsReferralCode(DeriveReferralCode("a1b2c3d4-e5f6-7890-abcd-ef1234567890")))

	// SQL wildcards are the right length but must never pass.
	assert.False(t, IsReferralCode("________"))
	assert.False(t, IsReferralCode("%%%%%%%%"))
	assert.False(t, IsReferralCode("a1b2c3d%"))
	assert.False(t, IsReferralCode("a1b2c3d_"))

	assert.False(t, IsReferralCode("A1B2C3DZ"), "uuid prefixes are hex only")
	assert.False(t, IsReferralCode("A1B2C3D"))
	assert.False(t, IsReferralCode("A1B2C3D45"))
	assert.False(t, IsReferralCode(""))
}

func TestSignupLink(t *testing.T) {
	link := SignupLink("https://app.flowvahub.com", "A1B2C3D4")
	assert.Equal(t, "https://app.flowvahub.com/signup?ref=A1B2C3D4", link)

	// Trailing slash on the base must not double up.
	assert.Equal(t, link, SignupLink("https://app.flowvahub.com/", "A1B2C3D4"))
}

func TestShareURL(t *testing.T) {
	link := "https://app.flowvahub.com/signup?ref=A1B2C3D4"

	assert.Equal(t,
		"https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fapp.flowvahub.com%2Fsignup%3Fref%3DA1B2C3D4",
		ShareURL("facebook", link))
	assert.Contains(t, ShareURL("twitter", link), "twitter.com/intent/tweet")
	assert.Contains(t, ShareURL("linkedin", link), "share-offsite")
	assert.Contains(t, ShareURL("whatsapp", link), "wa.me")
	assert.Empty(t, ShareURL("myspace", link))
}
