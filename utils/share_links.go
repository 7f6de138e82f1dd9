package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ReferralCodeLength is how many characters of the opaque user id form the
// referral code. The code is display-only; the id itself carries whatever
// uniqueness the code has.
const ReferralCodeLength = 8

// DeriveReferralCode returns the case-normalized fixed-length prefix of the
// user's opaque public id.
func DeriveReferralCode(publicID string) string {
	code := publicID
	if len(code) > ReferralCodeLength {
		code = code[:ReferralCodeLength]
	}
	return strings.ToUpper(code)
}

var referralCodePattern = regexp.MustCompile(fmt.Sprintf("^[0-9a-fA-F]{%d}$", ReferralCodeLength))

// IsReferralCode reports whether code could have been derived from an opaque
// user id: exact code length, hex characters only. Codes are matched into
// queries, so SQL wildcard characters must never pass.
func IsReferralCode(code string) bool {
	return referralCodePattern.MatchString(code)
}

// SignupLink builds the referral signup URL shown and shared by the user.
func SignupLink(baseURL, referralCode string) string {
	return fmt.Sprintf("%s/signup?ref=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(referralCode))
}

// ShareURL builds the outbound share endpoint for a social platform. The
// returned URL is opened by the client as a fire-and-forget navigation; an
// empty string means the platform is not supported.
func ShareURL(platform, link string) string {
	switch platform {
	case "facebook":
		return "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(link)
	case "twitter":
		return "https://twitter.com/intent/tweet?url=" + url.QueryEscape(link) + "&text=" + url.QueryEscape("Check out Flowva!")
	case "linkedin":
		return "https://www.linkedin.com/sharing/share-offsite/?url=" + url.QueryEscape(link)
	case "whatsapp":
		return "https://wa.me/?text=" + url.QueryEscape("Check out Flowva! "+link)
	default:
		return ""
	}
}
