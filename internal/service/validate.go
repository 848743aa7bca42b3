package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 30 {
		return apperr.E(apperr.KindValidation, "Username must be between 3 and 30 characters.")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.E(apperr.KindValidation, "A valid email is required.")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 4 {
		return apperr.E(apperr.KindValidation, "Password must be at least 4 characters.")
	}
	return nil
}

func validateSocial(social domain.SocialLinks) error {
	links := map[string]string{
		"linkedin": social.Linkedin,
		"github":   social.Github,
		"leetcode": social.Leetcode,
		"website":  social.Website,
	}
	for name, link := range links {
		if link == "" {
			continue
		}
		parsed, err := url.Parse(link)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return apperr.E(apperr.KindValidation, fmt.Sprintf("Social link %q must be a valid http(s) URL.", name))
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
