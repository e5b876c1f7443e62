package utils

import (
	"fmt"
	"regexp"
	"strings"

	kerrors "github.com/asap-static/asap/internal/errors"
	petname "github.com/dustinkirkland/golang-petname"
)

// tagRegex matches a valid site tag: lowercase letters, digits and hyphens.
var tagRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// tagWords is the number of words in a generated tag.
const tagWords = 3

// IsValidTag checks if the given string can be used as a site tag.
func IsValidTag(tag string) bool {
	return tag != "" && tagRegex.MatchString(tag)
}

// ValidateTag returns ErrInvalidTag with a descriptive message when tag
// cannot be used as a subdomain label.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: tag must not be empty", kerrors.ErrInvalidTag)
	}
	if IsValidTag(tag) {
		return nil
	}

	detail := fmt.Sprintf("%q may only contain lowercase letters, digits and hyphens", tag)
	if suggestion := SanitizeTag(tag); suggestion != "" {
		detail += fmt.Sprintf(" (try %q)", suggestion)
	}
	return fmt.Errorf("%w: %s", kerrors.ErrInvalidTag, detail)
}

// SanitizeTag turns arbitrary input into a valid tag by lowercasing it,
// converting spaces and underscores to hyphens and dropping everything else.
// Returns an empty string if nothing usable is left.
func SanitizeTag(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.NewReplacer(" ", "-", "_", "-").Replace(name)

	re := regexp.MustCompile(`[^a-z0-9-]`)
	name = re.ReplaceAllString(name, "")

	re = regexp.MustCompile(`-+`)
	name = re.ReplaceAllString(name, "-")

	return strings.Trim(name, "-")
}

// GenerateTag returns a random, valid tag made of three hyphen-joined words.
func GenerateTag() string {
	tag := SanitizeTag(petname.Generate(tagWords, "-"))
	if tag == "" {
		// The word lists are lowercase ASCII, so this is unreachable in practice.
		return "asap-static-site"
	}
	return tag
}

// SiteURL returns the live address of a site deployed under tag.
func SiteURL(tag, domain string) string {
	return "https://" + tag + "." + domain
}
