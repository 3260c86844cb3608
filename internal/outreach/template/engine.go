// Package template implements the pure outreach template engine: placeholder
// substitution, lead classification into template buckets, and variable
// derivation from raw lead fields.
package template

import (
	"regexp"
	"strings"
	"unicode"
)

// Bucket selects which default template family fits a lead.
type Bucket string

const (
	BucketStartup    Bucket = "startup"
	BucketHiringPost Bucket = "hiring_post"
	BucketWeb3       Bucket = "web3"
	BucketFollowup   Bucket = "followup"
)

const (
	defaultFirstName   = "there"
	defaultCompany     = "your company"
	defaultObservation = "your recent post"

	observationLimit = 80
)

// placeholderPattern matches {{name}} with optional surrounding whitespace
// inside the braces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render substitutes {{name}} placeholders in subject and content. A
// placeholder with no supplied value stays in the output verbatim; missing
// variables are lenient, never an error.
func Render(subject, content string, variables map[string]string) (string, string) {
	return substitute(subject, variables), substitute(content, variables)
}

func substitute(text string, variables map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := variables[name]; ok {
			return value
		}
		return match
	})
}

// LeadFacts is the slice of lead data the engine needs. Keeping it a plain
// struct avoids a dependency on the leads repository.
type LeadFacts struct {
	Title       string
	Description string
	Source      string
	Author      string
}

// Classify picks the template bucket for a lead. First match wins: web3
// keywords beat hiring markers beat the startup fallback.
func Classify(lead LeadFacts) Bucket {
	haystack := strings.ToLower(lead.Title + " " + lead.Description + " " + lead.Source)

	for _, keyword := range []string{"web3", "solidity", "blockchain"} {
		if strings.Contains(haystack, keyword) {
			return BucketWeb3
		}
	}
	if strings.Contains(haystack, "[hiring]") || strings.Contains(haystack, "hiring") {
		return BucketHiringPost
	}
	return BucketStartup
}

// FirstName derives a greeting name from an author handle. Reddit and social
// prefixes are stripped, the first token wins and is capitalized so a handle
// like "u/jane_doe" greets as "Jane".
func FirstName(author string) string {
	name := strings.TrimSpace(author)
	name = strings.TrimPrefix(name, "u/")
	name = strings.TrimPrefix(name, "@")

	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '_'
	})
	if len(tokens) == 0 || tokens[0] == "" {
		return defaultFirstName
	}
	return capitalize(tokens[0])
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Company derives a company or product name from the lead title. Titles like
// "Acme - looking for devs" or "Acme | hiring" yield "Acme".
func Company(title string) string {
	segment := title
	if idx := strings.IndexAny(title, "-|"); idx >= 0 {
		segment = title[:idx]
	}
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return defaultCompany
	}
	return segment
}

// Observation derives a short personalization snippet from the description.
func Observation(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return defaultObservation
	}
	runes := []rune(trimmed)
	if len(runes) > observationLimit {
		return string(runes[:observationLimit])
	}
	return trimmed
}

// DeriveVariables builds the standard variable set for a lead.
func DeriveVariables(lead LeadFacts) map[string]string {
	return map[string]string{
		"firstName":   FirstName(lead.Author),
		"name":        FirstName(lead.Author),
		"company":     Company(lead.Title),
		"product":     Company(lead.Title),
		"observation": Observation(lead.Description),
	}
}
