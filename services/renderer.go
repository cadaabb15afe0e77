package services

import (
	"regexp"
	"strings"
)

// RenderContext carries the field values reminder messages can reference.
type RenderContext struct {
	Vehicle     string
	PlateNumber string
	ServiceType string
	CompanyName string
	ServiceDate string
}

var placeholderPattern = regexp.MustCompile(`\{\{[a-z-]+\}\}`)

// Render substitutes the recognized {{placeholders}} in a step's message
// template. Matching is case-sensitive and runs in a single scan, so a
// substituted value is never re-scanned. Unrecognized placeholders stay in
// the output verbatim so operators can spot template typos.
func Render(template string, ctx RenderContext) string {
	fields := map[string]string{
		"vehicle":      ctx.Vehicle,
		"plate-number": ctx.PlateNumber,
		"service-type": ctx.ServiceType,
		"company-name": ctx.CompanyName,
		"service-date": ctx.ServiceDate,
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")
		if value, ok := fields[name]; ok {
			return value
		}
		return match
	})
}
