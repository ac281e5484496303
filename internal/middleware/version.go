package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultAPIVersion is assumed when a request names none
	DefaultAPIVersion = "1.0.0"

	versionHeader = "X-Api-Version"
	versionKey    = "apiVersion"
)

var versionAliases = map[string]string{
	"1":   DefaultAPIVersion,
	"1.0": DefaultAPIVersion,
	"v1":  DefaultAPIVersion,
}

// VersionMiddleware resolves the requested api version, keeps it in locals
// and echoes it on the response.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get(versionHeader, DefaultAPIVersion)
		if canonical, ok := versionAliases[version]; ok {
			version = canonical
		}

		c.Locals(versionKey, version)
		c.Set(versionHeader, version)
		return c.Next()
	}
}

// APIVersion returns the version resolved for the request, empty outside /api
func APIVersion(c *fiber.Ctx) string {
	v, _ := c.Locals(versionKey).(string)
	return v
}
