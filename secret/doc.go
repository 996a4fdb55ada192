// Package secret resolves secret references in configuration values.
//
// A value of the form "secretref:<provider>:<ref>" is replaced by what the
// named provider returns for ref. Two providers ship with the package:
//
//   - env:  secretref:env:CATALOGD_JWT_SECRET_V2 reads an environment variable
//   - file: secretref:file:/run/secrets/jwt reads a file (trailing newline trimmed)
//
// Before reference resolution, ${VAR} placeholders are expanded strictly:
// a missing variable is an error rather than an empty string.
package secret
