package queue

import (
	"fmt"
	"strings"
)

// qualifiedStructName returns the type name of v without pointer prefixes,
// e.g. "mail.SendPayload". Used as the default handler name for typed handlers.
func qualifiedStructName(v any) string {
	s := fmt.Sprintf("%T", v)
	s = strings.TrimLeft(s, "*")

	return s
}
