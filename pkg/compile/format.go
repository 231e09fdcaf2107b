package compile

import "fmt"

// Format converts a resolved value to the text written to the surface.
// An absent value (nil) renders as the empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
