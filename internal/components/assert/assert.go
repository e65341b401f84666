package assert

import "fmt"

// NotEmptyStr panics when a required string option was left empty.
func NotEmptyStr(str, what string) {
	if str == "" {
		panic(fmt.Sprintf("expected %s to be non-empty", what))
	}
}
