package store

import "strings"

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// PlaceholderList is placeholderList, exported for use by QueryBuilder.
func PlaceholderList(n int) string {
	return placeholderList(n)
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// StringsToArgs is stringsToArgs, exported for use by QueryBuilder.
func StringsToArgs(ss []string) []any {
	return stringsToArgs(ss)
}
