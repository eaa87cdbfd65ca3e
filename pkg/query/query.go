// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-valued URL query parameters.
package query

import "strings"

// StringSlice splits a comma-separated value ("sport,culture") into its
// trimmed, non-empty parts. It returns nil for an empty value.
func StringSlice(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	var parts []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
