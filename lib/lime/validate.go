// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lime

import "fmt"

// validateDomain checks that a domain is non-empty and contains neither
// address separators nor whitespace or control characters.
func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("lime: domain is empty")
	}
	return validateChars(domain, "domain", "@/", false)
}

// validateName checks an identity name. Empty names are allowed (a bare
// domain is a valid identity). Names may contain spaces, as distribution
// list names do; they are escaped when used in a URI.
func validateName(name string) error {
	if name == "" {
		return nil
	}
	return validateChars(name, "name", "@/", true)
}

// validateInstance checks a node instance. Empty instances are allowed.
func validateInstance(instance string) error {
	if instance == "" {
		return nil
	}
	return validateChars(instance, "instance", "", false)
}

func validateChars(value, label, forbidden string, allowSpace bool) error {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ' ' && allowSpace {
			continue
		}
		if c <= ' ' || c == 0x7f {
			return fmt.Errorf("lime: %s %q contains whitespace or control character at position %d", label, value, i)
		}
		for j := 0; j < len(forbidden); j++ {
			if c == forbidden[j] {
				return fmt.Errorf("lime: %s %q must not contain %q", label, value, c)
			}
		}
	}
	return nil
}
