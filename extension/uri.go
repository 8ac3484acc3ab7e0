// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultTake is the page size used when an operation pages by default.
const DefaultTake = 100

// Escape percent-encodes s for use as a URI path segment or query value.
// Only RFC 3986 unreserved characters are left as is, so '@', '/' and
// space are all encoded.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// BuildURI replaces the positional placeholders {0}, {1}, ... in
// template with the escaped segments. Placeholders without a matching
// segment are left untouched.
//
//	BuildURI("/lists/{0}", "My List") == "/lists/My%20List"
func BuildURI(template string, segments ...string) string {
	uri := template
	for index, segment := range segments {
		uri = strings.ReplaceAll(uri, "{"+strconv.Itoa(index)+"}", Escape(segment))
	}
	return uri
}

// Query holds optional query parameters. Entries with an empty value
// are skipped when the query string is built.
type Query map[string]string

// With returns a new Query holding q's entries overlaid with other's.
func (q Query) With(other Query) Query {
	merged := make(Query, len(q)+len(other))
	maps.Copy(merged, q)
	maps.Copy(merged, other)
	return merged
}

// BuildResourceQuery appends query to uri. Keys are emitted in sorted
// order. A leading '$' in a key ($skip, $take, $filter) stays literal.
// When uri already has a query string the new parameters are appended
// with '&'.
func BuildResourceQuery(uri string, query Query) string {
	keys := slices.Sorted(maps.Keys(query))

	var builder strings.Builder
	builder.WriteString(uri)
	separator := "?"
	if strings.Contains(uri, "?") {
		separator = "&"
	}
	for _, key := range keys {
		value := query[key]
		if value == "" {
			continue
		}
		builder.WriteString(separator)
		builder.WriteString(escapeKey(key))
		builder.WriteByte('=')
		builder.WriteString(Escape(value))
		separator = "&"
	}
	return builder.String()
}

func escapeKey(key string) string {
	if rest, ok := strings.CutPrefix(key, "$"); ok {
		return "$" + Escape(rest)
	}
	return Escape(key)
}

// Page selects a window of a collection.
type Page struct {
	Skip int
	Take int
}

// Query returns $skip and $take for the non-zero fields only.
func (p Page) Query() Query {
	query := Query{}
	if p.Skip > 0 {
		query["$skip"] = strconv.Itoa(p.Skip)
	}
	if p.Take > 0 {
		query["$take"] = strconv.Itoa(p.Take)
	}
	return query
}

// QueryWithDefaults always returns both $skip and $take, with Take
// defaulting to DefaultTake.
func (p Page) QueryWithDefaults() Query {
	take := p.Take
	if take <= 0 {
		take = DefaultTake
	}
	skip := max(p.Skip, 0)
	return Query{
		"$skip": strconv.Itoa(skip),
		"$take": strconv.Itoa(take),
	}
}
