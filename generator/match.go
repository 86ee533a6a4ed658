/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package generator

import (
	"regexp"
	"strings"
)

// Match reports whether a slash separated relative path matches an include
// or exclude pattern.
//
// A '?' matches a single character within a path segment.
// A '*' matches zero or more characters within a path segment.
// A '**' matches zero or more characters across path segments, and '**/'
// also matches files at the top level.
//
//	Match("a.avsc", "*.avsc")         --> true
//	Match("x/a.avsc", "*.avsc")       --> false
//	Match("x/a.avsc", "**/*.avsc")    --> true
//	Match("a.avsc", "**/*.avsc")      --> true
//	Match("x/y/a.avsc", "x/**")       --> true
//	Match("x/ab.avsc", "x/a?.avsc")   --> true
func Match(path string, pattern string) bool {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}
	re, err := regexp.Compile("^" + wildcardToRegexp(pattern, '/') + "$")
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

func wildcardToRegexp(globExp string, separator rune) string {
	var dst strings.Builder
	src := []rune(globExp)
	i, size := 0, len(src)
	for i < size {
		c := src[i]
		i++
		switch c {
		case '*':
			// One char lookahead for **
			if i < size && src[i] == '*' {
				i++
				// **/ also matches nothing
				if i < size && src[i] == separator {
					i++
					dst.WriteString("(?:.*")
					dst.WriteString(regexp.QuoteMeta(string(separator)))
					dst.WriteString(")?")
				} else {
					dst.WriteString(".*")
				}
			} else {
				dst.WriteString("[^")
				dst.WriteString(regexp.QuoteMeta(string(separator)))
				dst.WriteString("]*")
			}
		case '?':
			dst.WriteString("[^")
			dst.WriteString(regexp.QuoteMeta(string(separator)))
			dst.WriteString("]")
		default:
			dst.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return dst.String()
}
