package expression

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxPatternLength = 500
	maxGroups        = 20
	maxNesting       = 5
)

// dangerousFragments are constructs known to backtrack exponentially. The check is
// a heuristic, not exhaustive.
var dangerousFragments = []string{
	`(\w+)*\w`,
	`(\w*)+`,
	`(a+)+`,
	`([a-zA-Z]+)*`,
	`(\d+)*\d`,
	`(.*)*`,
	`(.+)+`,
	`(\s+)*\s`,
	`([^,]+)*[^,]`,
}

var largeRepetition = regexp.MustCompile(`\{\d{4,}`)

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if err := validateRegexComplexity(pattern); err != nil {
		return nil, err
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
	}
	return re, nil
}

// validateRegexComplexity rejects patterns likely to be pathological
func validateRegexComplexity(pattern string) error {
	if len(pattern) > maxPatternLength {
		return fmt.Errorf("regex pattern too long (max %d chars): %d chars", maxPatternLength, len(pattern))
	}

	for _, fragment := range dangerousFragments {
		if strings.Contains(pattern, fragment) {
			return fmt.Errorf("regex pattern contains nested quantifiers that may backtrack exponentially")
		}
	}

	if largeRepetition.MatchString(pattern) {
		return fmt.Errorf("regex pattern contains excessive repetition count (>= 1000)")
	}

	if strings.Count(pattern, "(") > maxGroups {
		return fmt.Errorf("regex pattern has too many groups (max %d)", maxGroups)
	}

	depth, deepest := 0, 0
	for _, ch := range pattern {
		switch ch {
		case '(':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ')':
			depth--
		}
	}
	if deepest > maxNesting {
		return fmt.Errorf("regex pattern has excessive nesting depth (max %d levels)", maxNesting)
	}

	return nil
}
