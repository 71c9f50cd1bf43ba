package asset

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// FilterKind names the active filter.
type FilterKind int

const (
	// FilterDefault combines the platform token check with the repo name.
	FilterDefault FilterKind = iota
	// FilterGlob matches a flat file name glob.
	FilterGlob
	// FilterRegex matches a regular expression.
	FilterRegex
	// FilterContains matches a literal substring.
	FilterContains
)

// String returns the description used in error messages.
func (k FilterKind) String() string {
	switch k {
	case FilterGlob:
		return "glob pattern"
	case FilterRegex:
		return "RegEx pattern"
	case FilterContains:
		return "substring"
	default:
		return "exact file name"
	}
}

// ErrInvalidFilter is returned by Validate for unusable filters.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter is a user override for asset or archive entry matching. At most
// one field may be set; the zero value is the default matcher.
type Filter struct {
	Glob     string
	Regex    string
	Contains string
}

// Kind returns the active filter, by precedence glob, regex, contains.
func (f Filter) Kind() FilterKind {
	switch {
	case f.Glob != "":
		return FilterGlob
	case f.Regex != "":
		return FilterRegex
	case f.Contains != "":
		return FilterContains
	default:
		return FilterDefault
	}
}

// Pattern returns the active filter's text.
func (f Filter) Pattern() string {
	switch f.Kind() {
	case FilterGlob:
		return f.Glob
	case FilterRegex:
		return f.Regex
	case FilterContains:
		return f.Contains
	default:
		return ""
	}
}

// IsZero reports whether no override is set.
func (f Filter) IsZero() bool {
	return f.Kind() == FilterDefault
}

// Validate checks that at most one field is set and that it compiles.
// Asset globs must name a single flat file.
func (f Filter) Validate(flat bool) error {
	set := 0
	for _, v := range []string{f.Glob, f.Regex, f.Contains} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("%w: only one of glob, regex or contains may be set", ErrInvalidFilter)
	}

	if f.Glob != "" {
		if flat && (strings.Contains(f.Glob, "/") || strings.Contains(f.Glob, "**")) {
			return fmt.Errorf("%w: glob %q must not contain path separators or **", ErrInvalidFilter, f.Glob)
		}
		if _, err := path.Match(f.Glob, ""); err != nil {
			return fmt.Errorf("%w: glob %q: %v", ErrInvalidFilter, f.Glob, err)
		}
		if !flat {
			if _, err := globRegexp(f.Glob); err != nil {
				return fmt.Errorf("%w: glob %q: %v", ErrInvalidFilter, f.Glob, err)
			}
		}
	}
	if f.Regex != "" {
		if _, err := regexp.Compile(f.Regex); err != nil {
			return fmt.Errorf("%w: regex %q: %v", ErrInvalidFilter, f.Regex, err)
		}
	}
	return nil
}

// Matcher compiles the filter into a predicate. It returns nil for the
// default filter; callers supply their own default.
func (f Filter) Matcher() (func(string) bool, error) {
	switch f.Kind() {
	case FilterGlob:
		pattern := f.Glob
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w: glob %q: %v", ErrInvalidFilter, pattern, err)
		}
		return func(name string) bool {
			ok, _ := path.Match(pattern, name)
			return ok
		}, nil
	case FilterRegex:
		re, err := regexp.Compile(f.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: regex %q: %v", ErrInvalidFilter, f.Regex, err)
		}
		return re.MatchString, nil
	case FilterContains:
		needle := f.Contains
		return func(name string) bool {
			return strings.Contains(name, needle)
		}, nil
	default:
		return nil, nil
	}
}

// EntryMatcher is Matcher for archive entry paths. A glob's * and ? also
// match '/', so "*rg" finds "ripgrep-13.0.0/rg".
func (f Filter) EntryMatcher() (func(string) bool, error) {
	if f.Kind() != FilterGlob {
		return f.Matcher()
	}
	re, err := globRegexp(f.Glob)
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q: %v", ErrInvalidFilter, f.Glob, err)
	}
	return re.MatchString, nil
}

// globRegexp translates a path.Match style glob into an anchored regexp
// whose wildcards cross path separators. Character classes keep their
// meaning, with [!...] accepted as negation.
func globRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '\\':
			i++
			if i == len(glob) {
				return nil, path.ErrBadPattern
			}
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				return nil, path.ErrBadPattern
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
