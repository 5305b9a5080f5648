package dto

import (
	"fmt"
	"strings"

	"github.com/aretw0/swallow/pkg/domain"
)

// ParseTypeRef parses names such as "int", "Task<int>" or
// "Dictionary<string, List<int>>". An empty string is void.
func ParseTypeRef(s string) (domain.TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Void, nil
	}
	t, rest, err := parseTypeRef(s)
	if err != nil {
		return domain.TypeRef{}, fmt.Errorf("type %q: %w", s, err)
	}
	if strings.TrimSpace(rest) != "" {
		return domain.TypeRef{}, fmt.Errorf("type %q: unexpected %q", s, rest)
	}
	return t, nil
}

func parseTypeRef(s string) (domain.TypeRef, string, error) {
	s = strings.TrimLeft(s, " ")
	end := strings.IndexAny(s, "<>, ")
	if end < 0 {
		end = len(s)
	}
	name := s[:end]
	if name == "" {
		return domain.TypeRef{}, s, fmt.Errorf("missing type name")
	}
	t := domain.TypeRef{Name: name}
	rest := strings.TrimLeft(s[end:], " ")
	if !strings.HasPrefix(rest, "<") {
		return t, rest, nil
	}
	rest = rest[1:]
	for {
		arg, r, err := parseTypeRef(rest)
		if err != nil {
			return domain.TypeRef{}, r, err
		}
		t.Args = append(t.Args, arg)
		r = strings.TrimLeft(r, " ")
		switch {
		case strings.HasPrefix(r, ","):
			rest = r[1:]
		case strings.HasPrefix(r, ">"):
			return t, r[1:], nil
		default:
			return domain.TypeRef{}, r, fmt.Errorf("unterminated type arguments")
		}
	}
}
