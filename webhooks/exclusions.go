package webhooks

import "strings"

// ExclusionSet is a fixed, case-insensitive set of author emails whose
// replies must not move tasks. Built once at startup, immutable after, and
// safe to share across concurrent requests.
type ExclusionSet struct {
	emails map[string]struct{}
}

func NewExclusionSet(emails []string) ExclusionSet {
	set := ExclusionSet{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized == "" {
			continue
		}
		set.emails[normalized] = struct{}{}
	}
	return set
}

// Contains reports membership. An empty email is never excluded.
func (s ExclusionSet) Contains(email string) bool {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return false
	}
	_, ok := s.emails[normalized]
	return ok
}

func (s ExclusionSet) Size() int {
	return len(s.emails)
}
