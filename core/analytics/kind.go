package analytics

import "github.com/pkg/errors"

// Kind selects which analytics of a student in a course are reported.
type Kind string

const (
	KindParticipation Kind = "participation"
	KindAssignments   Kind = "assignments"
	KindMessaging     Kind = "messaging"
)

var Kinds = []Kind{KindParticipation, KindAssignments, KindMessaging}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Errorf("unknown analytics kind %q", s)
}
