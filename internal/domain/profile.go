package domain

import (
	"errors"
	"sort"
	"strings"

	"github.com/colabhub/colabhub/internal/validation"
)

// Profile holds the optional presentation data of a user: a biography, a
// photo URI and a skill set. Skills are stored trimmed, lowercased and
// deduplicated; empty skills are rejected.
type Profile struct {
	ID       string `db:"id" validate:"required,entity_id"`
	Bio      string `db:"bio"`
	PhotoURI string `db:"photo_uri"`
	UserID   string `db:"user_id" validate:"required,entity_id"`

	skills map[string]struct{}

	// user is a cached reference; UserID stays authoritative.
	user *User
}

// NewProfile builds a profile for the given user. An empty id gets a
// generated identifier.
func NewProfile(id, userID, bio, photoURI string) *Profile {
	return &Profile{
		ID:       idOrNew(id),
		Bio:      bio,
		PhotoURI: photoURI,
		UserID:   userID,
		skills:   make(map[string]struct{}),
	}
}

// Validate reports whether the profile may be persisted.
func (p *Profile) Validate() error {
	return validation.Struct("profile", p)
}

// User returns the cached user reference, which may be nil.
func (p *Profile) User() *User { return p.user }

// SetUser caches the user reference and synchronizes UserID in the same
// call, so the scalar key and the reference never disagree.
func (p *Profile) SetUser(u *User) {
	p.user = u
	if u != nil {
		p.UserID = u.ID
	}
}

// AddSkill normalizes and stores a skill. Empty skills are rejected.
func (p *Profile) AddSkill(skill string) error {
	normalized := strings.ToLower(strings.TrimSpace(skill))
	if normalized == "" {
		return errors.New("skill must not be empty")
	}

	if p.skills == nil {
		p.skills = make(map[string]struct{})
	}
	p.skills[normalized] = struct{}{}

	return nil
}

// RemoveSkill drops a skill; unknown skills are a no-op.
func (p *Profile) RemoveSkill(skill string) {
	delete(p.skills, strings.ToLower(strings.TrimSpace(skill)))
}

// HasSkill reports whether the normalized skill is present.
func (p *Profile) HasSkill(skill string) bool {
	_, ok := p.skills[strings.ToLower(strings.TrimSpace(skill))]
	return ok
}

// Skills returns a sorted snapshot of the skill set. Mutating the returned
// slice does not affect the profile.
func (p *Profile) Skills() []string {
	skills := make([]string, 0, len(p.skills))
	for skill := range p.skills {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	return skills
}

// SkillsCSV renders the skill set as the comma-separated form persisted in
// the profiles table.
func (p *Profile) SkillsCSV() string {
	return strings.Join(p.Skills(), ",")
}

// SetSkillsCSV replaces the skill set from its persisted comma-separated
// form. Blank segments are dropped.
func (p *Profile) SetSkillsCSV(csv string) {
	p.skills = make(map[string]struct{})
	for _, skill := range strings.Split(csv, ",") {
		if normalized := strings.ToLower(strings.TrimSpace(skill)); normalized != "" {
			p.skills[normalized] = struct{}{}
		}
	}
}

// Complete reports whether the profile carries a biography and at least one
// skill.
func (p *Profile) Complete() bool {
	return strings.TrimSpace(p.Bio) != "" && len(p.skills) > 0
}

// CompletenessPercent scores the profile 0-100 over three criteria:
// biography, photo and skills.
func (p *Profile) CompletenessPercent() int {
	points := 0
	if strings.TrimSpace(p.Bio) != "" {
		points++
	}
	if strings.TrimSpace(p.PhotoURI) != "" {
		points++
	}
	if len(p.skills) > 0 {
		points++
	}

	return points * 100 / 3
}

// CompatibilityPercent scores skill overlap with another profile as
// |intersection| / |union| in percent. Either side empty scores 0.
func (p *Profile) CompatibilityPercent(other *Profile) int {
	if other == nil || len(p.skills) == 0 || len(other.skills) == 0 {
		return 0
	}

	common := 0
	union := len(other.skills)
	for skill := range p.skills {
		if _, ok := other.skills[skill]; ok {
			common++
		} else {
			union++
		}
	}

	return common * 100 / union
}
