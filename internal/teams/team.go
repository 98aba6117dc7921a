package teams

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
)

// MaxNameLength is counted in runes after trimming.
const MaxNameLength = 50

// NewTeam validates the input and builds a team owned by ownerID. Name and
// description are stored without surrounding whitespace.
func NewTeam(name, description string, ownerID uuid.UUID, inviteCode string, now time.Time) (*models.Team, error) {
	normalized, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	now = now.UTC()
	return &models.Team{
		ID:          uuid.New(),
		Name:        normalized,
		Description: strings.TrimSpace(description),
		InviteCode:  inviteCode,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyUpdate patches team metadata. A nil or blank name keeps the current
// name; a non-nil description always overwrites, so a blank one clears it.
func ApplyUpdate(team *models.Team, name, description *string, now time.Time) error {
	if name != nil && strings.TrimSpace(*name) != "" {
		normalized, err := normalizeName(*name)
		if err != nil {
			return err
		}
		team.Name = normalized
	}
	if description != nil {
		team.Description = strings.TrimSpace(*description)
	}
	team.UpdatedAt = now.UTC()
	return nil
}

// SetInviteCode swaps in a freshly generated invite code.
func SetInviteCode(team *models.Team, code string, now time.Time) {
	team.InviteCode = code
	team.UpdatedAt = now.UTC()
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "team name required").
			WithDetails(map[string]any{"field": "name"})
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "team name too long").
			WithDetails(map[string]any{"field": "name", "max_length": MaxNameLength})
	}
	return trimmed, nil
}
