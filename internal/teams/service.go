package teams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/internal/memberships"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	"github.com/angelmondragon/trailteams-backend/pkg/metrics"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox/payloads"
)

const defaultInviteCodeAttempts = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type identityResolver interface {
	ResolveOrCreate(ctx context.Context, openID string) (uuid.UUID, error)
}

type userDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type operationRecorder interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	IncTransition(event string)
}

// Service is the single entry point for team and membership use cases. Every
// method takes the caller's external open id and resolves it first.
type Service interface {
	CreateTeam(ctx context.Context, openID string, input CreateTeamInput) (*TeamDTO, error)
	UpdateTeam(ctx context.Context, openID string, teamID uuid.UUID, input UpdateTeamInput) (*TeamDTO, error)
	DeleteTeam(ctx context.Context, openID string, teamID uuid.UUID) error
	JoinByInviteCode(ctx context.Context, openID, code string) (*TeamDTO, error)
	ApplyToJoin(ctx context.Context, openID string, teamID uuid.UUID) (*MemberDTO, error)
	ReviewApplication(ctx context.Context, openID string, teamID, membershipID uuid.UUID, approve bool) (*MemberDTO, error)
	RemoveMember(ctx context.Context, openID string, teamID, membershipID uuid.UUID) error
	LeaveTeam(ctx context.Context, openID string, teamID uuid.UUID) error
	RegenerateInviteCode(ctx context.Context, openID string, teamID uuid.UUID) (string, error)
	ListMembers(ctx context.Context, openID string, teamID uuid.UUID) ([]MemberDTO, error)
	ListPendingApplications(ctx context.Context, openID string, teamID uuid.UUID) ([]MemberDTO, error)
	GetTeam(ctx context.Context, openID string, teamID uuid.UUID) (*TeamDTO, error)
	ListMyTeams(ctx context.Context, openID string) ([]TeamDTO, error)
	TeamMemberUserIDs(ctx context.Context, openID string) ([]uuid.UUID, error)
	MemberUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ServiceParams bundles the dependencies required to build a team service.
type ServiceParams struct {
	Teams       Repository
	Memberships memberships.Repository
	Users       userDirectory
	Identity    identityResolver
	Tx          txRunner
	Outbox      outboxPublisher
	Metrics     operationRecorder
	Logger      *logger.Logger
	Config      config.TeamsConfig
	// Clock and InviteCodes default to time.Now and GenerateInviteCode.
	Clock       func() time.Time
	InviteCodes func() string
}

type service struct {
	teams       Repository
	memberships memberships.Repository
	users       userDirectory
	identity    identityResolver
	tx          txRunner
	outbox      outboxPublisher
	metrics     operationRecorder
	logg        *logger.Logger
	attempts    int
	now         func() time.Time
	newCode     func() string
}

// NewService constructs the team access-control service.
func NewService(params ServiceParams) (Service, error) {
	if params.Teams == nil {
		return nil, fmt.Errorf("teams repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	svc := &service{
		teams:       params.Teams,
		memberships: params.Memberships,
		users:       params.Users,
		identity:    params.Identity,
		tx:          params.Tx,
		outbox:      params.Outbox,
		metrics:     params.Metrics,
		logg:        params.Logger,
		attempts:    params.Config.InviteCodeAttempts,
		now:         params.Clock,
		newCode:     params.InviteCodes,
	}
	if svc.metrics == nil {
		svc.metrics = metrics.NewTeamMetrics(nil)
	}
	if svc.attempts <= 0 {
		svc.attempts = defaultInviteCodeAttempts
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	if svc.newCode == nil {
		svc.newCode = GenerateInviteCode
	}
	return svc, nil
}

func (s *service) CreateTeam(ctx context.Context, openID string, input CreateTeamInput) (dto *TeamDTO, err error) {
	defer s.observe(OpCreateTeam, time.Now(), &err)
	ctx = s.tag(ctx, OpCreateTeam)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	if err := authorize(OpCreateTeam, subject{callerID: userID}); err != nil {
		return nil, err
	}

	now := s.now()
	team, err := NewTeam(input.Name, input.Description, userID, "", now)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.teams.WithTx(tx)
		if err := s.assignInviteCode(ctx, repo, team, now, repo.Create); err != nil {
			return err
		}
		owner := memberships.NewOwner(team.ID, userID, now)
		if err := s.memberships.WithTx(tx).Create(ctx, owner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
		}
		return s.emitTeam(ctx, tx, enums.EventTeamCreated, userID, team, 0)
	})
	if err != nil {
		return nil, txError(err)
	}

	s.info(s.withTeam(ctx, userID, team.ID), "team created")
	return s.teamView(ctx, team, userID)
}

func (s *service) UpdateTeam(ctx context.Context, openID string, teamID uuid.UUID, input UpdateTeamInput) (dto *TeamDTO, err error) {
	defer s.observe(OpUpdateTeam, time.Now(), &err)
	ctx = s.tag(ctx, OpUpdateTeam)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}

	var team *models.Team
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.teams.WithTx(tx)
		loaded, err := loadTeam(ctx, repo, teamID)
		if err != nil {
			return err
		}
		if err := authorize(OpUpdateTeam, subject{callerID: userID, team: loaded}); err != nil {
			return err
		}
		if err := ApplyUpdate(loaded, input.Name, input.Description, s.now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, loaded); err != nil {
			return storeError(err, "team", teamDetails(teamID))
		}
		team = loaded
		return s.emitTeam(ctx, tx, enums.EventTeamUpdated, userID, loaded, 0)
	})
	if err != nil {
		return nil, txError(err)
	}

	s.info(s.withTeam(ctx, userID, team.ID), "team updated")
	return s.teamView(ctx, team, userID)
}

// DeleteTeam dissolves the team. Memberships go first so no row is left
// pointing at a missing team.
func (s *service) DeleteTeam(ctx context.Context, openID string, teamID uuid.UUID) (err error) {
	defer s.observe(OpDeleteTeam, time.Now(), &err)
	ctx = s.tag(ctx, OpDeleteTeam)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.teams.WithTx(tx)
		team, err := loadTeam(ctx, repo, teamID)
		if err != nil {
			return err
		}
		if err := authorize(OpDeleteTeam, subject{callerID: userID, team: team}); err != nil {
			return err
		}
		removed, err := s.memberships.WithTx(tx).DeleteByTeam(ctx, team.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete team memberships")
		}
		if err := repo.Delete(ctx, team.ID); err != nil {
			return storeError(err, "team", teamDetails(teamID))
		}
		return s.emitTeam(ctx, tx, enums.EventTeamDeleted, userID, team, int(removed))
	})
	if err != nil {
		return txError(err)
	}

	s.info(s.withTeam(ctx, userID, teamID), "team deleted")
	return nil
}

func (s *service) JoinByInviteCode(ctx context.Context, openID, code string) (dto *TeamDTO, err error) {
	defer s.observe(OpJoinByInviteCode, time.Now(), &err)
	ctx = s.tag(ctx, OpJoinByInviteCode)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	code = NormalizeInviteCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code required").
			WithDetails(map[string]any{"field": "inviteCode"})
	}
	if err := authorize(OpJoinByInviteCode, subject{callerID: userID}); err != nil {
		return nil, err
	}

	var team *models.Team
	var member *models.TeamMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if !ValidInviteCode(code) {
			return errInvalidInviteCode()
		}
		found, err := s.teams.WithTx(tx).FindByInviteCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errInvalidInviteCode()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load team by invite code")
		}
		m, err := s.createMembership(ctx, tx, found, memberships.NewInvited(found.ID, userID, s.now()), "already a member of this team")
		if err != nil {
			return err
		}
		team, member = found, m
		return s.emitMembership(ctx, tx, enums.EventMembershipJoined, userID, m)
	})
	if err != nil {
		return nil, txError(err)
	}

	s.metrics.IncTransition(string(enums.EventMembershipJoined))
	s.info(s.withMembership(ctx, userID, member), "joined team by invite code")
	return s.teamView(ctx, team, userID)
}

func (s *service) ApplyToJoin(ctx context.Context, openID string, teamID uuid.UUID) (dto *MemberDTO, err error) {
	defer s.observe(OpApplyToJoin, time.Now(), &err)
	ctx = s.tag(ctx, OpApplyToJoin)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}

	var member *models.TeamMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		team, err := loadTeam(ctx, s.teams.WithTx(tx), teamID)
		if err != nil {
			return err
		}
		if err := authorize(OpApplyToJoin, subject{callerID: userID, team: team}); err != nil {
			return err
		}
		m, err := s.createMembership(ctx, tx, team, memberships.NewApplicant(team.ID, userID, s.now()), "already applied to or joined this team")
		if err != nil {
			return err
		}
		member = m
		return s.emitMembership(ctx, tx, enums.EventMembershipApplied, userID, m)
	})
	if err != nil {
		return nil, txError(err)
	}

	s.metrics.IncTransition(string(enums.EventMembershipApplied))
	s.info(s.withMembership(ctx, userID, member), "applied to join team")
	return s.memberView(ctx, member)
}

// ReviewApplication approves or rejects a pending application. The status
// write is conditional on the row still being pending, so of two concurrent
// reviews exactly one succeeds.
func (s *service) ReviewApplication(ctx context.Context, openID string, teamID, membershipID uuid.UUID, approve bool) (dto *MemberDTO, err error) {
	defer s.observe(OpReviewApplication, time.Now(), &err)
	ctx = s.tag(ctx, OpReviewApplication)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}

	eventType := enums.EventMembershipRejected
	if approve {
		eventType = enums.EventMembershipApproved
	}

	var member *models.TeamMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		team, err := loadTeam(ctx, s.teams.WithTx(tx), teamID)
		if err != nil {
			return err
		}
		if err := authorize(OpReviewApplication, subject{callerID: userID, team: team}); err != nil {
			return err
		}
		repo := s.memberships.WithTx(tx)
		target, err := loadTeamMembership(ctx, repo, team.ID, membershipID, "application")
		if err != nil {
			return err
		}

		now := s.now()
		if approve {
			err = memberships.Approve(target, now)
		} else {
			err = memberships.Reject(target, now)
		}
		if err != nil {
			return err
		}
		if err := repo.TransitionFromPending(ctx, target.ID, target.Status, target.JoinTime, now); err != nil {
			if errors.Is(err, memberships.ErrNotPending) {
				return lostTransition(ctx, repo, team.ID, target.ID)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update membership status")
		}
		member = target
		return s.emitMembership(ctx, tx, eventType, userID, target)
	})
	if err != nil {
		return nil, txError(err)
	}

	s.metrics.IncTransition(string(eventType))
	s.info(s.withMembership(ctx, userID, member), "application reviewed")
	return s.memberView(ctx, member)
}

// RemoveMember deletes any non-owner membership of the team. The owner may
// remove anyone else; other callers may only remove their own row, which also
// lets applicants withdraw.
func (s *service) RemoveMember(ctx context.Context, openID string, teamID, membershipID uuid.UUID) (err error) {
	defer s.observe(OpRemoveMember, time.Now(), &err)
	ctx = s.tag(ctx, OpRemoveMember)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return err
	}

	var target *models.TeamMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		team, err := loadTeam(ctx, s.teams.WithTx(tx), teamID)
		if err != nil {
			return err
		}
		repo := s.memberships.WithTx(tx)
		loaded, err := loadTeamMembership(ctx, repo, team.ID, membershipID, "member")
		if err != nil {
			return err
		}
		if err := memberships.EnsureRemovable(loaded); err != nil {
			return err
		}
		if err := authorize(OpRemoveMember, subject{callerID: userID, team: team, target: loaded}); err != nil {
			return err
		}
		if err := repo.Delete(ctx, loaded.ID); err != nil {
			return storeError(err, "member", membershipDetails(team.ID, loaded.ID))
		}
		target = loaded
		return s.emitMembership(ctx, tx, enums.EventMembershipRemoved, userID, loaded)
	})
	if err != nil {
		return txError(err)
	}

	s.metrics.IncTransition(string(enums.EventMembershipRemoved))
	s.info(s.withMembership(ctx, userID, target), "member removed")
	return nil
}

func (s *service) LeaveTeam(ctx context.Context, openID string, teamID uuid.UUID) (err error) {
	defer s.observe(OpLeaveTeam, time.Now(), &err)
	ctx = s.tag(ctx, OpLeaveTeam)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return err
	}

	var member *models.TeamMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.memberships.WithTx(tx)
		loaded, err := repo.FindByTeamAndUser(ctx, teamID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "you are not a member of this team").
					WithDetails(teamDetails(teamID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}
		if !loaded.Role.Removable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "team owner cannot leave; delete the team instead").
				WithDetails(membershipDetails(teamID, loaded.ID))
		}
		if err := authorize(OpLeaveTeam, subject{callerID: userID, caller: loaded}); err != nil {
			return err
		}
		if err := repo.Delete(ctx, loaded.ID); err != nil {
			return storeError(err, "membership", membershipDetails(teamID, loaded.ID))
		}
		member = loaded
		return s.emitMembership(ctx, tx, enums.EventMembershipLeft, userID, loaded)
	})
	if err != nil {
		return txError(err)
	}

	s.metrics.IncTransition(string(enums.EventMembershipLeft))
	s.info(s.withMembership(ctx, userID, member), "left team")
	return nil
}

func (s *service) RegenerateInviteCode(ctx context.Context, openID string, teamID uuid.UUID) (code string, err error) {
	defer s.observe(OpRegenerateInviteCode, time.Now(), &err)
	ctx = s.tag(ctx, OpRegenerateInviteCode)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return "", err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.teams.WithTx(tx)
		team, err := loadTeam(ctx, repo, teamID)
		if err != nil {
			return err
		}
		if err := authorize(OpRegenerateInviteCode, subject{callerID: userID, team: team}); err != nil {
			return err
		}
		if err := s.assignInviteCode(ctx, repo, team, s.now(), repo.Update); err != nil {
			return err
		}
		code = team.InviteCode
		return s.emitTeam(ctx, tx, enums.EventTeamInviteCodeRegenerated, userID, team, 0)
	})
	if err != nil {
		return "", txError(err)
	}

	s.info(s.withTeam(ctx, userID, teamID), "invite code regenerated")
	return code, nil
}

// assignInviteCode draws codes until write succeeds. Codes already present
// are skipped up front; a collision reported by write covers the race with a
// concurrent writer.
func (s *service) assignInviteCode(ctx context.Context, repo Repository, team *models.Team, now time.Time, write func(context.Context, *models.Team) error) error {
	for attempt := 0; attempt < s.attempts; attempt++ {
		code := s.newCode()
		taken, err := repo.InviteCodeExists(ctx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check invite code")
		}
		if taken {
			continue
		}
		SetInviteCode(team, code, now)
		err = write(ctx, team)
		if errors.Is(err, ErrInviteCodeTaken) {
			continue
		}
		if err != nil {
			return storeError(err, "team", teamDetails(team.ID))
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique invite code").
		WithDetails(map[string]any{"attempts": s.attempts})
}

func (s *service) createMembership(ctx context.Context, tx *gorm.DB, team *models.Team, m *models.TeamMembership, conflictMessage string) (*models.TeamMembership, error) {
	repo := s.memberships.WithTx(tx)
	exists, err := repo.ExistsByTeamAndUser(ctx, team.ID, m.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, conflictMessage).WithDetails(teamDetails(team.ID))
	}
	if err := repo.Create(ctx, m); err != nil {
		switch {
		case errors.Is(err, memberships.ErrDuplicateMembership):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, conflictMessage).WithDetails(teamDetails(team.ID))
		case errors.Is(err, memberships.ErrTeamGone):
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found").WithDetails(teamDetails(team.ID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}
	return m, nil
}

func (s *service) emitTeam(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, actorID uuid.UUID, team *models.Team, membersRemoved int) error {
	data := payloads.TeamEvent{
		TeamID:         team.ID,
		OwnerID:        team.OwnerID,
		Name:           team.Name,
		Description:    team.Description,
		MembersRemoved: membersRemoved,
	}
	switch eventType {
	case enums.EventTeamCreated, enums.EventTeamInviteCodeRegenerated:
		data.InviteCode = team.InviteCode
	}
	teamID := team.ID
	event := outbox.DomainEvent{
		EventType:   eventType,
		AggregateID: team.ID,
		Actor:       &outbox.ActorRef{UserID: actorID, TeamID: &teamID, Role: string(enums.MemberRoleOwner)},
		Data:        data,
		OccurredAt:  s.now(),
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit "+string(eventType))
	}
	return nil
}

func (s *service) emitMembership(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, actorID uuid.UUID, m *models.TeamMembership) error {
	teamID := m.TeamID
	event := outbox.DomainEvent{
		EventType:   eventType,
		AggregateID: m.ID,
		Actor:       &outbox.ActorRef{UserID: actorID, TeamID: &teamID},
		Data: payloads.MembershipEvent{
			MembershipID: m.ID,
			TeamID:       m.TeamID,
			UserID:       m.UserID,
			ActorID:      actorID,
			Role:         m.Role,
			Status:       m.Status,
			JoinTime:     m.JoinTime,
		},
		OccurredAt: s.now(),
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit "+string(eventType))
	}
	return nil
}

func (s *service) observe(op Operation, start time.Time, errp *error) {
	outcome := "ok"
	if errp != nil && *errp != nil {
		outcome = string(pkgerrors.CodeOf(*errp))
	}
	s.metrics.ObserveOperation(string(op), outcome, time.Since(start))
}

func (s *service) tag(ctx context.Context, op Operation) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOperation(ctx, string(op))
}

func (s *service) withTeam(ctx context.Context, userID, teamID uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithUserID(ctx, userID.String())
	return s.logg.WithTeamID(ctx, teamID.String())
}

func (s *service) withMembership(ctx context.Context, userID uuid.UUID, m *models.TeamMembership) context.Context {
	if s.logg == nil || m == nil {
		return ctx
	}
	ctx = s.withTeam(ctx, userID, m.TeamID)
	return s.logg.WithMembershipID(ctx, m.ID.String())
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func loadTeam(ctx context.Context, repo Repository, teamID uuid.UUID) (*models.Team, error) {
	team, err := repo.FindByID(ctx, teamID)
	if err != nil {
		return nil, storeError(err, "team", teamDetails(teamID))
	}
	return team, nil
}

// loadTeamMembership loads membershipID and requires it to belong to teamID.
func loadTeamMembership(ctx context.Context, repo memberships.Repository, teamID, membershipID uuid.UUID, noun string) (*models.TeamMembership, error) {
	m, err := repo.FindByID(ctx, membershipID)
	if err != nil {
		return nil, storeError(err, noun, membershipDetails(teamID, membershipID))
	}
	if m.TeamID != teamID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, noun+" does not belong to this team").
			WithDetails(membershipDetails(teamID, membershipID))
	}
	return m, nil
}

// lostTransition explains a conditional write that matched no row: the row
// was either deleted or moved out of PENDING by someone else.
func lostTransition(ctx context.Context, repo memberships.Repository, teamID, membershipID uuid.UUID) error {
	details := membershipDetails(teamID, membershipID)
	if _, err := repo.FindByID(ctx, membershipID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "application not found").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload membership")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "membership is not pending").WithDetails(details)
}

func storeError(err error, noun string, details map[string]any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, noun+" not found").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist "+noun)
}

// txError passes typed errors through and classifies the rest (begin or
// commit failures) as dependency errors.
func txError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "team transaction")
}

func errInvalidInviteCode() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "invalid invite code")
}

func teamDetails(teamID uuid.UUID) map[string]any {
	return map[string]any{"team_id": teamID.String()}
}

func membershipDetails(teamID, membershipID uuid.UUID) map[string]any {
	return map[string]any{
		"team_id":       teamID.String(),
		"membership_id": membershipID.String(),
	}
}
