package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chiragjethva03/sarvam-backend/internal/expense"
	"github.com/chiragjethva03/sarvam-backend/internal/metrics"
	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/phone"
	"github.com/chiragjethva03/sarvam-backend/internal/storage"
)

// GroupService owns the expense-group workflows: creation with participant
// resolution and back-reference fan-out, lookup, deletion, and balances.
type GroupService struct {
	store     storage.Store
	collector *metrics.Collector
}

// NewGroupService creates a new GroupService with the given storage backend.
// The collector may be nil.
func NewGroupService(store storage.Store, collector *metrics.Collector) *GroupService {
	return &GroupService{store: store, collector: collector}
}

// CreateGroupWithExpense creates a group together with its first expense
// lines; a group without any expense line is rejected. The creator is always
// a participant. Members given only by phone are
// matched against registered users in one batched lookup; unmatched phones
// stay in the member list but get no back-reference.
//
// The aggregate is persisted before the back-references are added, so a
// partial failure leaves a readable group with incomplete references rather
// than dangling references to a missing group.
func (s *GroupService) CreateGroupWithExpense(ctx context.Context, creatorID string, group *models.ExpenseGroup) (*models.ExpenseGroup, error) {
	slog.Info("CreateGroupWithExpense request received",
		"creator_id", creatorID,
		"name", group.GroupName,
		"members_count", len(group.Members),
		"expenses_count", len(group.Expenses),
	)

	if err := validateGroup(group); err != nil {
		return nil, err
	}

	group.CreatedBy = creatorID
	group.Normalize()
	ensureCreatorMembership(group, creatorID)

	// Stamp resolved user ids onto phone-only members first so the stored
	// aggregate carries them and the resolver sees them as explicit ids.
	stampResolvedMembers(ctx, s.store, group)

	participants, err := expense.ResolveParticipants(ctx, s.store, creatorID, group.Members)
	if err != nil {
		slog.Error("CreateGroupWithExpense failed to resolve participants", "error", err)
		return nil, err
	}

	groupID, err := expense.GenerateGroupID(ctx, s.store)
	if err != nil {
		slog.Error("CreateGroupWithExpense failed to generate id", "error", err)
		return nil, err
	}
	group.GroupID = groupID

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroupWithExpense failed to persist", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	userIDs := make([]string, 0, len(participants))
	for id := range participants {
		userIDs = append(userIDs, id)
	}
	if err := s.store.AddGroupToUsers(ctx, userIDs, groupID); err != nil {
		// The group exists; references can be repaired by re-adding.
		slog.Error("CreateGroupWithExpense failed to add back-references",
			"group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to link members to group: %w", err)
	}

	slog.Info("Group created", "group_id", groupID, "participants", len(userIDs))
	if s.collector != nil {
		s.collector.RecordGroupCreated()
	}

	return group, nil
}

// GetGroupDetail retrieves the full group aggregate.
func (s *GroupService) GetGroupDetail(ctx context.Context, groupID string) (*models.ExpenseGroup, error) {
	slog.Info("GetGroupDetail request received", "group_id", groupID)

	if groupID == "" {
		return nil, models.Validationf("group id is required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupDetail failed", "group_id", groupID, "error", err)
		return nil, err
	}

	return group, nil
}

// FindGroupsForParticipant returns every group whose member list contains the
// given user id or phone number, most recently updated first. At least one of
// the two must be provided.
func (s *GroupService) FindGroupsForParticipant(ctx context.Context, userID, rawPhone string) ([]*models.ExpenseGroup, error) {
	slog.Info("FindGroupsForParticipant request received", "user_id", userID)

	canonical := phone.Canonical(rawPhone)
	if userID == "" && canonical == "" {
		return nil, models.Validationf("user id or phone is required")
	}

	groups, err := s.store.FindGroupsByMember(ctx, userID, canonical)
	if err != nil {
		slog.Error("FindGroupsForParticipant failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}

	slog.Info("FindGroupsForParticipant successful", "user_id", userID, "count", len(groups))

	return groups, nil
}

// DeleteGroup removes a group and retracts its back-references. The aggregate
// is deleted first; retraction failures are logged but do not fail the call,
// since the references point at a group that no longer exists and a retry of
// the retraction is idempotent.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	slog.Info("DeleteGroup request received", "group_id", groupID)

	if groupID == "" {
		return models.Validationf("group id is required")
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}

	if err := s.store.RemoveGroupFromUsers(ctx, groupID); err != nil {
		slog.Error("DeleteGroup could not retract back-references",
			"group_id", groupID, "error", err)
	}

	slog.Info("Group deleted", "group_id", groupID)

	return nil
}

// GroupBalances calculates per-member balances and the simplified debt matrix
// across all expense lines of a group.
func (s *GroupService) GroupBalances(ctx context.Context, groupID string) ([]expense.MemberBalance, []expense.DebtEdge, error) {
	slog.Info("GroupBalances request received", "group_id", groupID)

	group, err := s.GetGroupDetail(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	balances, debts := expense.CalculateBalances(group)

	slog.Info("GroupBalances successful",
		"group_id", groupID,
		"members_count", len(balances),
		"debts_count", len(debts),
	)

	return balances, debts, nil
}

func validateGroup(group *models.ExpenseGroup) error {
	if group.GroupName == "" {
		return models.Validationf("group name is required")
	}
	if len(group.Expenses) == 0 {
		return models.Validationf("an expense line is required")
	}
	for i, line := range group.Expenses {
		if line.Title == "" {
			return models.Validationf("expense %d: title is required", i)
		}
		if line.Amount < 0 {
			return models.Validationf("expense %d: amount must not be negative", i)
		}
		if !line.Category.Valid() {
			return models.Validationf("expense %d: unknown category %q", i, line.Category)
		}
		if !line.SplitType.Valid() {
			return models.Validationf("expense %d: unknown split type %q", i, line.SplitType)
		}
	}
	return nil
}

// ensureCreatorMembership adds the creator to the member list when absent.
func ensureCreatorMembership(group *models.ExpenseGroup, creatorID string) {
	for _, m := range group.Members {
		if m.UserID == creatorID {
			return
		}
	}
	group.Members = append([]models.Member{{UserID: creatorID}}, group.Members...)
}

// stampResolvedMembers fills in the user id of phone-only members that match
// a registered user. Lookup failures are ignored; the resolver performs the
// authoritative lookup afterwards and will surface the error.
func stampResolvedMembers(ctx context.Context, store storage.UserStore, group *models.ExpenseGroup) {
	var phones []string
	for _, m := range group.Members {
		if m.UserID == "" && m.Phone != "" {
			phones = append(phones, m.Phone)
		}
	}
	if len(phones) == 0 {
		return
	}

	matched, err := store.UsersByPhones(ctx, phones)
	if err != nil {
		return
	}
	for i := range group.Members {
		m := &group.Members[i]
		if m.UserID == "" {
			if u, ok := matched[m.Phone]; ok {
				m.UserID = u.ID
				if m.Name == "" {
					m.Name = u.FullName
				}
			}
		}
	}
}
