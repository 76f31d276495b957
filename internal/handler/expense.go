package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chiragjethva03/sarvam-backend/internal/middleware"
	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/service"
)

// ExpenseHandler serves the /api/expenses routes.
type ExpenseHandler struct {
	groups *service.GroupService
}

func NewExpenseHandler(groups *service.GroupService) *ExpenseHandler {
	return &ExpenseHandler{groups: groups}
}

// createGroupRequest is the group creation body. Clients send the first
// expense as a single "expense" object; a plural "expenses" array is also
// accepted via the embedded aggregate.
type createGroupRequest struct {
	models.ExpenseGroup
	Expense *models.Expense `json:"expense"`
}

func (h *ExpenseHandler) CreateGroupWithExpense(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group := req.ExpenseGroup
	if req.Expense != nil {
		group.Expenses = append(group.Expenses, *req.Expense)
	}

	created, err := h.groups.CreateGroupWithExpense(r.Context(), middleware.GetUserID(r.Context()), &group)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "group created",
		"group":   created,
	})
}

func (h *ExpenseHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = middleware.GetUserID(r.Context())
	}
	mobile := r.URL.Query().Get("mobile")

	groups, err := h.groups.FindGroupsForParticipant(r.Context(), userID, mobile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"groups":  groups,
	})
}

func (h *ExpenseHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroupDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"group":   group,
	})
}

func (h *ExpenseHandler) GetGroupBalances(w http.ResponseWriter, r *http.Request) {
	balances, debts, err := h.groups.GroupBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"balances":   balances,
		"debtMatrix": debts,
	})
}

func (h *ExpenseHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	// Return the deleted aggregate so clients can show an undo summary.
	group, err := h.groups.GetGroupDetail(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.groups.DeleteGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "group deleted",
		"group":   group,
	})
}
