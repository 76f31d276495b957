package models

import "github.com/chiragjethva03/sarvam-backend/internal/phone"

// ExpenseCategory classifies an expense line.
type ExpenseCategory string

const (
	CategoryTravel        ExpenseCategory = "travel"
	CategoryFood          ExpenseCategory = "food"
	CategoryEntertainment ExpenseCategory = "entertainment"
	CategoryShopping      ExpenseCategory = "shopping"
	CategoryOthers        ExpenseCategory = "others"
)

// Valid reports whether c is one of the known categories.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryTravel, CategoryFood, CategoryEntertainment, CategoryShopping, CategoryOthers:
		return true
	}
	return false
}

// SplitType describes how an expense is divided among its targets.
type SplitType string

const (
	SplitEqual   SplitType = "equal"
	SplitUnequal SplitType = "unequal"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	return t == SplitEqual || t == SplitUnequal
}

// Member is one entry in a group's membership list: either a resolved
// user-id reference or an unresolved phone+name reference for a participant
// who has not registered yet.
type Member struct {
	// UserID references a registered user, empty for phone-only members.
	UserID string `json:"userId,omitempty"`

	// Phone is the member's phone number in canonical form. May be set
	// alongside UserID or stand alone for unregistered members.
	Phone string `json:"phone,omitempty"`

	// Name is the display name supplied for phone-only members.
	Name string `json:"name,omitempty"`

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64 `json:"joinedAt,omitempty"`
}

// SplitShare is one target of an expense split: a participant (by user id or
// phone) and their share of the amount.
type SplitShare struct {
	UserID string  `json:"userId,omitempty"`
	Phone  string  `json:"phone,omitempty"`
	Amount float64 `json:"amount"`
}

// Expense is a single expense line within a group.
type Expense struct {
	// ID is the unique identifier for the line (UUID format).
	ID string `json:"id"`

	// Title describes the expense.
	Title string `json:"title"`

	// Amount is the total amount of the expense, non-negative.
	Amount float64 `json:"amount"`

	// Category is one of the fixed expense categories.
	Category ExpenseCategory `json:"category"`

	// PaidByUserID / PaidByPhone identify the payer. Exactly one is expected.
	PaidByUserID string `json:"paidByUserId,omitempty"`
	PaidByPhone  string `json:"paidByPhone,omitempty"`

	// SplitType is equal or unequal.
	SplitType SplitType `json:"splitType"`

	// SplitBetween lists the share targets.
	SplitBetween []SplitShare `json:"splitBetween"`

	// Date is the Unix timestamp of the expense.
	Date int64 `json:"date"`
}

// ExpenseGroup is the persisted aggregate for an expense-splitting group:
// its membership list and its embedded expense lines.
type ExpenseGroup struct {
	// GroupID is the human-readable unique identifier ("SarvamEx" + 4 digits),
	// assigned at creation and never reassigned.
	GroupID string `json:"groupId"`

	// GroupName is the display name, required.
	GroupName string `json:"groupName"`

	// CreatedBy is the creator's user ID, required and immutable.
	CreatedBy string `json:"createdBy"`

	// Members is the ordered membership list.
	Members []Member `json:"members"`

	// Expenses is the ordered, append-only list of expense lines.
	Expenses []Expense `json:"expenses"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64 `json:"updatedAt"`
}

// Normalize rewrites every phone number in the aggregate to its canonical
// form. Called before persistence so members, payers, and split targets all
// share the same representation.
func (g *ExpenseGroup) Normalize() {
	for i := range g.Members {
		g.Members[i].Phone = phone.Canonical(g.Members[i].Phone)
	}
	for i := range g.Expenses {
		e := &g.Expenses[i]
		e.PaidByPhone = phone.Canonical(e.PaidByPhone)
		for j := range e.SplitBetween {
			e.SplitBetween[j].Phone = phone.Canonical(e.SplitBetween[j].Phone)
		}
	}
}
