package expense

import (
	"sort"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

// MemberBalance is the aggregated balance for one participant, keyed by user
// id or canonical phone, whichever identifies them in the group.
type MemberBalance struct {
	Key        string  `json:"key"`
	NetBalance float64 `json:"netBalance"` // positive = owed money, negative = owes money
	TotalPaid  float64 `json:"totalPaid"`
	TotalOwed  float64 `json:"totalOwed"`
}

// DebtEdge is one simplified debt from one participant to another.
type DebtEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// shareKey picks the identity used for balance bookkeeping.
func shareKey(userID, phone string) string {
	if userID != "" {
		return userID
	}
	return phone
}

// CalculateBalances aggregates every expense line in the group into
// per-participant net balances and a simplified debt matrix.
//
// For each line the payer contributed the full amount and every split target
// owes its share. Equal splits with no explicit targets divide the amount
// evenly among the group's members. net_balance = total_paid - total_owed;
// the debt matrix is reduced with greedy matching.
func CalculateBalances(group *models.ExpenseGroup) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	touch := func(key string) *MemberBalance {
		if b, ok := balances[key]; ok {
			return b
		}
		b := &MemberBalance{Key: key}
		balances[key] = b
		return b
	}

	for _, line := range group.Expenses {
		payer := shareKey(line.PaidByUserID, line.PaidByPhone)
		if payer == "" {
			continue
		}
		touch(payer).TotalPaid += line.Amount

		shares := splitShares(line, group.Members)
		for key, amount := range shares {
			touch(key).TotalOwed += amount
		}
	}

	for _, b := range balances {
		b.NetBalance = b.TotalPaid - b.TotalOwed
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].Key < memberBalances[j].Key
	})

	return memberBalances, simplifyDebts(memberBalances)
}

// splitShares expands one expense line into owed amounts per participant key.
func splitShares(line models.Expense, members []models.Member) map[string]float64 {
	shares := make(map[string]float64)

	if len(line.SplitBetween) > 0 {
		for _, s := range line.SplitBetween {
			key := shareKey(s.UserID, s.Phone)
			if key == "" {
				continue
			}
			shares[key] += s.Amount
		}
		return shares
	}

	if line.SplitType == models.SplitEqual && len(members) > 0 {
		per := line.Amount / float64(len(members))
		for _, m := range members {
			key := shareKey(m.UserID, m.Phone)
			if key == "" {
				continue
			}
			shares[key] += per
		}
	}
	return shares
}

// simplifyDebts matches debtors with creditors greedily so the number of
// transfers needed to settle the group stays small.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, b := range balances {
		if b.NetBalance > 0 {
			creditors = append(creditors, b)
		} else if b.NetBalance < 0 {
			debtors = append(debtors, b)
		}
	}

	debtorLeft := make(map[string]float64, len(debtors))
	creditorLeft := make(map[string]float64, len(creditors))
	for _, d := range debtors {
		debtorLeft[d.Key] = -d.NetBalance
	}
	for _, c := range creditors {
		creditorLeft[c.Key] = c.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].Key
		creditor := creditors[j].Key

		amount := debtorLeft[debtor]
		if creditorLeft[creditor] < amount {
			amount = creditorLeft[creditor]
		}

		if amount > 0.01 { // skip floating point noise
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		debtorLeft[debtor] -= amount
		creditorLeft[creditor] -= amount

		if debtorLeft[debtor] < 0.01 {
			i++
		}
		if creditorLeft[creditor] < 0.01 {
			j++
		}
	}

	return edges
}
