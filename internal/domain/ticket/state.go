package ticket

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionDisburse Action = "disburse"
	ActionRenew    Action = "renew"
	ActionRedeem   Action = "redeem"
	ActionForfeit  Action = "forfeit"
	ActionCancel   Action = "cancel"
)

type transition struct {
	from         []State
	to           State
	precondition string
}

var transitions = map[Action]transition{
	ActionDisburse: {from: []State{StateDraft}, to: StatePledged, precondition: "only draft tickets can be disbursed"},
	ActionRenew:    {from: ActiveStates, to: StateRenewed, precondition: "only active tickets can be renewed"},
	ActionRedeem:   {from: ActiveStates, to: StateRedeemed, precondition: "only active tickets can be redeemed"},
	ActionForfeit:  {from: ActiveStates, to: StateForfeited, precondition: "only active tickets can be forfeited"},
	ActionCancel:   {from: []State{StateDraft}, to: StateCancelled, precondition: "only draft tickets can be cancelled"},
}

// Next returns the state reached from `from` by `a`, or ErrInvalidTransition naming the
// precondition that failed.
func Next(from State, a Action) (State, error) {
	tr, ok := transitions[a]
	if !ok {
		return from, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
	for _, s := range tr.from {
		if s == from {
			return tr.to, nil
		}
	}
	return from, fmt.Errorf("%w: %s (ticket is %s)", ErrInvalidTransition, tr.precondition, from)
}

// Guard checks every precondition of applying a to t as of today, including the
// collateral and maturity rules that the state table alone does not express.
func Guard(t *Ticket, a Action, today time.Time) (State, error) {
	to, err := Next(t.State, a)
	if err != nil {
		return to, err
	}
	switch a {
	case ActionDisburse:
		if len(t.Lines) == 0 {
			return t.State, invalid(ErrNoItems, "ticket %s has no lines", t.Ref())
		}
	case ActionForfeit:
		ind := IndicatorsOf(t, today)
		if !ind.IsOverdue {
			return t.State, fmt.Errorf("%w: cannot forfeit ticket that is not overdue", ErrInvalidTransition)
		}
		if ind.IsInGrace {
			return t.State, fmt.Errorf("%w: cannot forfeit during grace period (grace ends %s)",
				ErrInvalidTransition, t.DateGraceEnd.Format(time.DateOnly))
		}
	}
	return to, nil
}

// Transition moves t into the next state and stamps the action date.
func Transition(t *Ticket, a Action, now time.Time) error {
	to, err := Guard(t, a, now)
	if err != nil {
		return err
	}
	today := DateOf(now)
	switch a {
	case ActionDisburse:
		t.DatePledged = &today
		disbursedAt := now.UTC()
		t.DisbursementDate = &disbursedAt
	case ActionRenew:
		t.DateRenewed = &today
	case ActionRedeem:
		t.DateRedeemed = &today
	case ActionForfeit:
		t.DateForfeited = &today
	}
	t.State = to
	t.StateUpdatedAt = now.UTC()
	return nil
}

// AllowedActions lists the actions whose state precondition currently holds.
func AllowedActions(s State) []Action {
	var out []Action
	for _, a := range []Action{ActionDisburse, ActionRenew, ActionRedeem, ActionForfeit, ActionCancel} {
		if _, err := Next(s, a); err == nil {
			out = append(out, a)
		}
	}
	return out
}
