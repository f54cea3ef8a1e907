// Package workflow decides, for an order observed by the client, which
// staff action is legal next and which roles may request it. It never
// changes an order: the backend owns the transition and the client
// re-reads the status after every action call.
package workflow

import "storefront/internal/domain/entities"

type Action int

const (
	ActionNone Action = iota
	ActionAssignCook
	ActionMarkPacked
	ActionAssignDelivery
	ActionMarkDelivered
)

// Actions lists every action that advances an order.
var Actions = []Action{ActionAssignCook, ActionMarkPacked, ActionAssignDelivery, ActionMarkDelivered}

func (a Action) String() string {
	switch a {
	case ActionAssignCook:
		return "ASSIGN_COOK"
	case ActionMarkPacked:
		return "MARK_PACKED"
	case ActionAssignDelivery:
		return "ASSIGN_DELIVERY"
	case ActionMarkDelivered:
		return "MARK_DELIVERED"
	case ActionNone:
		return "NONE"
	}
	return "NONE"
}

// Label is the button caption shown to staff.
func (a Action) Label() string {
	switch a {
	case ActionAssignCook:
		return "Assign cook"
	case ActionMarkPacked:
		return "Mark packed"
	case ActionAssignDelivery:
		return "Assign courier"
	case ActionMarkDelivered:
		return "Mark delivered"
	case ActionNone:
		return ""
	}
	return ""
}

// NextAction returns the action that moves an order out of status, or
// ActionNone for terminal and unrecognized statuses.
func NextAction(status entities.Status) Action {
	switch status {
	case entities.StatusPending:
		return ActionAssignCook
	case entities.StatusCooking:
		return ActionMarkPacked
	case entities.StatusPacking:
		return ActionAssignDelivery
	case entities.StatusOutForDelivery:
		return ActionMarkDelivered
	case entities.StatusDelivered, entities.StatusCancelled, entities.StatusUnknown:
		return ActionNone
	}
	return ActionNone
}

// Target is the status an order reaches once the backend accepts a.
func Target(a Action) entities.Status {
	switch a {
	case ActionAssignCook:
		return entities.StatusCooking
	case ActionMarkPacked:
		return entities.StatusPacking
	case ActionAssignDelivery:
		return entities.StatusOutForDelivery
	case ActionMarkDelivered:
		return entities.StatusDelivered
	case ActionNone:
		return entities.StatusUnknown
	}
	return entities.StatusUnknown
}

// AuthorizedRoles returns the roles allowed to request a. ADMIN is always
// included.
func AuthorizedRoles(a Action) []entities.Role {
	switch a {
	case ActionAssignCook:
		return []entities.Role{entities.RoleAdmin, entities.RoleCook}
	case ActionMarkPacked:
		return []entities.Role{entities.RoleAdmin, entities.RolePacker}
	case ActionAssignDelivery, ActionMarkDelivered:
		return []entities.Role{entities.RoleAdmin, entities.RoleCourier}
	case ActionNone:
		return nil
	}
	return nil
}

// CanPerform reports whether role may request a. The answer only drives
// what the client offers; the backend repeats the check on every call.
func CanPerform(a Action, role entities.Role) bool {
	for _, r := range AuthorizedRoles(a) {
		if r == role {
			return true
		}
	}
	return false
}

// CanTransition reports whether the backend may move an order from one
// status to another.
func CanTransition(from, to entities.Status) bool {
	if from.IsTerminal() || from == entities.StatusUnknown {
		return false
	}
	if to == entities.StatusCancelled {
		return true
	}
	return Target(NextAction(from)) == to
}

// CanCancel reports whether an order in status may still be cancelled.
func CanCancel(status entities.Status) bool {
	return CanTransition(status, entities.StatusCancelled)
}

// ProgressSteps are the statuses drawn as steps of the tracking bar.
var ProgressSteps = []entities.Status{
	entities.StatusPending,
	entities.StatusCooking,
	entities.StatusPacking,
	entities.StatusOutForDelivery,
	entities.StatusDelivered,
}

// Progress returns the ordinal of status among ProgressSteps. Unknown
// statuses sit at step 0 so the tracking view always has something to
// draw. ok is false for CANCELLED, which is shown as a banner instead.
func Progress(status entities.Status) (step int, ok bool) {
	if status == entities.StatusCancelled {
		return 0, false
	}
	for i, s := range ProgressSteps {
		if s == status {
			return i, true
		}
	}
	return 0, true
}

// StatusLabel is the customer-facing caption of a status.
func StatusLabel(status entities.Status) string {
	switch status {
	case entities.StatusPending:
		return "Order received"
	case entities.StatusCooking:
		return "In the kitchen"
	case entities.StatusPacking:
		return "Packing"
	case entities.StatusOutForDelivery:
		return "On the way"
	case entities.StatusDelivered:
		return "Delivered"
	case entities.StatusCancelled:
		return "Cancelled"
	case entities.StatusUnknown:
		return "Unknown"
	}
	return "Unknown"
}
