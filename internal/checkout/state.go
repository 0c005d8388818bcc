package checkout

import (
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/enums"
)

// Event drives Transition.
type Event string

const (
	EventOpen            Event = "open"
	EventClose           Event = "close"
	EventValidated       Event = "validated"
	EventBackToReview    Event = "back_to_review"
	EventBeginEditPhone  Event = "begin_edit_phone"
	EventEndEditPhone    Event = "end_edit_phone"
	EventSubmit          Event = "submit"
	EventSubmitFailed    Event = "submit_failed"
	EventSubmitSucceeded Event = "submit_succeeded"
	EventCartEmptied     Event = "cart_emptied"
	EventReset           Event = "reset"
)

// Transition is the only place checkout state changes. It returns the next session or a
// STATE_CONFLICT error; field data other than the phone sub-flag is carried over untouched.
func Transition(s Session, e Event) (Session, error) {
	next := s
	switch e {
	case EventOpen:
		switch s.State {
		case enums.CheckoutStateBrowsing:
			next.State = enums.CheckoutStateReviewing
		case enums.CheckoutStateReviewing, enums.CheckoutStateAwaitingPayment:
		default:
			return s, conflict(s, e)
		}
	case EventClose:
		switch s.State {
		case enums.CheckoutStateBrowsing:
		case enums.CheckoutStateReviewing, enums.CheckoutStateAwaitingPayment:
			next.State = enums.CheckoutStateBrowsing
			next.EditingPhone, next.PhoneDraft = false, ""
		default:
			return s, conflict(s, e)
		}
	case EventValidated:
		if s.State != enums.CheckoutStateReviewing {
			return s, conflict(s, e)
		}
		next.State = enums.CheckoutStateAwaitingPayment
	case EventBackToReview:
		if s.State != enums.CheckoutStateAwaitingPayment {
			return s, conflict(s, e)
		}
		next.State = enums.CheckoutStateReviewing
		next.EditingPhone, next.PhoneDraft = false, ""
	case EventBeginEditPhone:
		if s.State != enums.CheckoutStateAwaitingPayment || s.EditingPhone {
			return s, conflict(s, e)
		}
		next.EditingPhone = true
	case EventEndEditPhone:
		if s.State != enums.CheckoutStateAwaitingPayment || !s.EditingPhone {
			return s, conflict(s, e)
		}
		next.EditingPhone, next.PhoneDraft = false, ""
	case EventSubmit:
		if s.State != enums.CheckoutStateAwaitingPayment || s.EditingPhone {
			return s, conflict(s, e)
		}
		next.State = enums.CheckoutStateSubmitting
	case EventSubmitFailed:
		if s.State != enums.CheckoutStateSubmitting {
			return s, conflict(s, e)
		}
		next.State = enums.CheckoutStateAwaitingPayment
	case EventSubmitSucceeded:
		if s.State != enums.CheckoutStateSubmitting {
			return s, conflict(s, e)
		}
		next.State = enums.CheckoutStateSubmitted
	case EventCartEmptied:
		if s.State == enums.CheckoutStateAwaitingPayment {
			next.State = enums.CheckoutStateReviewing
			next.EditingPhone, next.PhoneDraft = false, ""
		}
	case EventReset:
		if s.State == enums.CheckoutStateSubmitting {
			return s, conflict(s, e)
		}
		fresh := NewSession()
		fresh.Form = s.Form
		if s.State == enums.CheckoutStateSubmitted {
			fresh.Form = NewSession().Form
		}
		return fresh, nil
	default:
		return s, pkgerrors.New(pkgerrors.CodeInternal, "unknown checkout event "+string(e))
	}
	return next, nil
}

func conflict(s Session, e Event) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout cannot "+string(e)+" while "+s.State.String()).
		WithDetails(map[string]any{
			"state":         s.State,
			"editing_phone": s.EditingPhone,
			"event":         e,
		})
}
