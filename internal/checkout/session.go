package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/vitrine-backend/pkg/enums"
	"github.com/angelmondragon/vitrine-backend/pkg/types"
)

// Record names within a shopper scope.
const (
	SessionKey    = "choco-checkout"
	ProcessingKey = "choco-checkout-processing"
)

// Form is the delivery form filled in during checkout.
type Form struct {
	Name           string               `json:"name"`
	Location       string               `json:"location"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	WhatsApp       string               `json:"whatsapp"`
	CPF            string               `json:"cpf"`
}

func (f Form) Customer() types.Customer {
	return types.Customer{
		Name:           f.Name,
		Location:       f.Location,
		DeliveryMethod: f.DeliveryMethod,
		WhatsApp:       f.WhatsApp,
		CPF:            f.CPF,
	}
}

// FormPatch carries the fields a form update touches; nil fields are left alone.
type FormPatch struct {
	Name           *string `json:"name"`
	Location       *string `json:"location"`
	DeliveryMethod *string `json:"delivery_method"`
	WhatsApp       *string `json:"whatsapp"`
	CPF            *string `json:"cpf"`
}

// Session is the checkout state of one shopper in one storefront.
type Session struct {
	State        enums.CheckoutState `json:"state"`
	EditingPhone bool                `json:"editing_phone"`
	PhoneDraft   string              `json:"phone_draft,omitempty"`
	Form         Form                `json:"form"`
	LastOrderID  string              `json:"last_order_id,omitempty"`
}

func NewSession() Session {
	return Session{
		State: enums.CheckoutStateBrowsing,
		Form:  Form{DeliveryMethod: enums.DeliveryMethodPickup},
	}
}

func decodeSession(raw string) (Session, error) {
	s := NewSession()
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return NewSession(), fmt.Errorf("decode checkout session: %w", err)
	}
	if !s.State.IsValid() {
		return NewSession(), fmt.Errorf("decode checkout session: unknown state %q", s.State)
	}
	if s.State != enums.CheckoutStateAwaitingPayment {
		s.EditingPhone, s.PhoneDraft = false, ""
	}
	return s, nil
}

func encodeSession(s Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode checkout session: %w", err)
	}
	return string(raw), nil
}
