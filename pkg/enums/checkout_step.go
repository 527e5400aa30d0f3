package enums

// CheckoutStep is a state of the checkout form machine.
type CheckoutStep string

const (
	CheckoutStepShipping  CheckoutStep = "shipping"
	CheckoutStepPayment   CheckoutStep = "payment"
	CheckoutStepSubmitted CheckoutStep = "submitted"
	CheckoutStepFailed    CheckoutStep = "failed"
)

func (s CheckoutStep) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed.
func (s CheckoutStep) IsTerminal() bool {
	return s == CheckoutStepSubmitted
}
