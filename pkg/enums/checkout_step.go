package enums

// CheckoutStep is the cursor of the checkout session state machine.
type CheckoutStep string

const (
	CheckoutStepNone    CheckoutStep = "none"
	CheckoutStepAddress CheckoutStep = "address"
	CheckoutStepPayment CheckoutStep = "payment"
	CheckoutStepReview  CheckoutStep = "review"
	CheckoutStepSuccess CheckoutStep = "success"
)

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	switch c {
	case CheckoutStepNone, CheckoutStepAddress, CheckoutStepPayment, CheckoutStepReview, CheckoutStepSuccess:
		return true
	default:
		return false
	}
}
