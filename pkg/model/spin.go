package model

type SpinVerificationStatus string

const (
	SpinCorrect   SpinVerificationStatus = "CORRECT_SPIN"
	SpinIncorrect SpinVerificationStatus = "INCORRECT_SPIN"
)

type SpinState string

const (
	SpinDefined SpinState = "DEFINED"
	SpinLocked  SpinState = "LOCKED"
)

// SpinStatus reports the lockout state of the vehicle's security PIN.
type SpinStatus struct {
	State             SpinState `json:"state"`
	RemainingTries    int       `json:"remainingTries,omitempty"`
	LockedWaitingTime int       `json:"lockedWaitingTime,omitempty"`
}

// VerifySpinReport is the response of the spin verification endpoint.
type VerifySpinReport struct {
	VerificationStatus SpinVerificationStatus `json:"verificationStatus"`
	SpinStatus         *SpinStatus            `json:"spinStatus,omitempty"`
}
