package persist

import (
	"fmt"
	"time"
)

// ErrNoWallet is returned when an action is attempted without a connected wallet
type ErrNoWallet struct{}

// ErrUnauthorized is returned when no usable bearer token is available
type ErrUnauthorized struct {
	Reason string
}

// ErrMixedType is returned when a selection spans more than one asset type
type ErrMixedType struct {
	Types []AssetType
}

// ErrTypeMismatch is returned when a selection's type differs from the action's type
type ErrTypeMismatch struct {
	Want AssetType
	Got  AssetType
}

// ErrMixedLocation is returned when a selection spans both custody locations
type ErrMixedLocation struct{}

// ErrLocationMismatch is returned when a selection's location differs from the active tab
type ErrLocationMismatch struct {
	Want Location
	Got  Location
}

// ErrMixedMintStatus is returned when a selection mixes minted and unminted assets
type ErrMixedMintStatus struct{}

// ErrMintStatusMismatch is returned when a selection's mint status differs from the filter
type ErrMintStatusMismatch struct {
	Want MintStatus
}

// ErrCountMismatch is returned when the selection size disagrees with the slider value
type ErrCountMismatch struct {
	Selected int
	Slider   int
}

// ErrEmptySelection is returned when an action is attempted with nothing selected
type ErrEmptySelection struct{}

// ErrInvalidServerResponse is returned when the worker API responds with an
// unexpected shape
type ErrInvalidServerResponse struct {
	Endpoint string
	Reason   string
}

// ErrSigningFailed is returned when signing a single transaction of a batch
// fails. The whole batch is discarded.
type ErrSigningFailed struct {
	Mint AssetID
	Err  error
}

// ErrNoJobID is returned when the finalize endpoint accepted the batch but
// did not return a job id
type ErrNoJobID struct {
	Endpoint string
}

// ErrJobInProgress is returned when a new action is attempted while a job is
// still awaiting resolution
type ErrJobInProgress struct {
	JobID string
}

// ErrJobFailed is returned when the backend reports a terminal job failure
type ErrJobFailed struct {
	JobID   string
	Message string
}

// ErrJobTimeout is returned when no matching notification arrived within the
// configured window. The backend job is not cancelled.
type ErrJobTimeout struct {
	JobID  string
	Window time.Duration
}

func (e ErrNoWallet) Error() string {
	return "no wallet connected"
}

func (e ErrUnauthorized) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized: missing bearer token"
}

func (e ErrMixedType) Error() string {
	return fmt.Sprintf("selection mixes asset types: %v", e.Types)
}

func (e ErrTypeMismatch) Error() string {
	return fmt.Sprintf("selection type %s does not match action type %s", e.Got, e.Want)
}

func (e ErrMixedLocation) Error() string {
	return "selection mixes wallet and in-game assets"
}

func (e ErrLocationMismatch) Error() string {
	return fmt.Sprintf("selection location %s does not match active tab %s", e.Got, e.Want)
}

func (e ErrMixedMintStatus) Error() string {
	return "selection mixes minted and unminted assets"
}

func (e ErrMintStatusMismatch) Error() string {
	return fmt.Sprintf("selection does not match mint status filter %s", e.Want)
}

func (e ErrCountMismatch) Error() string {
	return fmt.Sprintf("selected %d assets but slider is at %d", e.Selected, e.Slider)
}

func (e ErrEmptySelection) Error() string {
	return "no assets selected"
}

func (e ErrInvalidServerResponse) Error() string {
	return fmt.Sprintf("invalid response from %s: %s", e.Endpoint, e.Reason)
}

func (e ErrSigningFailed) Error() string {
	return fmt.Sprintf("failed to sign transaction for %s: %s", e.Mint, e.Err)
}

func (e ErrSigningFailed) Unwrap() error {
	return e.Err
}

func (e ErrNoJobID) Error() string {
	return fmt.Sprintf("response from %s contains no job id", e.Endpoint)
}

func (e ErrJobInProgress) Error() string {
	return fmt.Sprintf("job %s is still in progress", e.JobID)
}

func (e ErrJobFailed) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

func (e ErrJobTimeout) Error() string {
	return fmt.Sprintf("job %s timed out after %s", e.JobID, e.Window)
}
