package persist

// ActionType represents the kind of asset action a job performs
type ActionType string

const (
	// ActionFreeze moves wallet assets into game custody
	ActionFreeze ActionType = "freeze"
	// ActionThaw releases in-game assets back to the wallet
	ActionThaw ActionType = "thaw"
	// ActionMintAndWithdraw mints off-chain asset records as NFTs and withdraws them
	ActionMintAndWithdraw ActionType = "mint-and-withdraw"
)

func (a ActionType) String() string {
	return string(a)
}

func (a ActionType) IsValid() bool {
	switch a {
	case ActionFreeze, ActionThaw, ActionMintAndWithdraw:
		return true
	default:
		return false
	}
}

// UsesUids reports whether the action addresses assets by internal uid
// instead of mint address
func (a ActionType) UsesUids() bool {
	return a == ActionMintAndWithdraw
}

// NotificationType returns the notification event type that resolves jobs of
// this action kind
func (a ActionType) NotificationType() NotificationType {
	return NotificationTypeHandleAssets
}

// ActionFor derives the action a homogeneous selection resolves to. Unminted
// records can only be minted and withdrawn; minted assets in game custody are
// thawed back to the wallet, wallet assets are frozen into the game.
func ActionFor(location Location, minted bool) ActionType {
	if !minted {
		return ActionMintAndWithdraw
	}
	if location == LocationInGame {
		return ActionThaw
	}
	return ActionFreeze
}

// NotificationType represents the type tag of a job notification event
type NotificationType string

const (
	// NotificationTypeHandleAssets resolves freeze/thaw/mint-and-withdraw jobs
	NotificationTypeHandleAssets NotificationType = "handleAssets"
	// NotificationTypeLevelUpEntities resolves level-up jobs
	NotificationTypeLevelUpEntities NotificationType = "levelUpEntities"
)

func (n NotificationType) String() string {
	return string(n)
}

// JobState represents the lifecycle state of a submitted job
type JobState string

const (
	// JobStateSubmitted means the signed batch was accepted and the job is running
	JobStateSubmitted JobState = "submitted"
	// JobStateSucceeded is terminal success
	JobStateSucceeded JobState = "succeeded"
	// JobStateFailed is terminal failure, reported by the backend
	JobStateFailed JobState = "failed"
	// JobStateTimedOut is terminal, reached when no notification arrived in time
	JobStateTimedOut JobState = "timed_out"
)

func (j JobState) String() string {
	return string(j)
}

// IsTerminal reports whether the state is final
func (j JobState) IsTerminal() bool {
	switch j {
	case JobStateSucceeded, JobStateFailed, JobStateTimedOut:
		return true
	default:
		return false
	}
}

// JobEventData is the payload of a job notification event
type JobEventData struct {
	ID           string `json:"id"`
	Success      *bool  `json:"success,omitempty"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	Details      string `json:"details,omitempty"`
	LevelUpCount int    `json:"levelUpCount,omitempty"`
}

// JobEvent is a single entry of a notification batch delivered by the backend
type JobEvent struct {
	Type NotificationType `json:"type"`
	Data JobEventData     `json:"data"`
}

// Succeeded reports whether the event signals success. A missing success
// flag with no error set counts as success.
func (e JobEvent) Succeeded() bool {
	if e.Data.Success != nil {
		return *e.Data.Success
	}
	return e.Data.Error == ""
}

// FailureMessage returns the human readable failure reason of the event
func (e JobEvent) FailureMessage() string {
	if e.Data.Error != "" {
		return e.Data.Error
	}
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return "job failed"
}
