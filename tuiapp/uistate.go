package tuiapp

type uiState int

const (
	stateEntering uiState = iota     // coordinate input focused, keys type into the field
	stateNudging  uiState = iota + 1 // input blurred, arrow keys drag the pin
)
