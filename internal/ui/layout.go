package ui

import "time"

// Screen chrome.
const (
	// chromeHeight is the header plus the command bar.
	chromeHeight = 2

	// LayoutCompactWidth is the threshold below which the command bar drops
	// its theme indicator.
	LayoutCompactWidth = 80

	// cardHeight is the rendered height of one result card including border.
	cardHeight = 5

	// pickerReserve is the number of submission screen lines not given to the
	// file picker (headline, box border, selection and status lines).
	pickerReserve = 9
)

// Timing constants.
const (
	// HintDuration is how long a transient status hint stays visible.
	HintDuration = 3 * time.Second
)
