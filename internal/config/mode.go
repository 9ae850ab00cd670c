package config

import (
	"fmt"
	"strings"
)

// Mode selects what triggers a sync cycle.
type Mode int

const (
	// ModeManual syncs when the trigger key is pressed.
	ModeManual Mode = iota
	// ModeAuto syncs on every relevant file-system change.
	ModeAuto
	// ModeSingle syncs once and exits.
	ModeSingle
)

// Modes lists every mode in menu order; the index is the numeric code.
var Modes = []Mode{ModeManual, ModeAuto, ModeSingle}

// String returns the string representation of the Mode
func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual-save"
	case ModeAuto:
		return "auto-save"
	case ModeSingle:
		return "single"
	default:
		return "unknown"
	}
}

// Description is the label shown in the interactive mode menu.
func (m Mode) Description() string {
	switch m {
	case ModeManual:
		return "manual save"
	case ModeAuto:
		return "auto save"
	case ModeSingle:
		return "single upload"
	default:
		return "unknown"
	}
}

// ParseMode accepts a mode name or its numeric code.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "manual", "manual-save", "manual_save", "keypress":
		return ModeManual, nil
	case "1", "auto", "auto-save", "auto_save", "watch", "true":
		return ModeAuto, nil
	case "2", "single", "once", "single-shot":
		return ModeSingle, nil
	default:
		return ModeManual, fmt.Errorf("unknown mode %q (expected manual-save, auto-save or single)", value)
	}
}
