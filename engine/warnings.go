/*
warnings.go - Non-fatal computation warnings

PURPOSE:
  The engine never fails: malformed input degrades to zero and missing
  configuration degrades to defaults. The one condition a caller must not
  silently swallow is a misconfiguration that leaves money unassigned, so
  such results carry a Warning the UI can surface as a badge.
*/
package engine

import "fmt"

type WarningCode string

const (
	// WarnZeroWeight: every weighted apartment ended up with weight 0
	// (all excluded, or zero persons/surface everywhere) while there was a
	// positive amount to redistribute. The amount stays unassigned.
	WarnZeroWeight WarningCode = "zero_weight_redistribution"
)

type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Code, w.Message) }

func zeroWeightWarning(unassigned Amount) Warning {
	return Warning{
		Code:    WarnZeroWeight,
		Message: fmt.Sprintf("no apartment carries weight; %s RON left unassigned", unassigned.Round2()),
	}
}
