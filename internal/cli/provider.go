package cli

import (
	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/ui"
)

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider feeds the active theme to apperrors.HandleCalculationError.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
