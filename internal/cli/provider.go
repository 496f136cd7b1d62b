package cli

import apperrors "github.com/agbru/picalc/internal/errors"

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider feeds the current theme to apperrors.HandleCalculationError.
type CLIColorProvider struct{}

// Yellow returns the theme's warning color.
func (CLIColorProvider) Yellow() string { return ColorYellow() }

// Reset returns the theme's reset code.
func (CLIColorProvider) Reset() string { return ColorReset() }
