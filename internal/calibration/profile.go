package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"
)

const (
	// CurrentProfileVersion changes whenever the profile format does.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is created in the user's home directory.
	DefaultProfileFileName = ".picalc_calibration.json"
)

// Profile is a saved calibration together with the hardware it was
// measured on.
type Profile struct {
	CPUModel    string   `json:"cpu_model"`
	CPUFeatures []string `json:"cpu_features"`
	NumCPU      int      `json:"num_cpu"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`
	WordSize    int      `json:"word_size"`

	OptimalFFTThreshold int `json:"optimal_fft_threshold"`

	CalibratedAt      time.Time `json:"calibrated_at"`
	CalibrationDigits uint64    `json:"calibration_digits"`
	CalibrationTime   string    `json:"calibration_time"`
	// Method is "full", "quick" or "micro".
	Method string `json:"method"`

	ProfileVersion int `json:"profile_version"`
}

// GetDefaultProfilePath returns ~/.picalc_calibration.json, or the bare
// file name when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

func resolveProfilePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// NewProfile returns an empty profile fingerprinted for this machine.
func NewProfile() *Profile {
	return &Profile{
		CPUModel:       cpuModel(),
		CPUFeatures:    cpuFeatures(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       wordSize,
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

// LoadProfile reads a profile; an empty path selects the default location.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(resolveProfilePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile writes p as indented JSON; an empty path selects the default
// location.
func (p *Profile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(resolveProfilePath(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// IsValid reports whether p was measured on hardware equivalent to this
// machine and carries a usable threshold.
func (p *Profile) IsValid() bool {
	if p == nil || p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH || p.WordSize != wordSize {
		return false
	}
	if !slices.Equal(p.CPUFeatures, cpuFeatures()) {
		return false
	}
	return p.OptimalFFTThreshold > 0
}

// IsStale reports whether p is older than maxAge.
func (p *Profile) IsStale(maxAge time.Duration) bool {
	return p == nil || time.Since(p.CalibratedAt) > maxAge
}

func (p *Profile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf("Profile{CPU: %s [%s], FFT: %d bits, Method: %s, Calibrated: %s}",
		p.CPUModel, strings.Join(p.CPUFeatures, ","), p.OptimalFFTThreshold, p.Method,
		p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile returns the saved profile and true when it is valid
// for this machine, otherwise a fresh profile and false.
func LoadOrCreateProfile(path string) (*Profile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}

// ProfileExists reports whether a profile file exists at path.
func ProfileExists(path string) bool {
	_, err := os.Stat(resolveProfilePath(path))
	return err == nil
}
