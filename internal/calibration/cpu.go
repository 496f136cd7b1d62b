package calibration

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// cpuFeatures lists the instruction-set extensions that change the speed of
// big integer multiplication. The list is part of the profile fingerprint.
func cpuFeatures() []string {
	var features []string
	add := func(name string, ok bool) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add("adx", cpu.X86.HasADX)
		add("bmi2", cpu.X86.HasBMI2)
		add("avx2", cpu.X86.HasAVX2)
		add("avx512f", cpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("atomics", cpu.ARM64.HasATOMICS)
		add("sve", cpu.ARM64.HasSVE)
	}
	return features
}

// cpuModel is a coarse machine identifier.
func cpuModel() string {
	return fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU())
}
