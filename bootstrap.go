package noob

import (
	"os/exec"
	"runtime"
	"strings"
)

// DetectToolchain picks a Toolchain for the running platform the same
// way original_source/compiler.py's module-level detection block does:
// one hardcoded toolchain per OS, except on Windows where it shells out
// to cl.exe and parses its banner to tell the compiler's bitness and
// Visual Studio year apart (§4.9, "Bootstrap").
func DetectToolchain() (*Toolchain, error) {
	switch runtime.GOOS {
	case "windows":
		return detectMSVC()
	case "darwin":
		return ClangDarwinToolchain(), nil
	case "linux":
		return GCCToolchain(), nil
	default:
		return nil, newToolchainInitError("bootstrap", "platform \""+runtime.GOOS+"\" unsupported")
	}
}

func detectMSVC() (*Toolchain, error) {
	out, _ := exec.Command("cl.exe").CombinedOutput()
	return parseMSVCBanner(string(out))
}

// parseMSVCBanner sniffs a cl.exe banner for architecture and Visual
// Studio year, mirroring original_source/compiler.py's substring
// matching against the banner text, split out from detectMSVC so the
// matching rules are testable without a real cl.exe on PATH.
func parseMSVCBanner(banner string) (*Toolchain, error) {
	arch := "x86"
	switch {
	case strings.Contains(banner, "x64"):
		arch = "x64"
	case strings.Contains(banner, "80x86"), strings.Contains(banner, "x86"):
		arch = "x86"
	default:
		return nil, newToolchainInitError("bootstrap", "could not detect cl.exe bitness from its banner")
	}

	vcvarsall := "C:/Program Files (x86)/Microsoft Visual Studio"
	switch {
	case strings.Contains(banner, "Version 15.00"):
		vcvarsall += " 9.0/VC/vcvarsall.bat"
	case strings.Contains(banner, "Version 17.00"):
		vcvarsall += " 11.0/VC/vcvarsall.bat"
	case strings.Contains(banner, "Version 18.00"):
		vcvarsall += " 12.0/VC/vcvarsall.bat"
	case strings.Contains(banner, "Version 19.00"):
		vcvarsall += " 14.0/VC/vcvarsall.bat"
	default:
		return nil, newToolchainInitError("bootstrap", "could not detect an MSVC version from the cl.exe banner")
	}

	return MSVCToolchain(vcvarsall, arch), nil
}
