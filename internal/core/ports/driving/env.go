package driving

import "context"

// EnvService inspects the runtime environment: data directory, config,
// AI providers, index backends. Backs the `env check` command.
type EnvService interface {
	// Check runs all environment checks and returns a report. A
	// failing check is a report entry, not an error; Check only errors
	// when it cannot run at all.
	Check(ctx context.Context) (*EnvReport, error)

	// CheckManifest parses a Python requirements manifest, as shipped
	// with legacy index bundles, and reports its contents. Used to
	// verify a bundle's toolchain before import.
	CheckManifest(path string) (*ManifestReport, error)
}

// EnvReport is the outcome of an environment check.
type EnvReport struct {
	// DataDir is the resolved data directory.
	DataDir string

	// ConfigPath is the resolved configuration file path.
	ConfigPath string

	// Checks lists individual check outcomes in run order.
	Checks []EnvCheck
}

// CheckStatus classifies a check outcome.
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// EnvCheck is one environment check outcome.
type EnvCheck struct {
	// Name identifies the check, e.g. "data directory".
	Name string

	// Status is the outcome.
	Status CheckStatus

	// Detail explains the outcome in one line.
	Detail string
}

// ManifestReport summarises a parsed requirements manifest.
type ManifestReport struct {
	// Path is the manifest file path.
	Path string

	// Requirements lists the parsed entries in file order.
	Requirements []ManifestRequirement

	// Sections lists the section headers in file order.
	Sections []string

	// Issues lists validation problems, e.g. duplicate names.
	Issues []string
}

// ManifestRequirement is one requirement for display.
type ManifestRequirement struct {
	// Name is the package name as written.
	Name string

	// Constraint is the joined version constraints, e.g. ">=1.24.0".
	Constraint string

	// Marker is the environment marker, if any.
	Marker string

	// Section is the section header the entry appeared under.
	Section string
}
