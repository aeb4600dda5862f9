// Package hack holds files shipped inside the binary.
package hack

import _ "embed"

// SystemdUnitTemplate is the unit installed by "corrcal install".
// /path/to/corrcal is replaced with the running executable.
//
//go:embed corrcal.service
var SystemdUnitTemplate string
