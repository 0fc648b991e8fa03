package ralph

import (
	"github.com/magiconair/properties"
)

// CompilerOptions is the ambient configuration surface (SPEC_FULL.md
// §0 "Configuration"), loaded from a .properties file the way the
// reference CLI's config layer does, with every flag defaulting to the
// strictest (warnings-on) setting.
type CompilerOptions struct {
	IgnoreUnusedVariablesWarnings        bool
	IgnoreUnusedFieldsWarnings           bool
	IgnoreUpdateFieldsCheckWarnings      bool
	IgnoreUnusedConstantsWarnings        bool
	IgnoreUnusedPrivateFunctionsWarnings bool
	IgnoreCheckExternalCallerWarnings    bool
	AllowDebug                           bool
}

// DefaultCompilerOptions returns every warning enabled and debug
// statements compiled in, matching what an unconfigured compilation
// gets.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{AllowDebug: true}
}

// LoadCompilerOptions reads a .properties file at path, falling back to
// DefaultCompilerOptions() for any key it doesn't set and for the file
// itself when path is empty. A file that cannot be read is returned as
// an error.
func LoadCompilerOptions(path string) (CompilerOptions, error) {
	opts := DefaultCompilerOptions()
	if path == "" {
		return opts, nil
	}
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return CompilerOptions{}, err
	}
	opts.IgnoreUnusedVariablesWarnings = p.GetBool("ignoreUnusedVariablesWarnings", opts.IgnoreUnusedVariablesWarnings)
	opts.IgnoreUnusedFieldsWarnings = p.GetBool("ignoreUnusedFieldsWarnings", opts.IgnoreUnusedFieldsWarnings)
	opts.IgnoreUpdateFieldsCheckWarnings = p.GetBool("ignoreUpdateFieldsCheckWarnings", opts.IgnoreUpdateFieldsCheckWarnings)
	opts.IgnoreUnusedConstantsWarnings = p.GetBool("ignoreUnusedConstantsWarnings", opts.IgnoreUnusedConstantsWarnings)
	opts.IgnoreUnusedPrivateFunctionsWarnings = p.GetBool("ignoreUnusedPrivateFunctionsWarnings", opts.IgnoreUnusedPrivateFunctionsWarnings)
	opts.IgnoreCheckExternalCallerWarnings = p.GetBool("ignoreCheckExternalCallerWarnings", opts.IgnoreCheckExternalCallerWarnings)
	opts.AllowDebug = p.GetBool("allowDebug", opts.AllowDebug)
	return opts, nil
}
