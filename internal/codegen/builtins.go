package codegen

import (
	"github.com/funvibe/sxpc/internal/typesystem"
)

// builtin describes one runtime extension call: the fingerprint its
// arguments are checked against and the static type of its result.
type builtin struct {
	fingerprint typesystem.Fingerprint
	result      typesystem.Tag
}

// builtins is the extension call catalog. println has special arity
// handling in evalExtensionCall (it may be called empty) but its
// checked shape lives here too. exit has no entry: evalExit handles
// it (zero or one INT argument).
var builtins = map[string]builtin{
	"print":     {typesystem.Fingerprint{typesystem.AnyStrArg}, typesystem.Undef},
	"println":   {typesystem.Fingerprint{typesystem.AnyStrArg}, typesystem.Undef},
	"print_i":   {typesystem.Exact(typesystem.Int), typesystem.Undef},
	"println_i": {typesystem.Exact(typesystem.Int), typesystem.Undef},
	"free_str":  {typesystem.Exact(typesystem.String), typesystem.Undef},
	"Int2Str":   {typesystem.Exact(typesystem.Int), typesystem.String},
	"String":    {typesystem.Fingerprint{typesystem.AnyStrArg}, typesystem.String},
	"Concat":    {typesystem.Fingerprint{typesystem.AnyStrArg, typesystem.AnyStrArg}, typesystem.String},
	"Substr":    {typesystem.Fingerprint{typesystem.AnyStrArg, typesystem.IntArg, typesystem.IntArg}, typesystem.String},
	"Reverse":   {typesystem.Fingerprint{typesystem.AnyStrArg}, typesystem.String},
	"Upper":     {typesystem.Fingerprint{typesystem.AnyStrArg, typesystem.IntArg, typesystem.IntArg}, typesystem.String},
	"Lower":     {typesystem.Fingerprint{typesystem.AnyStrArg, typesystem.IntArg, typesystem.IntArg}, typesystem.String},
	"len":       {typesystem.Fingerprint{typesystem.AnyStrArg}, typesystem.Int},
}
