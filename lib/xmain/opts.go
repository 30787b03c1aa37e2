package xmain

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"oss.terrastruct.com/xos"
)

// Opts declares flags whose defaults come from environment variables when set.
type Opts struct {
	Args  []string
	Flags *pflag.FlagSet

	env  *xos.Env
	envs []string
}

func NewOpts(env *xos.Env, args []string) *Opts {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	return &Opts{
		Args:  args,
		Flags: flags,
		env:   env,
	}
}

// Defaults lists every flag with its default, then the environment variables read.
func (o *Opts) Defaults() string {
	var b strings.Builder
	o.Flags.SetOutput(&b)
	o.Flags.PrintDefaults()
	o.Flags.SetOutput(io.Discard)

	if len(o.envs) > 0 {
		b.WriteString("\nEnvironment variables (flags take precedence):\n")
		for _, k := range o.envs {
			fmt.Fprintf(&b, "- $%s\n", k)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// lookupEnv records k for Defaults. An empty k declares a flag without a variable.
func (o *Opts) lookupEnv(k string) (string, bool) {
	if k == "" {
		return "", false
	}
	o.envs = append(o.envs, k)
	v := o.env.Getenv(k)
	return v, v != ""
}

func (o *Opts) String(envKey, flag, shortFlag string, defaultVal, usage string) *string {
	if v, ok := o.lookupEnv(envKey); ok {
		defaultVal = v
	}
	return o.Flags.StringP(flag, shortFlag, defaultVal, usage)
}

// Bool accepts 1, true, 0 and false from the environment.
func (o *Opts) Bool(envKey, flag, shortFlag string, defaultVal bool, usage string) (*bool, error) {
	if v, ok := o.lookupEnv(envKey); ok {
		switch v {
		case "1", "true":
			defaultVal = true
		case "0", "false":
			defaultVal = false
		default:
			return nil, fmt.Errorf(`invalid environment variable %s: expected 1, true, 0 or false, found %q`, envKey, v)
		}
	}
	return o.Flags.BoolP(flag, shortFlag, defaultVal, usage), nil
}
