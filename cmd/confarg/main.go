// confarg - configuration string inspection tool
//
// Usage:
//
//	confarg uncomment [file]         Strip comments from a configuration
//	confarg split [file]             Split a configuration into arguments
//	confarg quote [file]             Quote raw text as a config string
//	confarg unquote [file]           Unquote a config string to raw text
//	confarg check TYPE VALUE...      Parse values as a registered type
//
// If no file is given, reads from stdin.
package main

import (
	goflag "flag"
	"os"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
